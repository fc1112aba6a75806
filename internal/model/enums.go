package model

import (
	"encoding/json"
	"fmt"
)

type Direction string

const (
	East      Direction = "East"
	NorthEast Direction = "NorthEast"
	North     Direction = "North"
	NorthWest Direction = "NorthWest"
	West      Direction = "West"
	SouthWest Direction = "SouthWest"
	South     Direction = "South"
	SouthEast Direction = "SouthEast"
)

// AllDirections lists the compass headings in counter-clockwise order from East.
var AllDirections = []Direction{East, NorthEast, North, NorthWest, West, SouthWest, South, SouthEast}

func (d Direction) Valid() bool {
	for _, x := range AllDirections {
		if d == x {
			return true
		}
	}
	return false
}

type DirectionPreset string

const (
	FourDirections  DirectionPreset = "FourDirections"
	EightDirections DirectionPreset = "EightDirections"
	LeftRight       DirectionPreset = "LeftRight"
	UpDown          DirectionPreset = "UpDown"
	Isometric       DirectionPreset = "Isometric"
	FixedAngle      DirectionPreset = "FixedAngle"
)

// Directions returns the directions an animation using this preset may populate.
// Unknown presets return nil.
func (p DirectionPreset) Directions() []Direction {
	switch p {
	case FourDirections:
		return []Direction{East, North, West, South}
	case EightDirections:
		return AllDirections
	case LeftRight:
		return []Direction{East, West}
	case UpDown:
		return []Direction{North, South}
	case Isometric:
		return []Direction{NorthEast, NorthWest, SouthWest, SouthEast}
	case FixedAngle:
		return []Direction{North}
	default:
		return nil
	}
}

func (p DirectionPreset) Allows(d Direction) bool {
	for _, x := range p.Directions() {
		if x == d {
			return true
		}
	}
	return false
}

type ClipboardManifest string

const (
	ClipboardAnimations ClipboardManifest = "Animations"
	ClipboardKeyframes  ClipboardManifest = "Keyframes"
	ClipboardHitboxes   ClipboardManifest = "Hitboxes"
)

type ListMode string

const (
	ListModeLinear  ListMode = "Linear"
	ListModeGrid4xN ListMode = "Grid4xN"
)

// ResizeAxis names the hitbox edge or corner being dragged.
type ResizeAxis string

const (
	ResizeN  ResizeAxis = "N"
	ResizeS  ResizeAxis = "S"
	ResizeW  ResizeAxis = "W"
	ResizeE  ResizeAxis = "E"
	ResizeNW ResizeAxis = "NW"
	ResizeNE ResizeAxis = "NE"
	ResizeSE ResizeAxis = "SE"
	ResizeSW ResizeAxis = "SW"
)

func (a ResizeAxis) Valid() bool {
	switch a {
	case ResizeN, ResizeS, ResizeW, ResizeE, ResizeNW, ResizeNE, ResizeSE, ResizeSW:
		return true
	}
	return false
}

type NudgeDirection string

const (
	NudgeUp    NudgeDirection = "Up"
	NudgeDown  NudgeDirection = "Down"
	NudgeLeft  NudgeDirection = "Left"
	NudgeRight NudgeDirection = "Right"
)

type BrowseDirection string

const (
	BrowseUp    BrowseDirection = "Up"
	BrowseDown  BrowseDirection = "Down"
	BrowseLeft  BrowseDirection = "Left"
	BrowseRight BrowseDirection = "Right"
)

// KeyframeRef addresses a keyframe by direction and index inside the current
// animation. On the wire it is the 2-tuple [direction, index].
type KeyframeRef struct {
	Direction Direction
	Index     int
}

func (r KeyframeRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Direction, r.Index})
}

func (r *KeyframeRef) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("keyframe ref: expected 2 elements, got %d", len(raw))
	}
	var out KeyframeRef
	if err := json.Unmarshal(raw[0], &out.Direction); err != nil {
		return fmt.Errorf("keyframe ref direction: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Index); err != nil {
		return fmt.Errorf("keyframe ref index: %w", err)
	}
	*r = out
	return nil
}
