package selector

import (
	"sync"

	"tiger-client/internal/model"
)

// View is every selector evaluated against one snapshot.
type View struct {
	CurrentDocument    *model.Document     `json:"currentDocument"`
	CurrentAnimation   *model.Animation    `json:"currentAnimation"`
	CurrentSequence    *model.Sequence     `json:"currentSequence"`
	CurrentKeyframe    *model.Keyframe     `json:"currentKeyframe"`
	SelectedFrames     []model.Frame       `json:"selectedFrames"`
	SelectedAnimations []model.Animation   `json:"selectedAnimations"`
	SelectedKeyframes  []KeyframeSelection `json:"selectedKeyframes"`
	SelectedHitboxes   []model.Hitbox      `json:"selectedHitboxes"`
	CanCut             bool                `json:"canCut"`
	CanCopy            bool                `json:"canCopy"`
	CanPaste           bool                `json:"canPaste"`
	ActiveModal        string              `json:"activeModal"`
	AnyFramesMissing   bool                `json:"anyFramesMissing"`
	SortedAnimations   []model.Animation   `json:"sortedAnimations"`
	VisibleFrames      []model.Frame       `json:"visibleFrames"`
	VisibleAnimations  []model.Animation   `json:"visibleAnimations"`
	CurrentSessions    []model.SessionKind `json:"currentSessions"`
}

func Compute(s *model.AppState) *View {
	return &View{
		CurrentDocument:    CurrentDocument(s),
		CurrentAnimation:   CurrentAnimation(s),
		CurrentSequence:    CurrentSequence(s),
		CurrentKeyframe:    CurrentKeyframe(s),
		SelectedFrames:     SelectedFrames(s),
		SelectedAnimations: SelectedAnimations(s),
		SelectedKeyframes:  SelectedKeyframes(s),
		SelectedHitboxes:   SelectedHitboxes(s),
		CanCut:             CanCut(s),
		CanCopy:            CanCopy(s),
		CanPaste:           CanPaste(s),
		ActiveModal:        ActiveModal(s),
		AnyFramesMissing:   AnyFramesMissing(s),
		SortedAnimations:   SortedAnimations(s),
		VisibleFrames:      VisibleFrames(s),
		VisibleAnimations:  VisibleAnimations(s),
		CurrentSessions:    CurrentSessions(s),
	}
}

// Cache memoizes the View of the most recent snapshot. Snapshots are
// immutable, so pointer identity is a sufficient dependency key.
type Cache struct {
	mu   sync.Mutex
	snap *model.AppState
	view *View
}

func (c *Cache) View(s *model.AppState) *View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view != nil && c.snap == s {
		return c.view
	}
	c.snap = s
	c.view = Compute(s)
	return c.view
}
