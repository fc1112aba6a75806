package model

import (
	"fmt"
	"strings"
)

type InvariantError struct {
	Path   string
	Reason string
}

func (e InvariantError) Error() string {
	if e.Path == "" {
		return "invariant violated: " + e.Reason
	}
	return fmt.Sprintf("invariant violated at %s: %s", e.Path, e.Reason)
}

func invariantf(path, format string, args ...any) error {
	return InvariantError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the structural invariants of the tree. Navigation pointers
// inside documents are not checked: they may dangle until the engine corrects
// them.
func (s *AppState) Validate() error {
	if s == nil {
		return invariantf("", "nil state")
	}
	seen := map[string]bool{}
	for i := range s.Documents {
		d := &s.Documents[i]
		p := fmt.Sprintf("/documents/%d", i)
		if strings.TrimSpace(d.Path) == "" {
			return invariantf(p+"/path", "empty document path")
		}
		if seen[d.Path] {
			return invariantf(p+"/path", "duplicate document path %q", d.Path)
		}
		seen[d.Path] = true
		if err := d.validate(p); err != nil {
			return err
		}
	}

	switch {
	case len(s.Documents) == 0 && s.CurrentDocumentPath != nil:
		return invariantf("/currentDocumentPath", "set to %q with no open documents", *s.CurrentDocumentPath)
	case len(s.Documents) > 0 && s.CurrentDocumentPath == nil:
		return invariantf("/currentDocumentPath", "null with %d open documents", len(s.Documents))
	case s.CurrentDocumentPath != nil && !seen[*s.CurrentDocumentPath]:
		return invariantf("/currentDocumentPath", "no document at %q", *s.CurrentDocumentPath)
	}
	if s.ClipboardManifest != nil {
		switch *s.ClipboardManifest {
		case ClipboardAnimations, ClipboardKeyframes, ClipboardHitboxes:
		default:
			return invariantf("/clipboardManifest", "unknown manifest kind %q", *s.ClipboardManifest)
		}
	}
	return nil
}

func (d *Document) validate(p string) error {
	frames := map[string]bool{}
	for i, f := range d.Sheet.Frames {
		if frames[f.Path] {
			return invariantf(fmt.Sprintf("%s/sheet/frames/%d", p, i), "duplicate frame path %q", f.Path)
		}
		frames[f.Path] = true
	}

	names := map[string]bool{}
	for i := range d.Sheet.Animations {
		a := &d.Sheet.Animations[i]
		ap := fmt.Sprintf("%s/sheet/animations/%d", p, i)
		if names[a.Name] {
			return invariantf(ap+"/name", "duplicate animation name %q", a.Name)
		}
		names[a.Name] = true
		if err := a.validate(ap); err != nil {
			return err
		}
	}

	if active := d.ActiveSessions(); len(active) > 1 {
		return invariantf(p, "concurrent sessions %v", active)
	}
	return nil
}

func (a *Animation) validate(p string) error {
	if a.DirectionPreset != nil && a.DirectionPreset.Directions() == nil {
		return invariantf(p+"/directionPreset", "unknown preset %q", *a.DirectionPreset)
	}
	for dir, seq := range a.Sequences {
		sp := fmt.Sprintf("%s/sequences/%s", p, dir)
		if !dir.Valid() {
			return invariantf(sp, "unknown direction %q", dir)
		}
		if a.DirectionPreset != nil && !a.DirectionPreset.Allows(dir) {
			return invariantf(sp, "direction not allowed by preset %s", *a.DirectionPreset)
		}
		if err := seq.validate(sp); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequence) validate(p string) error {
	keys := map[string]bool{}
	var clock int64
	for i := range s.Keyframes {
		k := &s.Keyframes[i]
		kp := fmt.Sprintf("%s/keyframes/%d", p, i)
		if k.DurationMillis <= 0 {
			return invariantf(kp+"/durationMillis", "non-positive duration %d", k.DurationMillis)
		}
		if k.StartTimeMillis != clock {
			return invariantf(kp+"/startTimeMillis", "expected %d, got %d", clock, k.StartTimeMillis)
		}
		clock += k.DurationMillis
		if k.Key != "" {
			if keys[k.Key] {
				return invariantf(kp+"/key", "duplicate keyframe key %q", k.Key)
			}
			keys[k.Key] = true
		}
		hitboxes := map[string]bool{}
		for j, h := range k.Hitboxes {
			hp := fmt.Sprintf("%s/hitboxes/%d", kp, j)
			if hitboxes[h.Name] {
				return invariantf(hp+"/name", "duplicate hitbox name %q", h.Name)
			}
			hitboxes[h.Name] = true
			if h.Size[0] < 0 || h.Size[1] < 0 {
				return invariantf(hp+"/size", "negative size %v", h.Size)
			}
		}
	}
	return nil
}
