// Package selector derives navigation, selection and capability views from a
// replica snapshot.
//
// Every function is pure and accepts a nil snapshot. Chains are resolved left
// to right and fail closed: a missing or dangling link yields nil or false.
package selector

import (
	"sort"
	"strings"

	"tiger-client/internal/model"
)

func CurrentDocument(s *model.AppState) *model.Document {
	if s == nil || s.CurrentDocumentPath == nil {
		return nil
	}
	d, _ := s.FindDocument(*s.CurrentDocumentPath)
	return d
}

func CurrentAnimation(s *model.AppState) *model.Animation {
	d := CurrentDocument(s)
	if d == nil || d.CurrentAnimationName == nil || *d.CurrentAnimationName == "" {
		return nil
	}
	a, _ := d.Sheet.FindAnimation(*d.CurrentAnimationName)
	return a
}

func CurrentSequence(s *model.AppState) *model.Sequence {
	a := CurrentAnimation(s)
	if a == nil {
		return nil
	}
	d := CurrentDocument(s)
	if d.CurrentSequenceDirection == nil {
		return nil
	}
	seq, ok := a.Sequences[*d.CurrentSequenceDirection]
	if !ok {
		return nil
	}
	return &seq
}

// CurrentKeyframe is bounds-checked: an out-of-range index yields nil.
func CurrentKeyframe(s *model.AppState) *model.Keyframe {
	seq := CurrentSequence(s)
	if seq == nil {
		return nil
	}
	d := CurrentDocument(s)
	if d.CurrentKeyframeIndex == nil {
		return nil
	}
	i := *d.CurrentKeyframeIndex
	if i < 0 || i >= len(seq.Keyframes) {
		return nil
	}
	return &seq.Keyframes[i]
}

// SelectedFrames returns nil when there is no current document, and a non-nil
// (possibly empty) slice otherwise.
func SelectedFrames(s *model.AppState) []model.Frame {
	d := CurrentDocument(s)
	if d == nil {
		return nil
	}
	out := []model.Frame{}
	for _, f := range d.Sheet.Frames {
		if f.Selected {
			out = append(out, f)
		}
	}
	return out
}

func SelectedAnimations(s *model.AppState) []model.Animation {
	d := CurrentDocument(s)
	if d == nil {
		return nil
	}
	out := []model.Animation{}
	for _, a := range d.Sheet.Animations {
		if a.Selected {
			out = append(out, a)
		}
	}
	return out
}

// KeyframeSelection is one selected keyframe together with its address in the
// current animation.
type KeyframeSelection struct {
	Ref      model.KeyframeRef
	Keyframe model.Keyframe
}

// SelectedKeyframes flattens the selected keyframes of every direction of the
// current animation, in model.AllDirections order.
func SelectedKeyframes(s *model.AppState) []KeyframeSelection {
	a := CurrentAnimation(s)
	if a == nil {
		return nil
	}
	out := []KeyframeSelection{}
	for _, dir := range model.AllDirections {
		seq, ok := a.Sequences[dir]
		if !ok {
			continue
		}
		for i, k := range seq.Keyframes {
			if k.Selected {
				out = append(out, KeyframeSelection{Ref: model.KeyframeRef{Direction: dir, Index: i}, Keyframe: k})
			}
		}
	}
	return out
}

func SelectedHitboxes(s *model.AppState) []model.Hitbox {
	k := CurrentKeyframe(s)
	if k == nil {
		return nil
	}
	out := []model.Hitbox{}
	for _, h := range k.Hitboxes {
		if h.Selected {
			out = append(out, h)
		}
	}
	return out
}

// CanCut reports whether anything cuttable is selected. Frames are copy-only.
func CanCut(s *model.AppState) bool {
	return len(SelectedAnimations(s)) > 0 ||
		len(SelectedKeyframes(s)) > 0 ||
		len(SelectedHitboxes(s)) > 0
}

func CanCopy(s *model.AppState) bool {
	return len(SelectedFrames(s)) > 0 || CanCut(s)
}

func CanPaste(s *model.AppState) bool {
	return s != nil && s.ClipboardManifest != nil && CurrentDocument(s) != nil
}

// ActiveModal names the modal that should be showing: the error key while an
// error is set, else "closing_<path>" while the current document awaits close
// confirmation. The empty string means none.
func ActiveModal(s *model.AppState) string {
	if s == nil {
		return ""
	}
	if s.Error != nil {
		return s.Error.Key
	}
	if d := CurrentDocument(s); d != nil && d.WasCloseRequested {
		return "closing_" + d.Path
	}
	return ""
}

func AnyFramesMissing(s *model.AppState) bool {
	d := CurrentDocument(s)
	if d == nil {
		return false
	}
	for _, f := range d.Sheet.Frames {
		if f.MissingOnDisk {
			return true
		}
	}
	return false
}

// SortedAnimations orders the current document's animations by name, case
// insensitively, for display. Ties fall back to a byte-wise comparison so the
// order is total.
func SortedAnimations(s *model.AppState) []model.Animation {
	d := CurrentDocument(s)
	if d == nil {
		return nil
	}
	out := append([]model.Animation{}, d.Sheet.Animations...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func VisibleFrames(s *model.AppState) []model.Frame {
	d := CurrentDocument(s)
	if d == nil {
		return nil
	}
	out := []model.Frame{}
	for _, f := range d.Sheet.Frames {
		if !f.FilteredOut {
			out = append(out, f)
		}
	}
	return out
}

// VisibleAnimations is SortedAnimations without filtered-out entries.
func VisibleAnimations(s *model.AppState) []model.Animation {
	sorted := SortedAnimations(s)
	if sorted == nil {
		return nil
	}
	out := sorted[:0]
	for _, a := range sorted {
		if !a.FilteredOut {
			out = append(out, a)
		}
	}
	return out
}

func CurrentSessions(s *model.AppState) []model.SessionKind {
	return CurrentDocument(s).ActiveSessions()
}
