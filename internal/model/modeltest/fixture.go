// Package modeltest builds small, valid replica trees for tests.
package modeltest

import (
	"fmt"
	"path"
	"strings"

	"tiger-client/internal/model"
)

func Ptr[T any](v T) *T { return &v }

// Document returns an empty, valid document at p.
func Document(p string) model.Document {
	return model.Document{
		Path:                  p,
		Name:                  path.Base(p),
		FramesListMode:        model.ListModeLinear,
		WorkbenchZoom:         1,
		TimelineZoomFactor:    1,
		Sheet:                 model.Sheet{Frames: []model.Frame{}, Animations: []model.Animation{}},
		FramesBeingDragged:    []string{},
		KeyframesBeingDragged: []model.KeyframeRef{},
		KeyframesBeingNudged:  []model.KeyframeRef{},
		HitboxesBeingNudged:   []string{},
		HitboxesBeingResized:  []string{},
	}
}

// State returns a tree holding docs, focused on the first one.
func State(docs ...model.Document) *model.AppState {
	s := model.NewAppState()
	s.Documents = append(s.Documents, docs...)
	if len(docs) > 0 {
		s.CurrentDocumentPath = Ptr(docs[0].Path)
	}
	return s
}

// Frame builds an unselected frame for a png under /sprites.
func Frame(name string) model.Frame {
	return model.Frame{Path: "/sprites/" + name + ".png", Name: name}
}

// Keyframes builds a sequence of n keyframes of durationMillis each, with
// start times and stable keys filled in.
func Keyframes(n int, durationMillis int64) model.Sequence {
	seq := model.Sequence{Keyframes: []model.Keyframe{}}
	var clock int64
	for i := 0; i < n; i++ {
		seq.Keyframes = append(seq.Keyframes, model.Keyframe{
			Frame:           fmt.Sprintf("/sprites/f%d.png", i),
			Name:            fmt.Sprintf("f%d", i),
			StartTimeMillis: clock,
			DurationMillis:  durationMillis,
			Hitboxes:        []model.Hitbox{},
			Key:             fmt.Sprintf("kf-%d", i),
		})
		clock += durationMillis
	}
	seq.DurationMillis = Ptr(clock)
	return seq
}

// Animation builds an animation with the given sequences.
func Animation(name string, seqs map[model.Direction]model.Sequence) model.Animation {
	if seqs == nil {
		seqs = map[model.Direction]model.Sequence{}
	}
	return model.Animation{Name: name, Sequences: seqs}
}

// Hitbox builds an unselected hitbox with a stable key derived from its name.
func Hitbox(name string, x, y, w, h int) model.Hitbox {
	return model.Hitbox{
		Name:    name,
		TopLeft: [2]int{x, y},
		Size:    [2]int{w, h},
		Key:     "hb-" + strings.ToLower(name),
	}
}

// Walk returns a one-document tree at /a.sheet holding a "walk" animation
// with a 3-keyframe East sequence, focused on that sequence's first keyframe.
// The first keyframe carries hitboxes "hb1" (selected) and "hb2".
func Walk() *model.AppState {
	east := Keyframes(3, 100)
	east.Keyframes[0].Hitboxes = []model.Hitbox{Hitbox("hb1", 0, 0, 10, 10), Hitbox("hb2", 5, 5, 4, 4)}
	east.Keyframes[0].Hitboxes[0].Selected = true

	doc := Document("/a.sheet")
	doc.Sheet.Frames = []model.Frame{Frame("f0"), Frame("f1"), Frame("f2")}
	doc.Sheet.Animations = []model.Animation{
		Animation("walk", map[model.Direction]model.Sequence{model.East: east, model.West: Keyframes(1, 50)}),
		Animation("Idle", nil),
	}
	doc.CurrentAnimationName = Ptr("walk")
	doc.CurrentSequenceDirection = Ptr(model.East)
	doc.CurrentKeyframeIndex = Ptr(0)
	return State(doc)
}
