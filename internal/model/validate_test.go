package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"tiger-client/internal/model"
	"tiger-client/internal/model/modeltest"
)

func TestValidate_AcceptsFixtures(t *testing.T) {
	if err := model.NewAppState().Validate(); err != nil {
		t.Fatalf("empty state: %v", err)
	}
	if err := modeltest.Walk().Validate(); err != nil {
		t.Fatalf("walk fixture: %v", err)
	}
}

func TestValidate_RejectsBrokenTrees(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *model.AppState)
	}{
		{"duplicate document path", func(s *model.AppState) {
			s.Documents = append(s.Documents, s.Documents[0])
		}},
		{"current path without documents", func(s *model.AppState) {
			s.Documents = nil
		}},
		{"documents without current path", func(s *model.AppState) {
			s.CurrentDocumentPath = nil
		}},
		{"dangling current path", func(s *model.AppState) {
			s.CurrentDocumentPath = modeltest.Ptr("/missing.sheet")
		}},
		{"duplicate frame", func(s *model.AppState) {
			f := &s.Documents[0].Sheet
			f.Frames = append(f.Frames, f.Frames[0])
		}},
		{"duplicate animation", func(s *model.AppState) {
			sh := &s.Documents[0].Sheet
			sh.Animations = append(sh.Animations, modeltest.Animation("walk", nil))
		}},
		{"zero duration", func(s *model.AppState) {
			seq := s.Documents[0].Sheet.Animations[0].Sequences[model.West]
			seq.Keyframes[0].DurationMillis = 0
		}},
		{"start time gap", func(s *model.AppState) {
			seq := s.Documents[0].Sheet.Animations[0].Sequences[model.East]
			seq.Keyframes[2].StartTimeMillis = 999
		}},
		{"negative hitbox size", func(s *model.AppState) {
			seq := s.Documents[0].Sheet.Animations[0].Sequences[model.East]
			seq.Keyframes[0].Hitboxes[1].Size = [2]int{-1, 3}
		}},
		{"duplicate hitbox name", func(s *model.AppState) {
			seq := s.Documents[0].Sheet.Animations[0].Sequences[model.East]
			seq.Keyframes[0].Hitboxes[1].Name = "hb1"
		}},
		{"preset forbids direction", func(s *model.AppState) {
			s.Documents[0].Sheet.Animations[0].DirectionPreset = modeltest.Ptr(model.UpDown)
		}},
		{"two sessions at once", func(s *model.AppState) {
			d := &s.Documents[0]
			d.HitboxesBeingNudged = []string{"hb1"}
			d.IsDraggingKeyframeDuration = true
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := modeltest.Walk()
			tc.mutate(s)
			err := s.Validate()
			var inv model.InvariantError
			if !errors.As(err, &inv) {
				t.Fatalf("expected InvariantError, got %v", err)
			}
		})
	}
}

func TestValidate_AllowsDanglingNavigationPointers(t *testing.T) {
	s := modeltest.Walk()
	d := &s.Documents[0]
	d.CurrentAnimationName = modeltest.Ptr("run")
	d.CurrentKeyframeIndex = modeltest.Ptr(42)
	if err := s.Validate(); err != nil {
		t.Fatalf("dangling pointers should validate: %v", err)
	}
}

func TestKeyframeRef_TupleJSON(t *testing.T) {
	b, err := json.Marshal(model.KeyframeRef{Direction: model.NorthWest, Index: 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["NorthWest",3]` {
		t.Fatalf("unexpected encoding %s", b)
	}
	var back model.KeyframeRef
	if err := json.Unmarshal([]byte(`["East",0]`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Direction != model.East || back.Index != 0 {
		t.Fatalf("unexpected ref %+v", back)
	}
	if err := json.Unmarshal([]byte(`["East"]`), &back); err == nil {
		t.Fatalf("expected error for short tuple")
	}
}

func TestDocument_ActiveSessions(t *testing.T) {
	d := modeltest.Document("/x.sheet")
	if got := d.ActiveSessions(); len(got) != 0 {
		t.Fatalf("expected no sessions, got %v", got)
	}
	d.FramesBeingRelocated = map[string]string{}
	if !d.SessionActive(model.SessionFrameRelocate) {
		t.Fatalf("empty relocation map still marks an active relocation")
	}
	d.FramesBeingRelocated = nil
	d.HitboxBeingRenamed = modeltest.Ptr("hb1")
	got := d.ActiveSessions()
	if len(got) != 1 || got[0] != model.SessionHitboxRename {
		t.Fatalf("unexpected sessions %v", got)
	}
}
