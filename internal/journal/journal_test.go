package journal

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"tiger-client/internal/enginetest"
	"tiger-client/internal/gateway"
	"tiger-client/internal/model/modeltest"
	"tiger-client/internal/patch"
	"tiger-client/internal/store"
)

var backends = []string{"journal.sqlite", "journal.jsonl"}

func openTemp(t *testing.T, name string) (Log, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", name)
	l, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l, path
}

func TestBackendFor(t *testing.T) {
	if BackendFor("/x/journal.JSONL") != BackendJSONL {
		t.Fatalf("expected jsonl")
	}
	if BackendFor("/x/journal.sqlite") != BackendSQLite || BackendFor("/x/journal") != BackendSQLite {
		t.Fatalf("expected sqlite default")
	}
}

func TestLog_AppendEntriesSessions(t *testing.T) {
	for _, name := range backends {
		t.Run(name, func(t *testing.T) {
			l, _ := openTemp(t, name)
			ctx := context.Background()
			at := time.UnixMilli(1_700_000_000_000).UTC()
			in := []Entry{
				{ID: "01A", Session: "s1", Seq: 0, Command: "get_state", Kind: KindReplace, Payload: json.RawMessage(`{"documents":[]}`), At: at},
				{ID: "01B", Session: "s2", Seq: 0, Command: "undo", Kind: KindPatch, Payload: json.RawMessage(`[]`), At: at.Add(time.Second)},
				{ID: "01C", Session: "s1", Seq: 1, Command: "save", Kind: KindPatch, Error: "engine rejected save: disk full", At: at.Add(2 * time.Second)},
			}
			for _, e := range in {
				if err := l.Append(ctx, e); err != nil {
					t.Fatalf("append %s: %v", e.ID, err)
				}
			}
			if err := l.Append(ctx, Entry{ID: "01D", Session: "s1", Kind: "bogus"}); err == nil {
				t.Fatalf("invalid kind must be rejected")
			}

			got, err := l.Entries(ctx, "s1")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 || got[0].ID != "01A" || got[1].ID != "01C" {
				t.Fatalf("entries: %+v", got)
			}
			if string(got[0].Payload) != `{"documents":[]}` || got[0].Kind != KindReplace || !got[0].At.Equal(at) {
				t.Fatalf("first entry mangled: %+v", got[0])
			}
			if got[1].Payload != nil || got[1].Error != "engine rejected save: disk full" || got[1].Seq != 1 {
				t.Fatalf("error entry mangled: %+v", got[1])
			}

			sessions, err := l.Sessions(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(sessions) != 2 || sessions[0].ID != "s1" || sessions[0].Entries != 2 || sessions[1].ID != "s2" {
				t.Fatalf("sessions: %+v", sessions)
			}
			if !sessions[0].Last.Equal(at.Add(2 * time.Second)) {
				t.Fatalf("last: %v", sessions[0].Last)
			}
		})
	}
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.sqlite")
	l, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Append(ctx, Entry{ID: "01A", Session: "s", Kind: KindPatch, Command: "undo", At: time.Now()}); err != nil {
		t.Fatal(err)
	}
	_ = l.Close()

	l, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l.Close()
	got, err := l.Entries(ctx, "s")
	if err != nil || len(got) != 1 {
		t.Fatalf("after reopen: %v %+v", err, got)
	}
}

func TestRecorder_ReplayReproducesLiveTree(t *testing.T) {
	for _, name := range backends {
		t.Run(name, func(t *testing.T) {
			l, _ := openTemp(t, name)
			rec := NewRecorder(l)

			st := store.New()
			st.OnViolation(rec.Violation)
			eng := enginetest.New()
			gw := gateway.New(eng, st, gateway.Options{Observer: rec.Observe})

			anim := patch.Field("documents", 0, "currentAnimationName")
			eng.Reply("get_state", enginetest.State(modeltest.Walk()))
			eng.Reply("select_animation", enginetest.Patch(patch.ReplaceOp(anim, "Idle")))
			eng.Reply("undo", enginetest.Patch(patch.ReplaceOp(patch.Field("documents", 0, "nope"), 1)))
			eng.Handle("save", enginetest.Fail("disk full"))
			eng.Reply("redo", enginetest.Patch(patch.ReplaceOp(anim, "walk"), patch.ReplaceOp(patch.Field("documents", 0, "timelineClockMillis"), 50)))

			ctx := context.Background()
			for _, cmd := range []string{"get_state", "select_animation", "undo", "save", "redo"} {
				_ = gw.Do(ctx, gateway.Request{Command: cmd})
			}
			if rec.Err() != nil {
				t.Fatalf("recorder: %v", rec.Err())
			}

			entries, err := l.Entries(ctx, rec.Session())
			if err != nil {
				t.Fatal(err)
			}
			var kinds []Kind
			for _, e := range entries {
				kinds = append(kinds, e.Kind)
			}
			want := []Kind{KindReplace, KindPatch, KindViolation, KindPatch, KindPatch, KindPatch}
			if len(kinds) != len(want) {
				t.Fatalf("kinds %v, want %v", kinds, want)
			}
			for i := range want {
				if kinds[i] != want[i] {
					t.Fatalf("kinds %v, want %v", kinds, want)
				}
			}
			if entries[2].Command != store.ActionApply || entries[3].Error == "" || entries[4].Command != "save" || entries[4].Payload != nil {
				t.Fatalf("failure entries: %+v", entries[2:5])
			}

			replayed, err := Replay(ctx, l, rec.Session())
			if err != nil {
				t.Fatalf("replay: %v", err)
			}
			a, _ := json.Marshal(st.Snapshot())
			b, _ := json.Marshal(replayed.Snapshot())
			if string(a) != string(b) {
				t.Fatalf("replay diverged\nlive:   %s\nreplay: %s", a, b)
			}
		})
	}
}

func TestRecorder_FullStateWithOps(t *testing.T) {
	l, _ := openTemp(t, "journal.jsonl")
	rec := NewRecorder(l)
	st := store.New()
	eng := enginetest.New()
	gw := gateway.New(eng, st, gateway.Options{Observer: rec.Observe})

	resp := enginetest.State(modeltest.Walk())
	resp.Patch = patch.Patch{patch.ReplaceOp(patch.Field("documents", 0, "timelineIsPlaying"), true)}
	eng.Reply("open_documents", resp)
	if err := gw.Do(context.Background(), gateway.Request{Command: "open_documents"}); err != nil {
		t.Fatal(err)
	}
	entries, _ := l.Entries(context.Background(), rec.Session())
	if len(entries) != 1 || entries[0].Kind != KindReplacePatch || entries[0].Error != "" {
		t.Fatalf("entries: %+v", entries)
	}
	replayed, err := Replay(context.Background(), l, rec.Session())
	if err != nil {
		t.Fatal(err)
	}
	if !replayed.Snapshot().Documents[0].TimelineIsPlaying {
		t.Fatalf("ops after the replace were not replayed")
	}
}

func TestRecorder_RejectedFullStateIsOneEntry(t *testing.T) {
	l, _ := openTemp(t, "journal.sqlite")
	rec := NewRecorder(l)
	st := store.New()
	eng := enginetest.New()
	gw := gateway.New(eng, st, gateway.Options{Observer: rec.Observe})

	eng.Reply("get_state", enginetest.State(modeltest.Walk()))
	resp := enginetest.State(modeltest.Walk())
	resp.Patch = patch.Patch{patch.ReplaceOp(patch.Field("nope"), 1)}
	eng.Reply("close_all_documents", resp)

	ctx := context.Background()
	if err := gw.Do(ctx, gateway.Request{Command: "get_state"}); err != nil {
		t.Fatal(err)
	}
	if err := gw.Do(ctx, gateway.Request{Command: "close_all_documents"}); err == nil {
		t.Fatalf("expected rejection")
	}
	entries, _ := l.Entries(ctx, rec.Session())
	var responses []Entry
	for _, e := range entries {
		if e.Kind != KindViolation {
			responses = append(responses, e)
		}
	}
	if len(responses) != 2 || responses[1].Kind != KindReplacePatch || responses[1].Error == "" {
		t.Fatalf("entries: %+v", entries)
	}
	replayed, err := Replay(ctx, l, rec.Session())
	if err != nil {
		t.Fatal(err)
	}
	a, _ := json.Marshal(st.Snapshot())
	b, _ := json.Marshal(replayed.Snapshot())
	if string(a) != string(b) {
		t.Fatalf("replay diverged\nlive:   %s\nreplay: %s", a, b)
	}
}

func TestReplay_UnknownSession(t *testing.T) {
	l, _ := openTemp(t, "journal.sqlite")
	if _, err := Replay(context.Background(), l, "missing"); err == nil {
		t.Fatalf("expected error")
	}
}
