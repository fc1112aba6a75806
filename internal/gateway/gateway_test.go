package gateway_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tiger-client/internal/enginetest"
	"tiger-client/internal/gateway"
	"tiger-client/internal/model/modeltest"
	"tiger-client/internal/patch"
	"tiger-client/internal/store"
)

func newGateway(t *testing.T, opts gateway.Options) (*gateway.Gateway, *enginetest.Engine, *store.Store) {
	t.Helper()
	st := store.New()
	if err := st.Replace(modeltest.Walk()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	eng := enginetest.New()
	return gateway.New(eng, st, opts), eng, st
}

func waitAll(t *testing.T, calls ...*gateway.Call) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, c := range calls {
		select {
		case <-c.Done():
		case <-ctx.Done():
			t.Fatalf("call #%d (%s) did not settle", c.Seq, c.Request.Command)
		}
	}
}

func isDone(c *gateway.Call) bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}

var (
	docName = patch.Field("documents", 0, "name")
)

func TestGateway_AppliesOutOfOrderRepliesInIssuanceOrder(t *testing.T) {
	var mu sync.Mutex
	var order []uint64
	g, eng, st := newGateway(t, gateway.Options{Observer: func(seq uint64, _ gateway.Request, _ gateway.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			t.Errorf("request #%d failed: %v", seq, err)
		}
		order = append(order, seq)
	}})

	// Each patch only applies on top of the previous one.
	eng.Reply("step_one", enginetest.Patch(patch.TestOp(docName, "a.sheet"), patch.ReplaceOp(docName, "one")))
	eng.Reply("step_two", enginetest.Patch(patch.TestOp(docName, "one"), patch.ReplaceOp(docName, "two")))
	eng.Reply("step_three", enginetest.Patch(patch.TestOp(docName, "two"), patch.ReplaceOp(docName, "three")))
	eng.Hold()

	ctx := context.Background()
	c1 := g.Issue(ctx, gateway.Request{Command: "step_one"})
	c2 := g.Issue(ctx, gateway.Request{Command: "step_two"})
	c3 := g.Issue(ctx, gateway.Request{Command: "step_three"})
	if got := eng.Commands(); len(got) != 3 || got[0] != "step_one" || got[2] != "step_three" {
		t.Fatalf("requests not submitted in issuance order: %v", got)
	}

	rev := st.Revision()
	eng.Release(2)
	eng.Release(1)
	time.Sleep(20 * time.Millisecond)
	if isDone(c2) || isDone(c3) || st.Revision() != rev {
		t.Fatalf("later replies were applied before the first one")
	}
	eng.Release(0)
	waitAll(t, c1, c2, c3)

	for _, c := range []*gateway.Call{c1, c2, c3} {
		if c.Err() != nil {
			t.Fatalf("call #%d: %v", c.Seq, c.Err())
		}
	}
	if got := st.Snapshot().Documents[0].Name; got != "three" {
		t.Fatalf("unexpected final name %q", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("unexpected apply order %v", order)
	}
}

func TestGateway_FailedRequestReleasesItsSlot(t *testing.T) {
	g, eng, st := newGateway(t, gateway.Options{})
	eng.Handle("save", enginetest.Fail("disk full"))
	eng.Reply("hide_origin", enginetest.Patch(patch.ReplaceOp(patch.Field("documents", 0, "hideOrigin"), true)))
	eng.Hold()

	ctx := context.Background()
	failed := g.Issue(ctx, gateway.Request{Command: "save"})
	ok := g.Issue(ctx, gateway.Request{Command: "hide_origin"})
	eng.Release(1)
	eng.Release(0)
	waitAll(t, failed, ok)

	var ee gateway.EngineError
	if !errors.As(failed.Err(), &ee) || ee.Command != "save" {
		t.Fatalf("expected EngineError, got %v", failed.Err())
	}
	if ok.Err() != nil {
		t.Fatalf("second call: %v", ok.Err())
	}
	if !st.Snapshot().Documents[0].HideOrigin {
		t.Fatalf("second reply was not applied")
	}
}

func TestGateway_RejectedPatchDoesNotBlockQueue(t *testing.T) {
	g, eng, st := newGateway(t, gateway.Options{})
	eng.Reply("bad", enginetest.Patch(patch.ReplaceOp(patch.Field("documents", 7, "name"), "x")))
	eng.Reply("good", enginetest.Patch(patch.ReplaceOp(docName, "renamed")))

	ctx := context.Background()
	bad := g.Issue(ctx, gateway.Request{Command: "bad"})
	good := g.Issue(ctx, gateway.Request{Command: "good"})
	waitAll(t, bad, good)

	var pe store.ProtocolError
	if !errors.As(bad.Err(), &pe) {
		t.Fatalf("expected ProtocolError, got %v", bad.Err())
	}
	if good.Err() != nil || st.Snapshot().Documents[0].Name != "renamed" {
		t.Fatalf("queue stalled after a rejected patch: %v", good.Err())
	}
}

func TestGateway_FullStateReply(t *testing.T) {
	st := store.New()
	eng := enginetest.New()
	eng.Reply("get_state", enginetest.State(modeltest.Walk()))
	g := gateway.New(eng, st, gateway.Options{})

	if err := g.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	snap := st.Snapshot()
	if len(snap.Documents) != 1 || snap.CurrentDocumentPath == nil || *snap.CurrentDocumentPath != "/a.sheet" {
		t.Fatalf("unexpected tree after sync: %+v", snap)
	}
}

func TestGateway_TimeoutKeepsReplyInQueue(t *testing.T) {
	g, eng, st := newGateway(t, gateway.Options{Timeout: 10 * time.Millisecond})
	eng.Reply("rename", enginetest.Patch(patch.ReplaceOp(docName, "renamed")))
	eng.Reply("check", enginetest.Patch(patch.TestOp(docName, "renamed"), patch.ReplaceOp(docName, "checked")))
	eng.Hold()

	ctx := context.Background()
	c := g.Issue(ctx, gateway.Request{Command: "rename"})
	err := c.Wait(ctx)
	var te gateway.TimeoutError
	if !errors.As(err, &te) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if isDone(c) {
		t.Fatalf("a timed-out call must keep its queue slot")
	}
	next := g.Issue(ctx, gateway.Request{Command: "check"})

	eng.ReleaseAll()
	waitAll(t, c, next)
	if c.Err() != nil || next.Err() != nil {
		t.Fatalf("late reply was not applied: %v, %v", c.Err(), next.Err())
	}
	if got := st.Snapshot().Documents[0].Name; got != "checked" {
		t.Fatalf("replica diverged from the engine: name %q", got)
	}
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("wait after settling: %v", err)
	}
}

func TestGateway_CancelledContext(t *testing.T) {
	g, eng, st := newGateway(t, gateway.Options{})
	eng.Reply("rename", enginetest.Patch(patch.ReplaceOp(docName, "renamed")))

	// Cancelled before issue: nothing is sent.
	dead, cancel := context.WithCancel(context.Background())
	cancel()
	c := g.Issue(dead, gateway.Request{Command: "rename"})
	waitAll(t, c)
	if !errors.Is(c.Err(), context.Canceled) || len(eng.Requests()) != 0 {
		t.Fatalf("expected unsent cancelled call, got %v with %d requests", c.Err(), len(eng.Requests()))
	}

	// Cancelled in flight: the reply still lands.
	eng.Hold()
	ctx, cancel := context.WithCancel(context.Background())
	c = g.Issue(ctx, gateway.Request{Command: "rename"})
	cancel()
	eng.ReleaseAll()
	waitAll(t, c)
	if c.Err() != nil || st.Snapshot().Documents[0].Name != "renamed" {
		t.Fatalf("in-flight reply dropped: %v, name %q", c.Err(), st.Snapshot().Documents[0].Name)
	}
}

// lossyEngine loses the reply of one command after accepting it.
type lossyEngine struct {
	*enginetest.Engine
	lose string
}

func (e lossyEngine) Submit(ctx context.Context, req gateway.Request) <-chan gateway.Reply {
	ch := e.Engine.Submit(ctx, req)
	if req.Command != e.lose {
		return ch
	}
	lost := make(chan gateway.Reply)
	close(lost)
	return lost
}

func TestGateway_LostReplyMarksReplicaStale(t *testing.T) {
	st := store.New()
	if err := st.Replace(modeltest.Walk()); err != nil {
		t.Fatal(err)
	}
	var violations []error
	st.OnViolation(func(err error) { violations = append(violations, err) })
	eng := enginetest.New()
	eng.Reply("rename", enginetest.Patch(patch.ReplaceOp(docName, "renamed")))
	eng.Reply("undo", enginetest.Patch(patch.ReplaceOp(docName, "undone")))
	eng.Reply("get_state", enginetest.State(modeltest.Walk()))
	g := gateway.New(lossyEngine{Engine: eng, lose: "rename"}, st, gateway.Options{})

	ctx := context.Background()
	if err := g.Do(ctx, gateway.Request{Command: "rename"}); !errors.Is(err, gateway.ErrReplyLost) {
		t.Fatalf("expected lost reply, got %v", err)
	}
	if !g.Stale() {
		t.Fatalf("expected stale replica")
	}
	rev := st.Revision()
	err := g.Do(ctx, gateway.Request{Command: "undo"})
	var se gateway.StaleError
	if !errors.As(err, &se) || st.Revision() != rev || len(violations) != 1 {
		t.Fatalf("patch over a stale replica: err %v, rev %d->%d, %d violations", err, rev, st.Revision(), len(violations))
	}
	if err := g.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if g.Stale() {
		t.Fatalf("full state must clear staleness")
	}
	if err := g.Do(ctx, gateway.Request{Command: "undo"}); err != nil {
		t.Fatalf("patch after resync: %v", err)
	}
}

func TestGateway_FullStateWithRejectedOpsChangesNothing(t *testing.T) {
	g, eng, st := newGateway(t, gateway.Options{})
	before := st.Snapshot()
	resp := enginetest.State(modeltest.State(modeltest.Document("/b.sheet")))
	resp.Patch = patch.Patch{patch.ReplaceOp(patch.Field("nope"), 1)}
	eng.Reply("open_documents", resp)

	var pe store.ProtocolError
	if err := g.Do(context.Background(), gateway.Request{Command: "open_documents"}); !errors.As(err, &pe) {
		t.Fatalf("expected protocol error, got %v", err)
	}
	if st.Snapshot() != before {
		t.Fatalf("rejected response half-applied: %+v", st.Snapshot().Documents)
	}
}

func TestDispatch_CancelledPickerIssuesNothing(t *testing.T) {
	g, eng, st := newGateway(t, gateway.Options{Dialogs: gateway.NoDialogs{}})
	rev := st.Revision()
	for _, action := range []string{"open_documents", "new_document", "save_as", "import_frames"} {
		c, err := g.Dispatch(context.Background(), action, nil)
		if err != nil || c != nil {
			t.Fatalf("%s: expected no call, got %v, %v", action, c, err)
		}
	}
	if n := len(eng.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
	if st.Revision() != rev {
		t.Fatalf("tree changed after cancelled pickers")
	}
}

func TestDispatch_PickerAnswerBecomesArgument(t *testing.T) {
	g, eng, _ := newGateway(t, gateway.Options{Dialogs: gateway.StaticDialogs{Open: []string{"/b.sheet", "/c.sheet"}, Save: "/copy.sheet"}})
	ctx := context.Background()
	open, err := g.Dispatch(ctx, "open_documents", nil)
	if err != nil || open == nil {
		t.Fatalf("open: %v", err)
	}
	saveAs, err := g.Dispatch(ctx, "save_as", nil)
	if err != nil || saveAs == nil {
		t.Fatalf("save as: %v", err)
	}
	waitAll(t, open, saveAs)

	reqs := eng.Requests()
	paths, _ := reqs[0].Args["paths"].([]string)
	if reqs[0].Command != "open_documents" || len(paths) != 2 || paths[1] != "/c.sheet" {
		t.Fatalf("unexpected open request %+v", reqs[0])
	}
	if reqs[1].Command != "save_as" || reqs[1].Args["newPath"] != "/copy.sheet" {
		t.Fatalf("unexpected save_as request %+v", reqs[1])
	}

	// Explicit arguments skip the picker.
	if _, err := g.Dispatch(ctx, "open_documents", map[string]any{"paths": []any{"/d.sheet"}}); err != nil {
		t.Fatalf("open with args: %v", err)
	}
	last := eng.Requests()[2]
	if p := last.Args["paths"].([]string); len(p) != 1 || p[0] != "/d.sheet" {
		t.Fatalf("unexpected explicit open %+v", last)
	}
}

func TestDispatch_TogglePlayback(t *testing.T) {
	g, eng, st := newGateway(t, gateway.Options{})
	eng.Reply("play", enginetest.Patch(patch.ReplaceOp(patch.Field("documents", 0, "timelineIsPlaying"), true)))
	ctx := context.Background()

	c, err := g.Dispatch(ctx, gateway.ActionTogglePlayback, nil)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	waitAll(t, c)
	if !st.Snapshot().Documents[0].TimelineIsPlaying {
		t.Fatalf("expected playback to start")
	}
	c, err = g.Dispatch(ctx, gateway.ActionTogglePlayback, nil)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	waitAll(t, c)
	if got := eng.Commands(); len(got) != 2 || got[0] != "play" || got[1] != "pause" {
		t.Fatalf("unexpected commands %v", got)
	}

	empty := gateway.New(eng, store.New(), gateway.Options{})
	if c, err := empty.Dispatch(ctx, gateway.ActionTogglePlayback, nil); c != nil || err != nil {
		t.Fatalf("toggle without a document should do nothing, got %v, %v", c, err)
	}
}

func TestInvoke_ValidatesArguments(t *testing.T) {
	g, eng, _ := newGateway(t, gateway.Options{})
	ctx := context.Background()

	bad := []struct {
		command string
		args    map[string]any
	}{
		{"focus_document", nil},
		{"focus_document", map[string]any{"path": 4}},
		{"save", map[string]any{"extra": true}},
		{"select_direction", map[string]any{"direction": "Up"}},
		{"scrub_timeline", map[string]any{"timeMillis": 1.5}},
		{"pan", map[string]any{"delta": []any{1.0}}},
		{"begin_resize_hitbox", map[string]any{"name": "hb1", "axis": "Q"}},
		{"apply_direction_preset", map[string]any{"preset": "Sideways"}},
	}
	for _, tc := range bad {
		_, err := g.Invoke(ctx, tc.command, tc.args)
		var ae gateway.ArgError
		if !errors.As(err, &ae) {
			t.Fatalf("%s %v: expected ArgError, got %v", tc.command, tc.args, err)
		}
	}
	var ue gateway.UnknownActionError
	if _, err := g.Invoke(ctx, "frobnicate", nil); !errors.As(err, &ue) {
		t.Fatalf("expected UnknownActionError, got %v", err)
	}
	if _, err := g.Dispatch(ctx, "frobnicate", nil); !errors.As(err, &ue) {
		t.Fatalf("expected UnknownActionError from Dispatch, got %v", err)
	}
	if n := len(eng.Requests()); n != 0 {
		t.Fatalf("invalid invocations must not reach the engine, got %d", n)
	}

	c, err := g.Invoke(ctx, "update_nudge_hitbox", map[string]any{"displacement": []any{2.0, -1}, "bothAxis": false})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	waitAll(t, c)
	args := eng.Requests()[0].Args
	if args["displacement"] != [2]float64{2, -1} || args["bothAxis"] != false {
		t.Fatalf("unexpected normalized args %#v", args)
	}
	c, err = g.Invoke(ctx, "scrub_timeline", map[string]any{"timeMillis": 250.0})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	waitAll(t, c)
	if got := eng.Requests()[1].Args["timeMillis"]; got != int64(250) {
		t.Fatalf("expected int64 250, got %#v", got)
	}
	c, err = g.Invoke(ctx, "create_hitbox", nil)
	if err != nil {
		t.Fatalf("create_hitbox without position: %v", err)
	}
	waitAll(t, c)
}

func TestCommands_SortedAndComplete(t *testing.T) {
	cmds := gateway.Commands()
	for i := 1; i < len(cmds); i++ {
		if cmds[i-1].Name >= cmds[i].Name {
			t.Fatalf("commands not sorted at %q", cmds[i].Name)
		}
	}
	for _, name := range []string{"get_state", "begin_nudge_hitbox", "end_export_as", "relocate_frame", "cancel_rename"} {
		if _, ok := gateway.LookupCommand(name); !ok {
			t.Fatalf("missing command %s", name)
		}
	}
}
