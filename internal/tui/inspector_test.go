package tui

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"tiger-client/internal/enginetest"
	"tiger-client/internal/gateway"
	"tiger-client/internal/keymap"
	"tiger-client/internal/model"
	"tiger-client/internal/model/modeltest"
	"tiger-client/internal/patch"
	"tiger-client/internal/session"
	"tiger-client/internal/store"
	"tiger-client/internal/texture"
)

type rig struct {
	eng  *enginetest.Engine
	st   *store.Store
	dlg  *Dialogs
	sent chan tea.Msg
	m    inspector
}

func newRig(t *testing.T) *rig {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	r := &rig{eng: enginetest.New(), st: store.New(), dlg: NewDialogs(), sent: make(chan tea.Msg, 4)}
	if err := r.st.Replace(modeltest.Walk()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	r.dlg.attach(func(msg tea.Msg) { r.sent <- msg })
	gw := gateway.New(r.eng, r.st, gateway.Options{Dialogs: r.dlg})
	sessions := session.New(gw)
	t.Cleanup(sessions.Close)

	r.m = newInspector(context.Background(), Replica{
		Gateway:   gw,
		Sessions:  sessions,
		Dialogs:   r.dlg,
		Keys:      keymap.Default(),
		Textures:  texture.NewTable(),
		Templates: texture.NewTable(),
	})
	r.update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return r
}

func (r *rig) update(msg tea.Msg) tea.Cmd {
	next, cmd := r.m.Update(msg)
	r.m = next.(inspector)
	return cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// finish runs a dispatch command and feeds its result back.
func (r *rig) finish(t *testing.T, cmd tea.Cmd) callDoneMsg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a dispatch command")
	}
	done, ok := cmd().(callDoneMsg)
	if !ok {
		t.Fatalf("command did not dispatch")
	}
	r.update(done)
	return done
}

func TestChordOf(t *testing.T) {
	cases := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyCtrlS}, "ctrl+s"},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, "space"},
		{tea.KeyMsg{Type: tea.KeyCtrlAt}, "ctrl+space"},
		{keyRunes("S"), "shift+s"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}, Alt: true}, "alt+s"},
		{tea.KeyMsg{Type: tea.KeyCtrlShiftUp}, "ctrl+shift+up"},
		{tea.KeyMsg{Type: tea.KeyShiftHome}, "shift+home"},
		{tea.KeyMsg{Type: tea.KeyDelete}, "delete"},
		{tea.KeyMsg{Type: tea.KeyF2}, "f2"},
	}
	for _, tc := range cases {
		c, ok := chordOf(tc.msg)
		if !ok || c.String() != tc.want {
			t.Errorf("%q: got %q ok=%v, want %q", tc.msg.String(), c.String(), ok, tc.want)
		}
	}
	if _, ok := chordOf(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc"), Paste: true}); ok {
		t.Errorf("pasted text must not form a chord")
	}
}

func TestInspector_SpaceTogglesPlayback(t *testing.T) {
	r := newRig(t)
	r.eng.Reply("play", enginetest.Patch(patch.ReplaceOp(patch.Field("documents", 0, "timelineIsPlaying"), true)))

	done := r.finish(t, r.update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}))
	if done.err != nil || done.action != gateway.ActionTogglePlayback {
		t.Fatalf("done = %+v", done)
	}
	if got := r.eng.Commands(); !reflect.DeepEqual(got, []string{"play"}) {
		t.Fatalf("engine saw %v", got)
	}
	if !strings.Contains(r.m.View(), "Timeline  playing") {
		t.Fatalf("view not refreshed:\n%s", r.m.View())
	}
}

func TestInspector_PromptOwnsUnmodifiedKeys(t *testing.T) {
	r := newRig(t)
	r.eng.Reply("save", enginetest.Patch())

	r.update(keyRunes(":"))
	if r.m.prompt == nil || r.m.prompt.kind != promptCommand {
		t.Fatalf("command prompt not open")
	}
	r.update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	r.update(tea.KeyMsg{Type: tea.KeyDelete})
	if len(r.eng.Requests()) != 0 {
		t.Fatalf("single keys reached the engine: %v", r.eng.Commands())
	}
	if r.m.input.Value() != " " {
		t.Fatalf("input = %q", r.m.input.Value())
	}

	done := r.finish(t, r.update(tea.KeyMsg{Type: tea.KeyCtrlS}))
	if done.action != "save" || done.err != nil {
		t.Fatalf("ctrl+s while typing: %+v", done)
	}
	if r.m.prompt == nil {
		t.Fatalf("modified chord must not close the prompt")
	}

	r.update(tea.KeyMsg{Type: tea.KeyEsc})
	if r.m.prompt != nil {
		t.Fatalf("esc did not close the prompt")
	}
}

func TestInspector_CommandLine(t *testing.T) {
	r := newRig(t)
	r.eng.Reply("select_animation", enginetest.Patch(
		patch.ReplaceOp(patch.Field("documents", 0, "currentAnimationName"), "Idle"),
	))

	r.update(keyRunes(":"))
	r.update(keyRunes("select_animation name=Idle shift=false ctrl=false"))
	done := r.finish(t, r.update(tea.KeyMsg{Type: tea.KeyEnter}))
	if done.err != nil {
		t.Fatalf("select: %v", done.err)
	}
	if r.m.view.CurrentAnimation == nil || r.m.view.CurrentAnimation.Name != "Idle" {
		t.Fatalf("current animation = %+v", r.m.view.CurrentAnimation)
	}

	r.update(keyRunes(":"))
	r.update(keyRunes("select_animation name=Idle"))
	done = r.finish(t, r.update(tea.KeyMsg{Type: tea.KeyEnter}))
	if done.err == nil || !strings.Contains(r.m.View(), `argument "shift": missing`) {
		t.Fatalf("expected argument error in status, got %+v", done)
	}
}

func TestInspector_PickerPrompt(t *testing.T) {
	r := newRig(t)
	r.eng.Reply("open_documents", enginetest.Patch())

	cmd := r.update(tea.KeyMsg{Type: tea.KeyCtrlO})
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()

	var pm promptMsg
	select {
	case msg := <-r.sent:
		pm = msg.(promptMsg)
	case <-time.After(2 * time.Second):
		t.Fatalf("picker never asked")
	}
	r.update(pm)
	if !strings.Contains(r.m.View(), "open sheets>") {
		t.Fatalf("picker prompt not shown:\n%s", r.m.View())
	}

	r.update(keyRunes(`'/art/my sheet.sheet' /b.sheet`))
	r.update(tea.KeyMsg{Type: tea.KeyEnter})

	select {
	case msg := <-result:
		if done := msg.(callDoneMsg); done.err != nil || done.cancelled {
			t.Fatalf("open: %+v", done)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatch did not finish")
	}
	reqs := r.eng.Requests()
	if len(reqs) != 1 || !reflect.DeepEqual(reqs[0].Args["paths"], []string{"/art/my sheet.sheet", "/b.sheet"}) {
		t.Fatalf("requests = %+v", reqs)
	}
}

func TestInspector_PickerCancelIssuesNothing(t *testing.T) {
	r := newRig(t)

	cmd := r.update(tea.KeyMsg{Type: tea.KeyCtrlN})
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()

	r.update(<-r.sent)
	r.update(tea.KeyMsg{Type: tea.KeyEsc})

	done := (<-result).(callDoneMsg)
	if !done.cancelled || done.err != nil {
		t.Fatalf("done = %+v", done)
	}
	r.update(done)
	if len(r.eng.Requests()) != 0 {
		t.Fatalf("engine saw %v", r.eng.Commands())
	}
	if !strings.Contains(r.m.View(), "new_document: cancelled") {
		t.Fatalf("status missing:\n%s", r.m.View())
	}
}

func TestInspector_ShowsPendingSession(t *testing.T) {
	r := newRig(t)
	r.eng.Handle("begin_nudge_hitbox", func(req gateway.Request) (gateway.Response, error) {
		return enginetest.Patch(patch.AddOp(patch.Field("documents", 0, "hitboxesBeingNudged", "-"), req.Args["name"])), nil
	})
	r.eng.Hold()

	next, cmd := r.m.run("begin_nudge_hitbox", map[string]any{"name": "hb1"})
	r.m = next.(inspector)
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()

	deadline := time.Now().Add(2 * time.Second)
	for r.eng.Held() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("begin never issued")
		}
		time.Sleep(time.Millisecond)
	}
	if !strings.Contains(r.m.View(), "hitbox-nudge (pending)") {
		t.Fatalf("pending session not shown:\n%s", r.m.View())
	}

	r.eng.ReleaseAll()
	r.update(<-result)
	out := r.m.View()
	if strings.Contains(out, "(pending)") || !strings.Contains(out, string(model.SessionHitboxNudge)) {
		t.Fatalf("confirmed session not shown:\n%s", out)
	}
}

func TestView_RendersReplica(t *testing.T) {
	r := newRig(t)
	r.m.r.Textures.Invalidate("/sprites/f0.png")

	out := r.m.View()
	for _, want := range []string{"tiger", "a.sheet", "Animations", "▸ walk", "Idle", "f0", "Timeline  paused  0ms", "walk / East", "hb1", "textures invalidated: 1", "ctrl+q quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	s := modeltest.Walk()
	s.Error = &model.UserFacingError{Key: "e1", Title: "Could not save", Summary: "disk full"}
	if err := r.st.Replace(s); err != nil {
		t.Fatal(err)
	}
	r.update(stateMsg{})
	out = r.m.View()
	if !strings.Contains(out, "Could not save") || !strings.Contains(out, "disk full") {
		t.Fatalf("error panel missing:\n%s", out)
	}

	r.update(keyRunes("?"))
	if !strings.Contains(r.m.View(), "play/pause") {
		t.Fatalf("shortcut list missing:\n%s", r.m.View())
	}
}

func TestView_NoDocument(t *testing.T) {
	r := newRig(t)
	if err := r.st.Replace(model.NewAppState()); err != nil {
		t.Fatal(err)
	}
	r.update(stateMsg{})
	if !strings.Contains(r.m.View(), "no open document") {
		t.Fatalf("got:\n%s", r.m.View())
	}
}
