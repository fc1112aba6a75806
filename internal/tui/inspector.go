package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tiger-client/internal/gateway"
	"tiger-client/internal/keymap"
	"tiger-client/internal/selector"
	"tiger-client/internal/session"
	"tiger-client/internal/texture"
)

// Replica is everything the inspector reads and drives.
type Replica struct {
	Gateway   *gateway.Gateway
	Sessions  *session.Manager
	Dialogs   *Dialogs
	Keys      *keymap.Table
	Textures  *texture.Table
	Templates *texture.Table
}

type stateMsg struct{}

type callDoneMsg struct {
	action    string
	cancelled bool
	err       error
}

// localKeys are the inspector's own bindings. Everything else goes through
// the keymap table to the engine.
type localKeys struct {
	Quit    key.Binding
	Command key.Binding
	Help    key.Binding
	Submit  key.Binding
	Cancel  key.Binding
}

func defaultLocalKeys() localKeys {
	return localKeys{
		Quit:    key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		Command: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "shortcuts")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "cancel")),
	}
}

func (k localKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Command, k.Help, k.Quit}
}

func (k localKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Command, k.Help, k.Quit}, {k.Submit, k.Cancel}}
}

type inspector struct {
	ctx context.Context
	r   Replica

	cache *selector.Cache
	view  *selector.View

	local localKeys
	help  help.Model
	input textinput.Model

	prompt    *prompt
	shortcuts bool

	pending   int
	status    string
	statusErr bool

	width  int
	height int
}

func newInspector(ctx context.Context, r Replica) inspector {
	if r.Keys == nil {
		r.Keys = keymap.Default()
	}
	in := textinput.New()
	in.CharLimit = 4096
	in.Width = 60

	m := inspector{
		ctx:   ctx,
		r:     r,
		cache: &selector.Cache{},
		local: defaultLocalKeys(),
		help:  help.New(),
		input: in,
	}
	m.refresh()
	return m
}

func (m *inspector) refresh() {
	m.view = m.cache.View(m.r.Gateway.Store().Snapshot())
}

func (m inspector) Init() tea.Cmd { return nil }

func (m inspector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if w := msg.Width - 20; w > 10 {
			m.input.Width = w
		}
		return m, nil

	case stateMsg:
		m.refresh()
		return m, nil

	case promptMsg:
		if m.prompt != nil {
			m.closePrompt(false)
		}
		m.openPrompt(msg.p)
		return m, textinput.Blink

	case callDoneMsg:
		m.pending--
		m.refresh()
		switch {
		case msg.err != nil:
			m.status, m.statusErr = fmt.Sprintf("%s: %v", msg.action, msg.err), true
		case msg.cancelled:
			m.status, m.statusErr = msg.action+": cancelled", false
		default:
			m.status, m.statusErr = msg.action, false
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m inspector) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.local.Quit) {
		if m.prompt != nil {
			m.closePrompt(false)
		}
		return m, tea.Quit
	}

	if m.prompt != nil {
		switch {
		case key.Matches(msg, m.local.Cancel):
			m.closePrompt(false)
			return m, nil
		case key.Matches(msg, m.local.Submit):
			return m.submit()
		}
		if c, ok := chordOf(msg); ok {
			if b, ok := m.r.Keys.Lookup(c, true); ok {
				return m.run(b.Action, b.Args)
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.local.Command):
		m.openPrompt(&prompt{kind: promptCommand, title: "command"})
		return m, textinput.Blink
	case key.Matches(msg, m.local.Help):
		m.shortcuts = !m.shortcuts
		m.help.ShowAll = m.shortcuts
		return m, nil
	}
	if c, ok := chordOf(msg); ok {
		if b, ok := m.r.Keys.Lookup(c, false); ok {
			return m.run(b.Action, b.Args)
		}
	}
	return m, nil
}

func (m *inspector) openPrompt(p *prompt) {
	m.prompt = p
	m.input.Prompt = p.title + "> "
	m.input.SetValue(p.initial)
	m.input.CursorEnd()
	m.input.Focus()
}

// closePrompt hides the prompt. A waiting picker gets the answer.
func (m *inspector) closePrompt(ok bool) {
	p := m.prompt
	m.prompt = nil
	m.input.Blur()
	if p != nil && p.reply != nil {
		p.reply <- answer{text: m.input.Value(), ok: ok}
	}
	m.input.SetValue("")
}

func (m inspector) submit() (tea.Model, tea.Cmd) {
	p := m.prompt
	if p.kind != promptCommand {
		m.closePrompt(true)
		return m, nil
	}
	line := m.input.Value()
	m.closePrompt(true)

	words, err := splitShellWords(line)
	if err != nil {
		m.status, m.statusErr = err.Error(), true
		return m, nil
	}
	if len(words) == 0 {
		return m, nil
	}
	args, err := gateway.ParseArgs(words[1:])
	if err != nil {
		m.status, m.statusErr = err.Error(), true
		return m, nil
	}
	return m.run(words[0], args)
}

// run dispatches an action off the UI goroutine. Pickers block that
// goroutine while the prompt is open.
func (m inspector) run(action string, args map[string]any) (tea.Model, tea.Cmd) {
	m.pending++
	ctx, r := m.ctx, m.r
	return m, func() tea.Msg {
		var (
			call    *gateway.Call
			handled bool
			err     error
		)
		if r.Sessions != nil {
			call, handled, err = r.Sessions.Invoke(ctx, action, args)
		}
		if !handled {
			call, err = r.Gateway.Dispatch(ctx, action, args)
		}
		if err != nil {
			return callDoneMsg{action: action, err: err}
		}
		if call == nil {
			return callDoneMsg{action: action, cancelled: true}
		}
		return callDoneMsg{action: action, err: call.Wait(ctx)}
	}
}
