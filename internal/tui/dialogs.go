package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"tiger-client/internal/gateway"
)

type promptKind int

const (
	promptCommand promptKind = iota
	promptOpen
	promptSave
)

type answer struct {
	text string
	ok   bool
}

// prompt is one open line of text input. Picker prompts carry a reply
// channel that the dispatching goroutine is blocked on.
type prompt struct {
	kind    promptKind
	title   string
	initial string
	reply   chan answer
}

type promptMsg struct{ p *prompt }

// Dialogs answers gateway pickers with a path prompt inside the running
// inspector. Before a program is attached every picker is cancelled.
type Dialogs struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewDialogs() *Dialogs { return &Dialogs{} }

var _ gateway.Dialogs = (*Dialogs)(nil)

func (d *Dialogs) attach(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	d.mu.Unlock()
}

func (d *Dialogs) ask(ctx context.Context, p *prompt) (answer, error) {
	d.mu.Lock()
	send := d.send
	d.mu.Unlock()
	if send == nil {
		return answer{}, nil
	}
	p.reply = make(chan answer, 1)
	send(promptMsg{p: p})
	select {
	case a := <-p.reply:
		return a, nil
	case <-ctx.Done():
		return answer{}, ctx.Err()
	}
}

func (d *Dialogs) PickOpen(ctx context.Context, kind gateway.PickKind) ([]string, bool, error) {
	a, err := d.ask(ctx, &prompt{kind: promptOpen, title: "open " + string(kind)})
	if err != nil || !a.ok {
		return nil, false, err
	}
	paths, err := splitShellWords(a.text)
	if err != nil {
		return nil, false, err
	}
	return paths, len(paths) > 0, nil
}

func (d *Dialogs) PickSave(ctx context.Context, kind gateway.PickKind, suggested string) (string, bool, error) {
	a, err := d.ask(ctx, &prompt{kind: promptSave, title: "save " + string(kind), initial: suggested})
	if err != nil || !a.ok {
		return "", false, err
	}
	words, err := splitShellWords(a.text)
	if err != nil {
		return "", false, err
	}
	if len(words) != 1 {
		return "", false, nil
	}
	return words[0], true, nil
}
