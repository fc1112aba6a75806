package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"tiger-client/internal/model"
)

type Options struct {
	AltScreen bool
}

// Run shows the inspector until the user quits or ctx ends.
func Run(ctx context.Context, r Replica, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	popts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		popts = append(popts, tea.WithAltScreen())
	}
	p := tea.NewProgram(newInspector(ctx, r), popts...)

	if r.Dialogs != nil {
		r.Dialogs.attach(p.Send)
		defer r.Dialogs.attach(nil)
	}

	// Store changes arrive on the apply goroutine. Coalesce them; the writer
	// must not wait on the UI.
	changed := make(chan struct{}, 1)
	done := make(chan struct{})
	stop := r.Gateway.Store().Subscribe(func(*model.AppState) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer stop()
	go func() {
		for {
			select {
			case <-changed:
				p.Send(stateMsg{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
