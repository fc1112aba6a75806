package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"tiger-client/internal/keymap"
)

// chordOf translates a terminal key event into a keymap chord. Pasted text
// and keys the table cannot name report false.
func chordOf(msg tea.KeyMsg) (keymap.Chord, bool) {
	switch msg.Type {
	case tea.KeySpace:
		return keymap.Chord{Key: "space", Alt: msg.Alt}, true
	case tea.KeyCtrlAt:
		// Terminals send NUL for ctrl+space.
		return keymap.Chord{Key: "space", Ctrl: true, Alt: msg.Alt}, true
	case tea.KeyRunes:
		if msg.Paste || len(msg.Runes) != 1 {
			return keymap.Chord{}, false
		}
	}
	c, err := keymap.ParseChord(msg.String())
	if err != nil {
		return keymap.Chord{}, false
	}
	return c, true
}
