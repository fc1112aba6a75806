// Package keymap maps key chords onto gateway actions.
package keymap

import (
	"fmt"
	"sort"
	"strings"
)

// Chord is one key press with its modifiers. Key is lower case; named keys
// use the spellings in keyNames.
type Chord struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
}

var keyNames = map[string]string{
	"space":      "space",
	" ":          "space",
	"+":          "plus",
	"plus":       "plus",
	"=":          "plus",
	"-":          "minus",
	"minus":      "minus",
	"del":        "delete",
	"delete":     "delete",
	"up":         "up",
	"down":       "down",
	"left":       "left",
	"right":      "right",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
	"home":       "home",
	"end":        "end",
	"esc":        "esc",
	"escape":     "esc",
	"enter":      "enter",
	"tab":        "tab",
}

// ParseChord reads chords such as "ctrl+shift+s", "shift+home" or "f2".
// A single upper case letter implies shift.
func ParseChord(s string) (Chord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Chord{}, fmt.Errorf("keymap: empty chord")
	}
	if s == "+" {
		return Chord{Key: "plus"}, nil
	}
	var c Chord
	parts := strings.Split(s, "+")
	// "ctrl++" names the plus key.
	if strings.HasSuffix(s, "++") {
		parts = append(strings.Split(strings.TrimSuffix(s, "++"), "+"), "+")
	}
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "ctrl", "control":
			c.Ctrl = true
		case "alt", "option":
			c.Alt = true
		case "shift":
			c.Shift = true
		default:
			return Chord{}, fmt.Errorf("keymap: unknown modifier %q in %q", p, s)
		}
	}
	key := parts[len(parts)-1]
	if key == "" {
		return Chord{}, fmt.Errorf("keymap: missing key in %q", s)
	}
	if len(key) == 1 && key[0] >= 'A' && key[0] <= 'Z' {
		c.Shift = true
	}
	c.Key = normalizeKey(key)
	return c, nil
}

func MustParseChord(s string) Chord {
	c, err := ParseChord(s)
	if err != nil {
		panic(err)
	}
	return c
}

func normalizeKey(k string) string {
	if n, ok := keyNames[strings.ToLower(k)]; ok {
		return n
	}
	return strings.ToLower(k)
}

// String renders the canonical form: ctrl, alt, shift, then the key.
func (c Chord) String() string {
	var b strings.Builder
	if c.Ctrl {
		b.WriteString("ctrl+")
	}
	if c.Alt {
		b.WriteString("alt+")
	}
	if c.Shift {
		b.WriteString("shift+")
	}
	b.WriteString(c.Key)
	return b.String()
}

// Modified reports whether the chord carries ctrl or alt. Shift alone still
// types text, so it does not count.
func (c Chord) Modified() bool { return c.Ctrl || c.Alt }

// Binding is the action a chord triggers and its fixed arguments.
type Binding struct {
	Action string
	Args   map[string]any
	Help   string
}

type Table struct {
	bindings map[Chord]Binding
}

func NewTable() *Table { return &Table{bindings: map[Chord]Binding{}} }

// Bind adds or replaces the binding for chord.
func (t *Table) Bind(chord string, b Binding) error {
	c, err := ParseChord(chord)
	if err != nil {
		return err
	}
	t.bindings[c] = b
	return nil
}

func (t *Table) mustBind(chord, action, help string, args map[string]any) {
	if err := t.Bind(chord, Binding{Action: action, Args: args, Help: help}); err != nil {
		panic(err)
	}
}

// Lookup finds the binding for c. While text input has focus, unmodified
// chords belong to the input and never match.
func (t *Table) Lookup(c Chord, inputFocused bool) (Binding, bool) {
	if inputFocused && !c.Modified() {
		return Binding{}, false
	}
	b, ok := t.bindings[c]
	return b, ok
}

type Entry struct {
	Chord   Chord
	Binding Binding
}

// Entries lists every binding ordered by chord string.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.bindings))
	for c, b := range t.bindings {
		out = append(out, Entry{Chord: c, Binding: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Chord.String() < out[j].Chord.String() })
	return out
}

func (t *Table) Len() int { return len(t.bindings) }
