// Package journal keeps an append-only record of everything applied to the
// replica and every protocol violation, grouped by client session.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Kind string

const (
	KindReplace   Kind = "replace"
	KindPatch     Kind = "patch"
	KindViolation Kind = "violation"
	// KindReplacePatch is a whole tree with ops on top. Its payload is the
	// response object {"patch": [...], "state": {...}}.
	KindReplacePatch Kind = "replace_patch"
)

type Entry struct {
	ID      string          `json:"id"`
	Session string          `json:"session"`
	Seq     uint64          `json:"seq"`
	Command string          `json:"command"`
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
	At      time.Time       `json:"at"`
}

type SessionInfo struct {
	ID      string    `json:"id"`
	Entries int       `json:"entries"`
	First   time.Time `json:"first"`
	Last    time.Time `json:"last"`
}

// Log is a journal backend. Entries returns a session's entries in append
// order.
type Log interface {
	Append(ctx context.Context, e Entry) error
	Entries(ctx context.Context, session string) ([]Entry, error)
	Sessions(ctx context.Context) ([]SessionInfo, error)
	Close() error
}

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSONL  Backend = "jsonl"
)

// BackendFor picks the backend from the file extension.
func BackendFor(path string) Backend {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return BackendJSONL
	}
	return BackendSQLite
}

// Open opens or creates the journal at path.
func Open(ctx context.Context, path string) (Log, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	switch BackendFor(path) {
	case BackendJSONL:
		return openJSONL(path)
	default:
		return openSQLite(ctx, path)
	}
}

func (e Entry) validate() error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return fmt.Errorf("journal: missing entry id")
	case strings.TrimSpace(e.Session) == "":
		return fmt.Errorf("journal: missing session id")
	}
	switch e.Kind {
	case KindReplace, KindPatch, KindViolation, KindReplacePatch:
		return nil
	}
	return fmt.Errorf("journal: invalid kind %q", e.Kind)
}
