package session

import (
	"context"

	"tiger-client/internal/gateway"
	"tiger-client/internal/model"
)

// Owns reports whether command is a begin, update or end of some session
// kind.
func Owns(command string) bool {
	for _, c := range kinds {
		if command == c.begin || contains(c.updates, command) || contains(c.end, command) {
			return true
		}
	}
	return false
}

// Invoke runs a session command named on the wire, with the same
// bookkeeping as the typed gesture methods. handled is false for commands
// that belong to no session kind; nothing is issued for them.
func (m *Manager) Invoke(ctx context.Context, command string, args map[string]any) (call *gateway.Call, handled bool, err error) {
	var ended []model.SessionKind
	for kind, c := range kinds {
		switch {
		case command == c.begin:
			call, err = m.begin(ctx, kind, args)
			return call, true, err
		case contains(c.updates, command):
			call, err = m.update(ctx, kind, command, args)
			return call, true, err
		case contains(c.end, command):
			// cancel_rename closes either rename kind.
			ended = append(ended, kind)
		}
	}
	if len(ended) == 0 {
		return nil, false, nil
	}
	call, err = m.end(ctx, command, args, ended...)
	return call, true, err
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
