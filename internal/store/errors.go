package store

import (
	"fmt"

	"tiger-client/internal/patch"
)

// ShapeError reports a patched document that no longer matches the typed tree:
// a missing or unknown field, a null outside a nullable field, or a value of the
// wrong JSON kind.
type ShapeError struct {
	Path   patch.Pointer
	Reason string
}

func (e ShapeError) Error() string {
	p := e.Path.String()
	if p == "" {
		p = "/"
	}
	return fmt.Sprintf("shape mismatch at %s: %s", p, e.Reason)
}

// ProtocolError wraps every rejection of an engine response or session call.
// The tree is left at its last-known-good state.
type ProtocolError struct {
	Action string
	Err    error
}

func (e ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation (%s): %v", e.Action, e.Err)
}

func (e ProtocolError) Unwrap() error { return e.Err }
