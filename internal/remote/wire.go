package remote

import (
	"encoding/json"

	"tiger-client/internal/patch"
)

// requestFrame is sent for every issued command.
type requestFrame struct {
	ID      string         `json:"id"`
	Command string         `json:"command"`
	Args    map[string]any `json:"args,omitempty"`
}

// inFrame is either a reply (ID set) or a push notification (Event set).
type inFrame struct {
	ID    string          `json:"id,omitempty"`
	Patch patch.Patch     `json:"patch,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
	Error *string         `json:"error,omitempty"`

	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is a push notification that is not tied to any request.
type Event struct {
	Name    string
	Payload json.RawMessage
}

const (
	EventInvalidateTexture  = "invalidate-texture"
	EventInvalidateTemplate = "invalidate-template"
)
