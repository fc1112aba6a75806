package session

import (
	"fmt"

	"tiger-client/internal/model"
)

// SessionActiveError is a begin for a kind that is already active on the
// document.
type SessionActiveError struct {
	Document string
	Kind     model.SessionKind
}

func (e SessionActiveError) Error() string {
	return fmt.Sprintf("%s session already active on %s", e.Kind, e.Document)
}

// SessionConflictError is a begin while a session of another kind is active.
type SessionConflictError struct {
	Document  string
	Active    model.SessionKind
	Requested model.SessionKind
}

func (e SessionConflictError) Error() string {
	return fmt.Sprintf("cannot begin %s on %s while %s is active", e.Requested, e.Document, e.Active)
}

type NoSessionError struct {
	Document string
	Kind     model.SessionKind
}

func (e NoSessionError) Error() string {
	return fmt.Sprintf("no %s session on %s", e.Kind, e.Document)
}

type NoDocumentError struct{}

func (NoDocumentError) Error() string { return "no current document" }
