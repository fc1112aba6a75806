package patch

import (
	"errors"
	"fmt"
)

var errBadEscape = errors.New("invalid '~' escape")

type PointerError struct {
	Raw    string
	Reason string
}

func (e PointerError) Error() string {
	return fmt.Sprintf("invalid pointer %q: %s", e.Raw, e.Reason)
}

// PathError reports a target that does not exist or has the wrong shape for
// the operation.
type PathError struct {
	Op     Kind
	Path   Pointer
	Reason string
}

func (e PathError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Op, e.Path.String(), e.Reason)
}

type TestFailedError struct {
	Path Pointer
}

func (e TestFailedError) Error() string {
	return fmt.Sprintf("test %q: value differs", e.Path.String())
}

// MalformedOpError reports an operation that cannot be decoded from the wire.
type MalformedOpError struct {
	Reason string
}

func (e MalformedOpError) Error() string {
	return "malformed patch operation: " + e.Reason
}

// ApplyError identifies the operation that aborted an Apply.
type ApplyError struct {
	Index int
	Op    Kind
	Err   error
}

func (e ApplyError) Error() string {
	return fmt.Sprintf("patch op %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e ApplyError) Unwrap() error { return e.Err }
