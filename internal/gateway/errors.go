package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrReplyLost marks a reply that will never arrive for a request the engine
// may already have carried out. Engines wrap it in the errors they deliver
// for such requests.
var ErrReplyLost = errors.New("reply lost")

var errEngineClosed = fmt.Errorf("%w: engine closed the reply channel", ErrReplyLost)

// TimeoutError is returned by Call.Wait when the round trip outlasts the
// gateway's timeout. The request is still pending.
type TimeoutError struct {
	Command string
	After   time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("%s: no reply after %v (still pending)", e.Command, e.After)
}

func (e TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// StaleError refuses a patch computed against engine state the replica
// never received.
type StaleError struct {
	Command string
}

func (e StaleError) Error() string {
	return fmt.Sprintf("%s: replica is stale; patch refused until the next full state", e.Command)
}

type UnknownActionError struct {
	Action string
}

func (e UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Action)
}

// ArgError reports a missing, unexpected or mistyped command argument.
type ArgError struct {
	Command string
	Arg     string
	Reason  string
}

func (e ArgError) Error() string {
	return fmt.Sprintf("%s: argument %q: %s", e.Command, e.Arg, e.Reason)
}

// EngineError is a request the engine refused outright. User-facing failures
// are not EngineErrors; they arrive as patches that set the error banner.
type EngineError struct {
	Command string
	Message string
}

func (e EngineError) Error() string {
	return fmt.Sprintf("engine rejected %s: %s", e.Command, e.Message)
}
