package journal

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"tiger-client/internal/gateway"
	"tiger-client/internal/patch"
	"tiger-client/internal/store"
)

// Recorder appends gateway outcomes and store violations to a Log under one
// session id. Observe and Violation plug into gateway.Options.Observer and
// store.OnViolation.
type Recorder struct {
	log     Log
	session string
	now     func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	err     error
}

func NewRecorder(log Log) *Recorder {
	return &Recorder{
		log:     log,
		session: uuid.NewString(),
		now:     func() time.Time { return time.Now().UTC() },
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (r *Recorder) Session() string { return r.session }

// Err is the most recent append failure, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Observe records one settled request as one entry. A full-tree reply is a
// replace entry, or a replace_patch entry when it also carries ops. A request
// that failed before anything was applied is a patch entry with no payload.
func (r *Recorder) Observe(seq uint64, req gateway.Request, resp gateway.Response, err error) {
	var pe store.ProtocolError
	rejected := err != nil && errors.As(err, &pe)
	if err != nil && !rejected {
		r.append(Entry{Seq: seq, Command: req.Command, Kind: KindPatch, Error: err.Error()})
		return
	}

	e := Entry{Seq: seq, Command: req.Command}
	switch {
	case resp.HasState() && len(resp.Patch) > 0:
		b, merr := json.Marshal(resp)
		if merr != nil {
			glog.Errorf("journal: encode response #%d: %v", seq, merr)
			return
		}
		e.Kind, e.Payload = KindReplacePatch, b
	case resp.HasState():
		e.Kind, e.Payload = KindReplace, append(json.RawMessage(nil), resp.State...)
	default:
		ops := resp.Patch
		if ops == nil {
			ops = patch.Patch{}
		}
		b, merr := json.Marshal(ops)
		if merr != nil {
			glog.Errorf("journal: encode patch #%d: %v", seq, merr)
			return
		}
		e.Kind, e.Payload = KindPatch, b
	}
	if rejected {
		e.Error = err.Error()
	}
	r.append(e)
}

// Violation records a rejection reported through the store.
func (r *Recorder) Violation(err error) {
	if err == nil {
		return
	}
	e := Entry{Kind: KindViolation, Error: err.Error()}
	var pe store.ProtocolError
	if errors.As(err, &pe) {
		e.Command = pe.Action
	}
	r.append(e)
}

func (r *Recorder) append(e Entry) {
	r.mu.Lock()
	e.ID = ulid.MustNew(ulid.Timestamp(r.now()), r.entropy).String()
	r.mu.Unlock()
	e.Session = r.session
	e.At = r.now()
	if err := r.log.Append(context.Background(), e); err != nil {
		glog.Errorf("journal: append %s %s: %v", e.Kind, e.Command, err)
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
	}
}
