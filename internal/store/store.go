package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/golang/glog"

	"tiger-client/internal/model"
	"tiger-client/internal/patch"
)

var appStateType = reflect.TypeOf(model.AppState{})

// ProtocolError.Action values for rejections raised by the store itself.
const (
	ActionReplace = "replace"
	ActionApply   = "apply"
)

// Store owns the replicated tree. It is the only writer: Replace and Apply
// run one at a time, and each success publishes a fresh immutable snapshot.
//
// Snapshots returned by Snapshot and passed to subscribers must be treated as
// read-only; nothing in them is shared with the next snapshot's backing
// generic document.
type Store struct {
	// wmu serializes writers for the whole apply and notify sequence.
	wmu sync.Mutex

	mu   sync.RWMutex
	raw  any
	snap *model.AppState
	rev  uint64

	subMu   sync.Mutex
	subs    map[int]func(*model.AppState)
	nextSub int

	violation func(error)
}

// New returns a store holding the empty pre-synchronization tree.
func New() *Store {
	s := model.NewAppState()
	raw, err := patch.Generic(s)
	if err != nil {
		panic(err)
	}
	return &Store{raw: raw, snap: s, subs: map[int]func(*model.AppState){}}
}

// Snapshot returns the current tree. It is never nil.
func (s *Store) Snapshot() *model.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Revision counts successful Replace and non-empty Apply calls.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// OnViolation installs the developer-visible sink that receives every
// protocol violation reported through this store.
func (s *Store) OnViolation(fn func(error)) {
	s.subMu.Lock()
	s.violation = fn
	s.subMu.Unlock()
}

// Report records a protocol violation found outside the store itself, such as
// a duplicate session begin.
func (s *Store) Report(err error) {
	if err == nil {
		return
	}
	glog.Errorf("%v", err)
	s.subMu.Lock()
	fn := s.violation
	s.subMu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Subscribe registers fn to run after every change to the tree, on the
// writer's goroutine and in change order. The returned func unregisters it.
func (s *Store) Subscribe(fn func(*model.AppState)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Replace swaps in a whole new tree, as sent by the engine at startup and for
// session-establishing commands. Nil slices and maps in next count as empty.
func (s *Store) Replace(next *model.AppState) error {
	if next == nil {
		return s.reject(ActionReplace, errors.New("nil state"))
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()

	raw, err := patch.Generic(next)
	if err != nil {
		return s.reject(ActionReplace, err)
	}
	raw = fillEmpty(raw, appStateType, false)
	snap, err := materialize(raw)
	if err != nil {
		return s.reject(ActionReplace, err)
	}
	s.commit(raw, snap)
	return nil
}

// ReplaceJSON is Replace for a tree still in wire form.
func (s *Store) ReplaceJSON(b []byte) error {
	return s.ReplaceAndApply(b, nil)
}

// ReplaceAndApply swaps in the wire-form tree b with p applied on top, as one
// transaction. If either step is rejected the current tree stays in place.
func (s *Store) ReplaceAndApply(b []byte, p patch.Patch) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return s.reject(ActionReplace, err)
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if len(p) > 0 {
		if err := checkShape(raw, appStateType, patch.Pointer{}, false); err != nil {
			return s.reject(ActionReplace, err)
		}
		next, err := patch.Apply(raw, p)
		if err != nil {
			return s.reject(ActionApply, err)
		}
		snap, err := materialize(next)
		if err != nil {
			return s.reject(ActionApply, err)
		}
		s.commit(next, snap)
		return nil
	}
	snap, err := materialize(raw)
	if err != nil {
		return s.reject(ActionReplace, err)
	}
	s.commit(raw, snap)
	return nil
}

// Apply runs p as one transaction. The patched document must still match the
// typed schema and satisfy model invariants, otherwise nothing changes and the
// returned error is a ProtocolError. The empty patch is a no-op.
func (s *Store) Apply(p patch.Patch) error {
	if len(p) == 0 {
		return nil
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.RLock()
	cur := s.raw
	s.mu.RUnlock()

	raw, err := patch.Apply(cur, p)
	if err != nil {
		return s.reject(ActionApply, err)
	}
	snap, err := materialize(raw)
	if err != nil {
		return s.reject(ActionApply, err)
	}
	s.commit(raw, snap)
	return nil
}

// Raw returns the generic JSON form of the current tree.
func (s *Store) Raw() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw
}

func (s *Store) commit(raw any, snap *model.AppState) {
	s.mu.Lock()
	s.raw = raw
	s.snap = snap
	s.rev++
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(*model.AppState), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) reject(action string, err error) error {
	pe := ProtocolError{Action: action, Err: err}
	s.Report(pe)
	return pe
}

// materialize checks raw against the schema, decodes it strictly and
// validates the result.
func materialize(raw any) (*model.AppState, error) {
	if err := checkShape(raw, appStateType, patch.Pointer{}, false); err != nil {
		return nil, err
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var out model.AppState
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}
