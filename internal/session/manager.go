// Package session sequences multi-step gestures (begin, repeated update,
// end) on the current document.
//
// The tree's session fields are authoritative. The manager additionally keeps
// one local marker per document so that a second begin issued before the
// first begin's reply has been applied is still caught.
package session

import (
	"context"
	"sync"

	"tiger-client/internal/gateway"
	"tiger-client/internal/model"
	"tiger-client/internal/selector"
	"tiger-client/internal/store"
)

type commands struct {
	begin   string
	updates []string
	end     []string
}

var kinds = map[model.SessionKind]commands{
	model.SessionFrameDrag:        {"begin_drag_and_drop_frame", []string{"drop_frame_on_timeline"}, []string{"end_drag_and_drop_frame"}},
	model.SessionFrameRelocate:    {"begin_relocate_frames", []string{"relocate_frame"}, []string{"end_relocate_frames", "cancel_relocate_frames"}},
	model.SessionKeyframeDrag:     {"begin_drag_and_drop_keyframe", []string{"drop_keyframe_on_timeline"}, []string{"end_drag_and_drop_keyframe"}},
	model.SessionKeyframeDuration: {"begin_drag_keyframe_duration", []string{"update_drag_keyframe_duration"}, []string{"end_drag_keyframe_duration"}},
	model.SessionKeyframeNudge:    {"begin_nudge_keyframe", []string{"update_nudge_keyframe"}, []string{"end_nudge_keyframe"}},
	model.SessionHitboxNudge:      {"begin_nudge_hitbox", []string{"update_nudge_hitbox"}, []string{"end_nudge_hitbox"}},
	model.SessionHitboxResize:     {"begin_resize_hitbox", []string{"update_resize_hitbox"}, []string{"end_resize_hitbox"}},
	model.SessionAnimationRename:  {"begin_rename_animation", nil, []string{"end_rename_animation", "cancel_rename"}},
	model.SessionHitboxRename:     {"begin_rename_hitbox", nil, []string{"end_rename_hitbox", "cancel_rename"}},
}

// Local is the manager's view of a session it started.
type Local struct {
	Kind model.SessionKind
	// Confirmed is set once the begin reply has been applied and the tree
	// shows the session.
	Confirmed bool
}

type marker struct {
	Local
}

type Manager struct {
	gw *gateway.Gateway
	st *store.Store

	mu     sync.Mutex
	local  map[string]*marker
	cancel func()
}

func New(gw *gateway.Gateway) *Manager {
	m := &Manager{gw: gw, st: gw.Store(), local: map[string]*marker{}}
	m.cancel = m.st.Subscribe(m.reconcile)
	return m
}

// Close stops tracking tree changes.
func (m *Manager) Close() { m.cancel() }

// Local returns the marker for the document at path, if any.
func (m *Manager) Local(path string) (Local, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mk, ok := m.local[path]
	if !ok {
		return Local{}, false
	}
	return mk.Local, true
}

func (m *Manager) begin(ctx context.Context, kind model.SessionKind, args map[string]any) (*gateway.Call, error) {
	cmds := kinds[kind]
	d := selector.CurrentDocument(m.st.Snapshot())
	if d == nil {
		return nil, m.violation(cmds.begin, NoDocumentError{})
	}
	req, err := gateway.NewRequest(cmds.begin, args)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if mk, ok := m.local[d.Path]; ok {
		return nil, m.violation(cmds.begin, exclusive(d.Path, mk.Kind, kind))
	}
	if active := d.ActiveSessions(); len(active) > 0 {
		return nil, m.violation(cmds.begin, exclusive(d.Path, active[0], kind))
	}

	path := d.Path
	mk := &marker{Local{Kind: kind}}
	m.local[path] = mk
	return m.gw.IssueFunc(ctx, req, func(err error) { m.settleBegin(path, mk, err) }), nil
}

func exclusive(doc string, active, requested model.SessionKind) error {
	if active == requested {
		return SessionActiveError{Document: doc, Kind: requested}
	}
	return SessionConflictError{Document: doc, Active: active, Requested: requested}
}

func (m *Manager) settleBegin(path string, mk *marker, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.local[path] != mk {
		return
	}
	d, ok := m.st.Snapshot().FindDocument(path)
	if err != nil || !ok || !d.SessionActive(mk.Kind) {
		// The engine refused or declined to start the session.
		delete(m.local, path)
		return
	}
	mk.Confirmed = true
}

// reconcile drops confirmed markers whose tree field was cleared by any patch.
func (m *Manager) reconcile(s *model.AppState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path, mk := range m.local {
		if !mk.Confirmed {
			continue
		}
		if d, ok := s.FindDocument(path); !ok || !d.SessionActive(mk.Kind) {
			delete(m.local, path)
		}
	}
}

// update forwards one intermediate step. The session must be active locally
// or in the tree.
func (m *Manager) update(ctx context.Context, kind model.SessionKind, command string, args map[string]any) (*gateway.Call, error) {
	d := selector.CurrentDocument(m.st.Snapshot())
	if d == nil {
		return nil, m.violation(command, NoDocumentError{})
	}
	req, err := gateway.NewRequest(command, args)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	mk, ok := m.local[d.Path]
	active := (ok && mk.Kind == kind) || d.SessionActive(kind)
	m.mu.Unlock()
	if !active {
		return nil, m.violation(command, NoSessionError{Document: d.Path, Kind: kind})
	}
	return m.gw.Issue(ctx, req), nil
}

// end issues the closing command and drops the local marker first, so a
// failing end request still leaves the manager ready for the next begin.
func (m *Manager) end(ctx context.Context, command string, args map[string]any, ended ...model.SessionKind) (*gateway.Call, error) {
	req, err := gateway.NewRequest(command, args)
	if err != nil {
		return nil, err
	}
	d := selector.CurrentDocument(m.st.Snapshot())
	m.mu.Lock()
	for path, mk := range m.local {
		if d != nil && path != d.Path {
			continue
		}
		for _, k := range ended {
			if mk.Kind == k {
				delete(m.local, path)
			}
		}
	}
	m.mu.Unlock()
	if d == nil {
		return nil, m.violation(command, NoDocumentError{})
	}
	return m.gw.Issue(ctx, req), nil
}

func (m *Manager) violation(action string, err error) error {
	pe := store.ProtocolError{Action: action, Err: err}
	m.st.Report(pe)
	return pe
}
