// Package gateway turns user actions into engine requests and funnels every
// reply through one ordered apply queue.
//
// Requests may be in flight concurrently. Replies are applied strictly in
// issuance order: a reply that arrives early is held until every earlier
// request has been applied or has failed.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"tiger-client/internal/patch"
	"tiger-client/internal/store"
)

// Request is one engine command with primitive arguments.
type Request struct {
	Command string         `json:"command"`
	Args    map[string]any `json:"args,omitempty"`
}

// Response is the engine's answer: a patch, or a whole tree in wire form for
// session-establishing commands. When State is set it replaces the tree with
// Patch applied on top of it, both or neither.
type Response struct {
	Patch patch.Patch     `json:"patch,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
}

// HasState reports whether the response carries a whole tree.
func (r Response) HasState() bool {
	return len(r.State) > 0 && string(r.State) != "null"
}

type Reply struct {
	Response Response
	Err      error
}

// Engine is the boundary with the external engine.
//
// Submit must put req on the wire before returning and must not wait for the
// reply. The returned channel delivers exactly one Reply.
type Engine interface {
	Submit(ctx context.Context, req Request) <-chan Reply
}

// Observer sees every settled request in apply order. err is the engine or
// apply failure, if any.
type Observer func(seq uint64, req Request, resp Response, err error)

type Options struct {
	Dialogs Dialogs
	// Timeout bounds how long Wait blocks on a round trip. The request keeps
	// its queue slot and its reply is still applied when it arrives. Zero
	// means no limit.
	Timeout  time.Duration
	Observer Observer
}

type Gateway struct {
	engine   Engine
	store    *store.Store
	dialogs  Dialogs
	timeout  time.Duration
	observer Observer

	// issueMu keeps seq assignment and Submit in the same order.
	issueMu sync.Mutex
	nextSeq uint64

	applyMu   sync.Mutex
	nextApply uint64
	settled   map[uint64]settled

	// stale is set when a reply was lost after its request reached the
	// engine. Patches are refused until a full tree arrives.
	stale atomic.Bool
}

type settled struct {
	call  *Call
	reply Reply
}

func New(engine Engine, st *store.Store, opts Options) *Gateway {
	d := opts.Dialogs
	if d == nil {
		d = NoDialogs{}
	}
	return &Gateway{
		engine:   engine,
		store:    st,
		dialogs:  d,
		timeout:  opts.Timeout,
		observer: opts.Observer,
		settled:  map[uint64]settled{},
	}
}

func (g *Gateway) Store() *store.Store { return g.store }

// Stale reports whether the replica may have missed an engine change. Sync
// clears it.
func (g *Gateway) Stale() bool { return g.stale.Load() }

// Call is the future for one issued request.
type Call struct {
	Seq     uint64
	Request Request

	done chan struct{}
	err  error
	hook func(error)

	// expired is closed once the round-trip timeout passes. It is nil
	// without a timeout.
	expired chan struct{}
	after   time.Duration
	timer   *time.Timer
}

// Done is closed once the reply has been applied or the request has failed.
func (c *Call) Done() <-chan struct{} { return c.done }

// Err is the request's outcome. It is only meaningful after Done is closed.
func (c *Call) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the call settles, the round-trip timeout passes or ctx
// ends. Only settling is final: after a TimeoutError or ctx error the reply
// is still applied when it arrives, and Done closes then.
func (c *Call) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	default:
	}
	select {
	case <-c.done:
		return c.err
	case <-c.expired:
		return TimeoutError{Command: c.Request.Command, After: c.after}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Issue sends req without waiting for its reply.
func (g *Gateway) Issue(ctx context.Context, req Request) *Call {
	return g.IssueFunc(ctx, req, nil)
}

// IssueFunc is Issue with a hook that runs on the apply goroutine right after
// the reply has been applied (or has failed), before Done is closed.
//
// Once submitted, a request is never abandoned: ctx only decides whether it
// is sent at all. There is no mid-flight cancellation.
func (g *Gateway) IssueFunc(ctx context.Context, req Request, onSettled func(error)) *Call {
	g.issueMu.Lock()
	c := &Call{Seq: g.nextSeq, Request: req, done: make(chan struct{}), hook: onSettled}
	g.nextSeq++
	var ch <-chan Reply
	if err := ctx.Err(); err != nil {
		failed := make(chan Reply, 1)
		failed <- Reply{Err: err}
		ch = failed
	} else {
		ch = g.engine.Submit(context.WithoutCancel(ctx), req)
	}
	g.issueMu.Unlock()

	if g.timeout > 0 {
		c.after = g.timeout
		c.expired = make(chan struct{})
		c.timer = time.AfterFunc(g.timeout, func() {
			glog.Warningf("gateway: #%d %s still waiting after %v", c.Seq, req.Command, g.timeout)
			close(c.expired)
		})
	}
	if glog.V(1) {
		glog.Infof("gateway: issue #%d %s", c.Seq, req.Command)
	}

	go func() {
		r, ok := <-ch
		if !ok {
			r = Reply{Err: errEngineClosed}
		}
		g.settle(c, r)
	}()
	return c
}

// Do issues req and waits for it as Wait does.
func (g *Gateway) Do(ctx context.Context, req Request) error {
	return g.Issue(ctx, req).Wait(ctx)
}

// Sync fetches the whole tree from the engine.
func (g *Gateway) Sync(ctx context.Context) error {
	return g.Do(ctx, Request{Command: "get_state"})
}

func (g *Gateway) settle(c *Call, r Reply) {
	g.applyMu.Lock()
	defer g.applyMu.Unlock()
	g.settled[c.Seq] = settled{call: c, reply: r}
	for {
		next, ok := g.settled[g.nextApply]
		if !ok {
			return
		}
		delete(g.settled, g.nextApply)
		g.nextApply++
		g.apply(next.call, next.reply)
	}
}

func (g *Gateway) apply(c *Call, r Reply) {
	if c.timer != nil {
		c.timer.Stop()
	}
	err := r.Err
	if err == nil {
		err = g.applyResponse(c.Request, r.Response)
	} else if errors.Is(err, ErrReplyLost) && !g.stale.Swap(true) {
		glog.Errorf("gateway: #%d %s: %v; replica is stale until the next full state", c.Seq, c.Request.Command, err)
	}
	if err != nil {
		glog.Warningf("gateway: #%d %s failed: %v", c.Seq, c.Request.Command, err)
	} else if glog.V(1) {
		glog.Infof("gateway: applied #%d %s (%d ops, full=%t)", c.Seq, c.Request.Command, len(r.Response.Patch), len(r.Response.State) > 0)
	}
	if g.observer != nil {
		g.observer(c.Seq, c.Request, r.Response, err)
	}
	c.err = err
	if c.hook != nil {
		c.hook(err)
	}
	close(c.done)
}

func (g *Gateway) applyResponse(req Request, resp Response) error {
	if resp.HasState() {
		if err := g.store.ReplaceAndApply(resp.State, resp.Patch); err != nil {
			return err
		}
		g.stale.Store(false)
		return nil
	}
	if len(resp.Patch) > 0 && g.stale.Load() {
		pe := store.ProtocolError{Action: store.ActionApply, Err: StaleError{Command: req.Command}}
		g.store.Report(pe)
		return pe
	}
	return g.store.Apply(resp.Patch)
}
