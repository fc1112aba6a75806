// Package enginetest provides a scripted in-process engine for tests.
//
// Replies are computed when a request is submitted, in submission order, the
// way a real engine processes one document's requests. Delivery can be held
// back and released in any order to simulate racing responses.
package enginetest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"tiger-client/internal/gateway"
	"tiger-client/internal/model"
	"tiger-client/internal/patch"
)

type Handler func(req gateway.Request) (gateway.Response, error)

type Engine struct {
	mu       sync.Mutex
	handlers map[string]Handler
	held     bool
	queue    []*pending
	requests []gateway.Request
}

type pending struct {
	req   gateway.Request
	ch    chan gateway.Reply
	reply gateway.Reply
	sent  bool
}

// New returns an engine that answers unknown commands with an empty patch.
func New() *Engine {
	return &Engine{handlers: map[string]Handler{}}
}

func (e *Engine) Handle(command string, h Handler) {
	e.mu.Lock()
	e.handlers[command] = h
	e.mu.Unlock()
}

// Reply registers a handler that always answers with resp.
func (e *Engine) Reply(command string, resp gateway.Response) {
	e.Handle(command, func(gateway.Request) (gateway.Response, error) { return resp, nil })
}

// Hold makes later replies wait for Release.
func (e *Engine) Hold() {
	e.mu.Lock()
	e.held = true
	e.mu.Unlock()
}

// Release delivers the i-th held reply, counting all submissions since Hold
// in submission order.
func (e *Engine) Release(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.queue) || e.queue[i].sent {
		return
	}
	e.deliver(e.queue[i])
}

// ReleaseAll delivers every held reply in submission order and stops holding.
func (e *Engine) ReleaseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.queue {
		if !p.sent {
			e.deliver(p)
		}
	}
	e.queue = nil
	e.held = false
}

// Held reports how many submitted replies are still waiting for Release.
func (e *Engine) Held() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, p := range e.queue {
		if !p.sent {
			n++
		}
	}
	return n
}

// Requests returns every request submitted so far.
func (e *Engine) Requests() []gateway.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]gateway.Request(nil), e.requests...)
}

// Commands returns the command names submitted so far.
func (e *Engine) Commands() []string {
	reqs := e.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Command
	}
	return out
}

func (e *Engine) Submit(_ context.Context, req gateway.Request) <-chan gateway.Reply {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, req)
	p := &pending{req: req, ch: make(chan gateway.Reply, 1)}
	if h, ok := e.handlers[req.Command]; ok {
		resp, err := h(req)
		if err != nil {
			p.reply = gateway.Reply{Err: gateway.EngineError{Command: req.Command, Message: err.Error()}}
		} else {
			p.reply = gateway.Reply{Response: resp}
		}
	}
	if e.held {
		e.queue = append(e.queue, p)
		return p.ch
	}
	e.deliver(p)
	return p.ch
}

func (e *Engine) deliver(p *pending) {
	p.sent = true
	p.ch <- p.reply
}

// Patch builds a patch response.
func Patch(ops ...patch.Op) gateway.Response {
	return gateway.Response{Patch: patch.Patch(ops)}
}

// State builds a full-tree response.
func State(s *model.AppState) gateway.Response {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return gateway.Response{State: b}
}

// Fail is a handler that rejects every request with msg.
func Fail(msg string) Handler {
	return func(gateway.Request) (gateway.Response, error) { return gateway.Response{}, errors.New(msg) }
}
