// Package remote talks to the engine over a websocket.
//
// Every request carries a ulid that the engine echoes on its reply; replies
// may arrive in any order. Frames without an id are push notifications and go
// to the event handler.
package remote

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"tiger-client/internal/gateway"
)

var ErrDisconnected = errors.New("remote: engine disconnected")

type Options struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Header       http.Header
	// OnEvent runs on the read goroutine for every push notification.
	OnEvent func(Event)
}

type pendingReq struct {
	command string
	ch      chan gateway.Reply
}

type Client struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	onEvent      func(Event)

	wmu sync.Mutex

	mu      sync.Mutex
	pending map[string]*pendingReq
	entropy *ulid.MonotonicEntropy
	err     error
	done    chan struct{}
}

func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	d := *websocket.DefaultDialer
	if opts.DialTimeout > 0 {
		d.HandshakeTimeout = opts.DialTimeout
	}
	conn, _, err := d.DialContext(ctx, url, opts.Header)
	if err != nil {
		return nil, fmt.Errorf("remote: dial %s: %w", url, err)
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	c := &Client{
		conn:         conn,
		writeTimeout: opts.WriteTimeout,
		onEvent:      opts.OnEvent,
		pending:      map[string]*pendingReq{},
		entropy:      ulid.Monotonic(rand.Reader, 0),
		done:         make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Submit writes req synchronously, so requests reach the engine in the order
// Submit is called. Once written, a request stays pending until its reply
// arrives or the connection drops; ctx is not consulted.
func (c *Client) Submit(_ context.Context, req gateway.Request) <-chan gateway.Reply {
	ch := make(chan gateway.Reply, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		ch <- gateway.Reply{Err: err}
		return ch
	}
	id := ulid.MustNew(ulid.Now(), c.entropy).String()
	c.pending[id] = &pendingReq{command: req.Command, ch: ch}
	c.mu.Unlock()

	b, err := json.Marshal(requestFrame{ID: id, Command: req.Command, Args: req.Args})
	if err == nil {
		err = c.write(b)
	}
	if err != nil {
		if p := c.take(id); p != nil {
			p.ch <- gateway.Reply{Err: fmt.Errorf("remote: send %s: %w", req.Command, err)}
		}
	}
	return ch
}

func (c *Client) write(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if glog.V(2) {
		glog.Infof("remote: -> %s", b)
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *Client) take(id string) *pendingReq {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	return p
}

func (c *Client) readLoop() {
	var err error
	defer func() { c.shutdown(err) }()
	for {
		var data []byte
		_, data, err = c.conn.ReadMessage()
		if err != nil {
			return
		}
		if glog.V(2) {
			glog.Infof("remote: <- %s", data)
		}
		var f inFrame
		if jerr := json.Unmarshal(data, &f); jerr != nil {
			glog.Errorf("remote: undecodable frame: %v", jerr)
			continue
		}
		c.route(f)
	}
}

func (c *Client) route(f inFrame) {
	if f.ID == "" {
		if f.Event == "" {
			glog.Errorf("remote: frame with neither id nor event")
			return
		}
		if c.onEvent != nil {
			c.onEvent(Event{Name: f.Event, Payload: f.Payload})
		}
		return
	}
	p := c.take(f.ID)
	if p == nil {
		glog.V(1).Infof("remote: reply %s matches no pending request", f.ID)
		return
	}
	if f.Error != nil {
		p.ch <- gateway.Reply{Err: gateway.EngineError{Command: p.command, Message: *f.Error}}
		return
	}
	p.ch <- gateway.Reply{Response: gateway.Response{Patch: f.Patch, State: f.State}}
}

func (c *Client) shutdown(cause error) {
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return
	}
	c.err = fmt.Errorf("%w: %v", ErrDisconnected, cause)
	pending := c.pending
	c.pending = map[string]*pendingReq{}
	c.mu.Unlock()

	// These requests were on the wire; the engine may have run them.
	lost := fmt.Errorf("%w: %w", gateway.ErrReplyLost, c.err)
	for _, p := range pending {
		p.ch <- gateway.Reply{Err: lost}
	}
	close(c.done)
}

// Done is closed once the connection is gone.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Client) Close() error {
	c.wmu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.wmu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}
