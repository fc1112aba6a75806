package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"tiger-client/internal/gateway"
)

// Server exposes any gateway.Engine over the websocket protocol Client
// speaks. It backs local tooling and tests; the real engine runs elsewhere.
type Server struct {
	engine gateway.Engine

	mu    sync.Mutex
	conns map[*serverConn]struct{}
}

type serverConn struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *serverConn) send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

func NewServer(engine gateway.Engine) *Server {
	return &Server{engine: engine, conns: map[*serverConn]struct{}{}}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /engine", s.handleWS)
	return mux
}

// Push sends a notification to every connected client.
func (s *Server) Push(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f := inFrame{Event: event, Payload: raw}
	s.mu.Lock()
	conns := make([]*serverConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		if err := c.send(f); err != nil {
			glog.Warningf("remote: push %s: %v", event, err)
		}
	}
	return nil
}

// Connections is the number of attached clients.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sc := &serverConn{conn: conn}
	s.mu.Lock()
	s.conns[sc] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, sc)
		s.mu.Unlock()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f requestFrame
		if err := json.Unmarshal(data, &f); err != nil || f.ID == "" {
			glog.Errorf("remote: bad request frame %s", data)
			continue
		}
		// Submit in read order; replies go back whenever they are ready.
		ch := s.engine.Submit(ctx, gateway.Request{Command: f.Command, Args: f.Args})
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			var r gateway.Reply
			select {
			case r = <-ch:
			case <-ctx.Done():
				return
			}
			out := inFrame{ID: id, Patch: r.Response.Patch, State: r.Response.State}
			if r.Err != nil {
				msg := r.Err.Error()
				var ee gateway.EngineError
				if errors.As(r.Err, &ee) {
					msg = ee.Message
				}
				out = inFrame{ID: id, Error: &msg}
			}
			if err := sc.send(out); err != nil {
				glog.Warningf("remote: reply %s: %v", id, err)
			}
		}(f.ID)
	}
}
