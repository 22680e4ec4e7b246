// Package simtest provides an in-process websocket simulator for tests.
package simtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/gorilla/websocket"
)

// Command is a decoded inbound command frame.
type Command struct {
	Name      string          `json:"command"`
	Arguments json.RawMessage `json:"arguments"`
}

// Handler answers one command with zero or more frames, sent in order.
type Handler func(cmd Command) []any

// Server is an httptest server speaking the simulator websocket protocol.
type Server struct {
	URL string

	srv      *httptest.Server
	handler  Handler
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conn     *websocket.Conn
	commands []Command
	closed   chan struct{}
	once     sync.Once
	ready    chan struct{}
}

// NewServer starts a server and registers its shutdown with t.Cleanup.
func NewServer(t testing.TB, h Handler) *Server {
	t.Helper()
	s := &Server{handler: h, closed: make(chan struct{}), ready: make(chan struct{})}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	s.URL = "ws" + strings.TrimPrefix(s.srv.URL, "http")
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	close(s.ready)

	defer func() {
		_ = conn.Close()
		s.once.Do(func() { close(s.closed) })
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			return
		}
		s.mu.Lock()
		s.commands = append(s.commands, cmd)
		s.mu.Unlock()

		if s.handler == nil {
			continue
		}
		for _, frame := range s.handler(cmd) {
			if err := s.Push(frame); err != nil {
				return
			}
		}
	}
}

// Push writes a frame to the connected client. Raw []byte frames are sent as is.
// It waits briefly for the client to connect.
func (s *Server) Push(frame any) error {
	select {
	case <-s.ready:
	case <-time.After(5 * time.Second):
		return websocket.ErrCloseSent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return websocket.ErrCloseSent
	}
	if raw, ok := frame.([]byte); ok {
		return s.conn.WriteMessage(websocket.TextMessage, raw)
	}
	return s.conn.WriteJSON(frame)
}

// Drop closes the client connection without a close handshake.
func (s *Server) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.UnderlyingConn().Close()
	}
}

// Disconnected is closed once the client connection has ended.
func (s *Server) Disconnected() <-chan struct{} {
	return s.closed
}

// Commands returns the commands received so far.
func (s *Server) Commands() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Command, len(s.commands))
	copy(out, s.commands)
	return out
}

// Close shuts the server down.
func (s *Server) Close() {
	s.Drop()
	s.srv.CloseClientConnections()
	s.srv.Close()
}

// Result builds a {result} frame.
func Result(v any) map[string]any {
	return map[string]any{"result": v}
}

// Error builds an {error} frame.
func Error(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// Episode builds a step notification frame.
func Episode(st domain.EpisodeState) map[string]any {
	st.Type = domain.EpisodeType
	return map[string]any{"result": st}
}
