package transport

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultCloseGrace bounds how long Close waits for the peer to echo the close frame.
	DefaultCloseGrace = 2 * time.Second

	// DefaultHandshakeTimeout bounds the websocket opening handshake.
	DefaultHandshakeTimeout = 10 * time.Second
)

// Option configures a Session.
type Option func(*Session)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithDialer replaces the websocket dialer (TLS, proxies, buffer sizes).
func WithDialer(d *websocket.Dialer) Option {
	return func(s *Session) {
		s.dialer = d
	}
}

// WithCloseGrace sets how long Close waits before force-closing the socket.
func WithCloseGrace(d time.Duration) Option {
	return func(s *Session) {
		s.closeGrace = d
	}
}

// WithStepTimeout bounds each Step call, on top of the caller's context.
// Zero disables the bound.
func WithStepTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.stepTimeout = d
	}
}
