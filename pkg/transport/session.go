package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/roadtest/internal/logging"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle of a connection.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

type reply struct {
	result []byte
	err    error
}

type stepResult struct {
	state *domain.EpisodeState
	err   error
}

func (r stepResult) frame() int64 {
	if r.state == nil {
		return -1
	}
	return r.state.GameTime.CurrentFrame
}

// maxBacklog bounds the step notifications held while no step is waiting.
const maxBacklog = 64

type outbound struct {
	data []byte
	sent chan error
}

// Session is one websocket connection to the simulator.
// Command and Step may be called from one control goroutine at a time.
type Session struct {
	endpoint    string
	dialer      *websocket.Dialer
	logger      *slog.Logger
	closeGrace  time.Duration
	stepTimeout time.Duration

	conn  *websocket.Conn
	state atomic.Int32

	writes    chan outbound
	replies   chan reply
	stepReady chan struct{}

	mu           sync.Mutex
	inFlight     bool
	pendingReply bool
	pendingStep  bool
	backlog      []stepResult
	err          error

	closeReq  chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

// Open dials endpoint and starts the session worker.
// It returns only once the socket is usable, or with the dial error.
func Open(ctx context.Context, endpoint string, opts ...Option) (*Session, error) {
	s := &Session{
		endpoint:   endpoint,
		logger:     logging.NewNop(),
		closeGrace: DefaultCloseGrace,
		writes:     make(chan outbound),
		replies:    make(chan reply, 1),
		stepReady:  make(chan struct{}, 1),
		closeReq:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dialer == nil {
		s.dialer = &websocket.Dialer{HandshakeTimeout: DefaultHandshakeTimeout}
	}

	ready := make(chan error, 1)
	go s.run(ctx, ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return s, nil
}

// Endpoint returns the dialed URL.
func (s *Session) Endpoint() string {
	return s.endpoint
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Done is closed once the worker has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended the session, or nil while it is open.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close sends a close frame and waits for the worker to exit.
// If the peer does not answer within the close grace period, or ctx ends first,
// the socket is closed forcibly. Close is idempotent.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.state.CompareAndSwap(int32(StateOpen), int32(StateClosing))
		close(s.closeReq)
	})

	timer := time.NewTimer(s.closeGrace)
	defer timer.Stop()

	select {
	case <-s.done:
		return nil
	case <-timer.C:
		s.logger.Warn("close handshake timed out, forcing", "endpoint", s.endpoint)
	case <-ctx.Done():
	}
	_ = s.conn.Close()
	<-s.done
	return nil
}

func (s *Session) run(ctx context.Context, ready chan<- error) {
	conn, _, err := s.dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		s.finish(fmt.Errorf("dial %s: %w", s.endpoint, err))
		ready <- err
		return
	}
	s.conn = conn
	s.state.Store(int32(StateOpen))
	s.logger.Debug("session open", "endpoint", s.endpoint)
	ready <- nil

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(s.readLoop)
	g.Go(func() error { return s.writeLoop(gctx) })
	err = g.Wait()

	_ = conn.Close()
	s.finish(err)
	if errors.Is(err, ErrTransportClosed) {
		s.logger.Debug("session closed", "endpoint", s.endpoint)
	} else {
		s.logger.Error("session failed", "endpoint", s.endpoint, "error", err)
	}
}

func (s *Session) finish(err error) {
	s.mu.Lock()
	if err == nil {
		err = ErrTransportClosed
	}
	s.err = err
	s.mu.Unlock()
	s.state.Store(int32(StateClosed))
	close(s.done)
}

// readLoop is the only reader of the socket. It always returns a non-nil error so
// the writer is released through the group context.
func (s *Session) readLoop() error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.State() == StateClosing || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrTransportClosed
			}
			return fmt.Errorf("%w: %w", ErrTransportClosed, err)
		}

		msg, err := decodeFrame(data)
		if err != nil {
			return err
		}
		if err := s.dispatch(msg); err != nil {
			return err
		}
	}
}

// dispatch routes a decoded frame. The first reply-kind frame after a send answers
// the pending command, so the reader disarms pendingReply itself; a later error
// envelope then reaches an armed step waiter.
func (s *Session) dispatch(msg inbound) error {
	switch msg.kind {
	case kindStep:
		s.mu.Lock()
		armed := s.pendingStep
		s.mu.Unlock()
		if !armed {
			s.logger.Warn("step notification with no step waiter", "frame", msg.step.GameTime.CurrentFrame)
		}
		s.putStep(stepResult{state: msg.step})
		return nil

	case kindError:
		s.mu.Lock()
		toReply := s.pendingReply || !s.pendingStep
		s.pendingReply = false
		s.mu.Unlock()
		if toReply {
			s.putReply(reply{err: msg.err})
			return nil
		}
		s.putStep(stepResult{err: msg.err})
		return nil

	default:
		s.mu.Lock()
		s.pendingReply = false
		s.mu.Unlock()
		s.putReply(reply{result: msg.result})
		return nil
	}
}

// putReply fills the reply slot, replacing an unconsumed value. Only the reader
// produces into the slot, so after the drain there is room.
func (s *Session) putReply(r reply) {
	select {
	case s.replies <- r:
		return
	default:
	}
	select {
	case old := <-s.replies:
		s.logger.Warn("dropping unconsumed reply", "error", old.err)
	default:
	}
	s.replies <- r
}

// putStep queues a step result and wakes the step waiter. It never blocks, so a
// full backlog cannot hold up replies behind it.
func (s *Session) putStep(r stepResult) {
	s.mu.Lock()
	if len(s.backlog) >= maxBacklog {
		s.logger.Warn("step backlog full, dropping oldest notification", "frame", s.backlog[0].frame())
		s.backlog = s.backlog[1:]
	}
	s.backlog = append(s.backlog, r)
	s.mu.Unlock()

	select {
	case s.stepReady <- struct{}{}:
	default:
	}
}

// popStep takes the oldest queued step result.
func (s *Session) popStep() (stepResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.backlog) == 0 {
		return stepResult{}, false
	}
	r := s.backlog[0]
	s.backlog[0] = stepResult{}
	s.backlog = s.backlog[1:]
	return r, true
}

// Backlog returns how many step notifications are queued and not yet taken by Step.
func (s *Session) Backlog() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.backlog)
}

// writeLoop is the only writer of the socket.
func (s *Session) writeLoop(ctx context.Context) error {
	closeReq := s.closeReq
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-closeReq:
			closeReq = nil
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.closeGrace)); err != nil {
				_ = s.conn.Close()
				return fmt.Errorf("%w: %w", ErrTransportClosed, err)
			}
		case out := <-s.writes:
			err := s.conn.WriteMessage(websocket.TextMessage, out.data)
			out.sent <- err
			if err != nil {
				_ = s.conn.Close()
				return fmt.Errorf("%w: write: %w", ErrTransportClosed, err)
			}
		}
	}
}

// send hands a frame to the writer and waits until it hit the socket.
func (s *Session) send(ctx context.Context, data []byte) error {
	out := outbound{data: data, sent: make(chan error, 1)}
	select {
	case s.writes <- out:
	case <-s.done:
		return s.Err()
	case <-s.closeReq:
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-out.sent:
		return err
	case <-s.done:
		return s.Err()
	}
}
