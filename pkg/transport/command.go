package transport

import (
	"context"
	"encoding/json"
	"fmt"
)

// Command sends {command: name, arguments: args} and blocks until the reply arrives.
// An error envelope is returned as *RemoteError with the message verbatim.
//
// A remote error that arrived while nothing was waiting is parked in the reply slot
// and fails the next Command before anything is sent.
func (s *Session) Command(ctx context.Context, name string, args any) (json.RawMessage, error) {
	if s.State() != StateOpen {
		return nil, ErrNotConnected
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrCommandInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.pendingReply = false
		s.mu.Unlock()
	}()

	select {
	case stale := <-s.replies:
		if stale.err != nil {
			return nil, stale.err
		}
		s.logger.Debug("discarding stale reply", "command", name)
	default:
	}

	data, err := encodeCommand(name, args)
	if err != nil {
		return nil, fmt.Errorf("encode command %q: %w", name, err)
	}

	s.mu.Lock()
	s.pendingReply = true
	s.mu.Unlock()

	if err := s.send(ctx, data); err != nil {
		return nil, err
	}
	s.logger.Debug("command sent", "command", name)

	select {
	case r := <-s.replies:
		if r.err != nil {
			return nil, r.err
		}
		return json.RawMessage(r.result), nil
	case <-s.done:
		return nil, s.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
