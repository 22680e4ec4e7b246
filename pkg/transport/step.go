package transport

import (
	"context"

	"github.com/aretw0/roadtest/pkg/domain"
)

// Step issues a step command and waits for the episode notification it produces.
//
// The step waiter is armed before the command is sent, so the notification is routed
// correctly whether it arrives before or after the command's own reply. Notifications
// queued before the command was sent belong to no step; they are discarded with a
// warning so every call returns the state produced by its own command.
func (s *Session) Step(ctx context.Context, name string, args any) (*domain.EpisodeState, error) {
	if s.State() != StateOpen {
		return nil, ErrNotConnected
	}

	s.mu.Lock()
	if s.pendingStep {
		s.mu.Unlock()
		return nil, ErrCommandInFlight
	}
	s.pendingStep = true
	stale := s.backlog
	s.backlog = nil
	s.mu.Unlock()

	for _, r := range stale {
		s.logger.Warn("discarding step notification received with no step outstanding",
			"frame", r.frame(), "error", r.err)
	}

	defer func() {
		s.mu.Lock()
		s.pendingStep = false
		s.mu.Unlock()
	}()

	if s.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.stepTimeout)
		defer cancel()
	}

	if _, err := s.Command(ctx, name, args); err != nil {
		return nil, err
	}

	for {
		if r, ok := s.popStep(); ok {
			if r.err != nil {
				return nil, r.err
			}
			return r.state, nil
		}
		select {
		case <-s.stepReady:
		case <-s.done:
			if r, ok := s.popStep(); ok && r.err == nil {
				return r.state, nil
			}
			return nil, s.Err()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
