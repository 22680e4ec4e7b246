// Package simulator wraps a transport session with the simulator's command set.
package simulator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/ports"
)

// Default command names.
const (
	DefaultStepCommand  = "simulator/run"
	CommandReset        = "simulator/reset"
	CommandCurrentTime  = "simulator/current_time"
	CommandCurrentFrame = "simulator/current_frame"
)

// Session is the transport view the client needs.
type Session interface {
	Command(ctx context.Context, name string, args any) (json.RawMessage, error)
	Step(ctx context.Context, name string, args any) (*domain.EpisodeState, error)
}

// Client issues simulator commands over a Session.
type Client struct {
	session     Session
	stepCommand string
}

var _ ports.Stepper = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithStepCommand overrides the command used to run one step.
func WithStepCommand(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.stepCommand = name
		}
	}
}

// New returns a client over s.
func New(s Session, opts ...Option) *Client {
	c := &Client{session: s, stepCommand: DefaultStepCommand}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Step runs the simulation for dt seconds and returns the resulting episode.
func (c *Client) Step(ctx context.Context, dt float64) (*domain.EpisodeState, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("step duration must be positive, got %v", dt)
	}
	return c.session.Step(ctx, c.stepCommand, map[string]any{"time_limit": dt})
}

// Reset asks the simulator to restart its scene.
func (c *Client) Reset(ctx context.Context) error {
	_, err := c.session.Command(ctx, CommandReset, nil)
	return err
}

// CurrentTime returns the simulator's own game time.
func (c *Client) CurrentTime(ctx context.Context) (float64, error) {
	var t float64
	if err := c.call(ctx, CommandCurrentTime, &t); err != nil {
		return 0, err
	}
	return t, nil
}

// CurrentFrame returns the simulator's own frame counter.
func (c *Client) CurrentFrame(ctx context.Context) (int64, error) {
	var f int64
	if err := c.call(ctx, CommandCurrentFrame, &f); err != nil {
		return 0, err
	}
	return f, nil
}

func (c *Client) call(ctx context.Context, name string, out any) error {
	res, err := c.session.Command(ctx, name, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res, out); err != nil {
		return fmt.Errorf("decode %s result: %w", name, err)
	}
	return nil
}
