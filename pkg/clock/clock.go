// Package clock tracks simulated time as reported by the simulator.
package clock

import "github.com/aretw0/roadtest/pkg/domain"

// Clock is the frame-monotonic simulated clock. It is owned by the control loop
// and is not safe for concurrent use.
//
// A fresh clock reports the simulator's own time. After Restart it reports time
// elapsed since the start of the run instead.
type Clock struct {
	now       float64
	frame     int64
	stepStart float64

	origin    float64
	anchor    bool
	firstStep float64
}

// New returns a clock at time zero, frame zero.
func New() *Clock {
	return &Clock{}
}

// Advance applies t only if its frame is strictly greater than the stored frame.
// It reports whether the reading was applied.
func (c *Clock) Advance(t domain.GameTime) bool {
	if t.CurrentFrame <= c.frame {
		return false
	}
	if c.anchor {
		c.origin = t.CurrentTime - c.firstStep
		c.anchor = false
	}
	c.stepStart = c.now
	c.now = t.CurrentTime - c.origin
	c.frame = t.CurrentFrame
	return true
}

// Now returns the current simulated time in seconds.
func (c *Clock) Now() float64 {
	return c.now
}

// Frame returns the last applied frame.
func (c *Clock) Frame() int64 {
	return c.frame
}

// StepStart returns the simulated time at which the last applied step began.
func (c *Clock) StepStart() float64 {
	return c.stepStart
}

// Restart zeroes the simulated time for a new run. The frame is kept so stale
// readings stay rejected.
//
// The next applied reading is taken as the end of a first step of stepDuration
// seconds and fixes the run's origin, so a run against a simulator that is not at
// t=0 still starts from zero.
func (c *Clock) Restart(stepDuration float64) {
	c.now = 0
	c.stepStart = 0
	c.anchor = true
	c.firstStep = stepDuration
}

// Origin returns the simulator time that reads as zero on this clock.
func (c *Clock) Origin() float64 {
	return c.origin
}
