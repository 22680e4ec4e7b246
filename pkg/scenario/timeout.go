package scenario

import "github.com/aretw0/roadtest/pkg/behavior"

// StepClock is the clock view a TimeoutGuard needs.
type StepClock interface {
	Now() float64
	StepStart() float64
}

// TimeoutGuard stays Running until Bound simulated seconds have elapsed since its
// activation, then succeeds. The boundary is inclusive.
//
// The activation time is the start of the step that produced the activating tick,
// so a guard activated on the first tick measures from the start of the run.
type TimeoutGuard struct {
	Clock StepClock
	Bound float64

	start float64
	fired bool
}

// NewTimeoutGuard returns a guard reading c.
func NewTimeoutGuard(c StepClock, bound float64) *TimeoutGuard {
	return &TimeoutGuard{Clock: c, Bound: bound}
}

func (g *TimeoutGuard) Initialise() {
	g.start = g.Clock.StepStart()
	g.fired = false
}

func (g *TimeoutGuard) Update() behavior.Status {
	if g.Clock.Now()-g.start < g.Bound {
		return behavior.Running
	}
	g.fired = true
	return behavior.Success
}

func (g *TimeoutGuard) Terminate(behavior.Status) {}

// Fired reports whether the bound was reached in the current or last activation.
func (g *TimeoutGuard) Fired() bool {
	return g.fired
}

// Elapsed returns the simulated time since activation.
func (g *TimeoutGuard) Elapsed() float64 {
	return g.Clock.Now() - g.start
}
