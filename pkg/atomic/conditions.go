package atomic

import (
	"math"

	"github.com/aretw0/roadtest/pkg/behavior"
	"github.com/aretw0/roadtest/pkg/domain"
)

// Idle never completes. It keeps a parallel branch alive.
type Idle struct {
	behavior.Base
}

func (Idle) Update() behavior.Status { return behavior.Running }

// SimulationTimeCondition succeeds once the time elapsed since activation satisfies
// Rule against Duration. Rule defaults to greater_than.
type SimulationTimeCondition struct {
	Clock    Clock
	Duration float64
	Rule     Comparison

	start float64
}

func (s *SimulationTimeCondition) Initialise() {
	s.start = s.Clock.Now()
}

func (s *SimulationTimeCondition) Update() behavior.Status {
	rule := s.Rule
	if rule == "" {
		rule = GreaterThan
	}
	if rule.Compare(s.Clock.Now()-s.start, s.Duration) {
		return behavior.Success
	}
	return behavior.Running
}

func (s *SimulationTimeCondition) Terminate(behavior.Status) {}

// StandStill succeeds once Actor has stayed below Epsilon for Duration seconds.
// Any movement restarts the wait.
type StandStill struct {
	World    World
	Clock    Clock
	Actor    string
	Duration float64

	since   float64
	stopped bool
}

func (s *StandStill) Initialise() {
	s.stopped = false
}

func (s *StandStill) Update() behavior.Status {
	if s.World.Velocity(s.Actor) > Epsilon {
		s.stopped = false
		return behavior.Running
	}
	now := s.Clock.Now()
	if !s.stopped {
		s.stopped = true
		s.since = now
	}
	if now-s.since >= s.Duration {
		return behavior.Success
	}
	return behavior.Running
}

func (s *StandStill) Terminate(behavior.Status) {}

// InTriggerRegion succeeds once Actor is inside the axis-aligned rectangle
// [MinX, MaxX] x [MinY, MaxY].
type InTriggerRegion struct {
	behavior.Base
	World                  World
	Actor                  string
	MinX, MaxX, MinY, MaxY float64
}

func (r *InTriggerRegion) Update() behavior.Status {
	loc, ok := r.World.Location(r.Actor)
	if !ok {
		return behavior.Running
	}
	outside := loc.X < r.MinX || loc.X > r.MaxX || loc.Y < r.MinY || loc.Y > r.MaxY
	if outside {
		return behavior.Running
	}
	return behavior.Success
}

// InTriggerDistanceToVehicle succeeds once the distance between Actor and Other
// satisfies Comparison against Distance. Comparison defaults to less_than.
type InTriggerDistanceToVehicle struct {
	behavior.Base
	World      World
	Actor      string
	Other      string
	Distance   float64
	Comparison Comparison
}

func (d *InTriggerDistanceToVehicle) Update() behavior.Status {
	a, ok := d.World.Location(d.Actor)
	if !ok {
		return behavior.Running
	}
	b, ok := d.World.Location(d.Other)
	if !ok {
		return behavior.Running
	}
	if d.Comparison.Compare(domain.Distance(a, b), d.Distance) {
		return behavior.Success
	}
	return behavior.Running
}

// InTriggerDistanceToLocation succeeds once Actor is closer than Distance to Target.
type InTriggerDistanceToLocation struct {
	behavior.Base
	World    World
	Actor    string
	Target   domain.Vector
	Distance float64
}

func (d *InTriggerDistanceToLocation) Update() behavior.Status {
	loc, ok := d.World.Location(d.Actor)
	if !ok {
		return behavior.Running
	}
	if domain.Distance(loc, d.Target) < d.Distance {
		return behavior.Success
	}
	return behavior.Running
}

// InTimeToArrivalToLocation succeeds once Actor would reach Target in less than
// Time seconds at its current speed.
type InTimeToArrivalToLocation struct {
	behavior.Base
	World  World
	Actor  string
	Target domain.Vector
	Time   float64
}

func (t *InTimeToArrivalToLocation) Update() behavior.Status {
	loc, ok := t.World.Location(t.Actor)
	if !ok {
		return behavior.Running
	}
	tta := math.Inf(1)
	if v := t.World.Velocity(t.Actor); v > Epsilon {
		tta = domain.Distance(loc, t.Target) / v
	}
	if tta < t.Time {
		return behavior.Success
	}
	return behavior.Running
}

// InTimeToArrivalToVehicle succeeds once the time for Actor to reach Other
// satisfies Comparison against Time. Comparison defaults to less_than.
//
// The time to arrival is 2*d/(v1-v2) and is only computed when Actor is faster
// than Other; otherwise it is infinite, even if the two are closing in on each
// other along a different axis.
type InTimeToArrivalToVehicle struct {
	behavior.Base
	World      World
	Actor      string
	Other      string
	Time       float64
	Comparison Comparison
}

func (t *InTimeToArrivalToVehicle) Update() behavior.Status {
	a, ok := t.World.Location(t.Actor)
	if !ok {
		return behavior.Running
	}
	b, ok := t.World.Location(t.Other)
	if !ok {
		return behavior.Running
	}
	tta := math.Inf(1)
	v1, v2 := t.World.Velocity(t.Actor), t.World.Velocity(t.Other)
	if v1 > v2 {
		tta = 2 * domain.Distance(a, b) / (v1 - v2)
	}
	if t.Comparison.Compare(tta, t.Time) {
		return behavior.Success
	}
	return behavior.Running
}

// DriveDistance succeeds once Actor has covered more than Distance meters since
// activation, measured as the sum of straight segments between observed positions.
type DriveDistance struct {
	World    World
	Actor    string
	Distance float64

	driven float64
	last   domain.Vector
	seen   bool
}

func (d *DriveDistance) Initialise() {
	d.driven = 0
	d.last, d.seen = d.World.Location(d.Actor)
}

func (d *DriveDistance) Update() behavior.Status {
	loc, ok := d.World.Location(d.Actor)
	if !ok {
		return behavior.Running
	}
	if d.seen {
		d.driven += domain.Distance(d.last, loc)
	}
	d.last, d.seen = loc, true
	if d.driven > d.Distance {
		return behavior.Success
	}
	return behavior.Running
}

func (d *DriveDistance) Terminate(behavior.Status) {}

// Driven returns the distance covered in the current activation.
func (d *DriveDistance) Driven() float64 {
	return d.driven
}
