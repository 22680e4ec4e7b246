package atomic

import (
	"github.com/aretw0/roadtest/pkg/behavior"
	"github.com/aretw0/roadtest/pkg/domain"
)

// Criterion is a leaf that watches a safety property for the whole run. It stays
// Running while the property holds and fails the first time it is violated.
type Criterion interface {
	behavior.Behavior
	// Verdict is Invalid until the property was evaluated, Success while it has
	// held, and Failure from the first violation on.
	Verdict() domain.Status
}

type verdict struct {
	status domain.Status
}

func (v *verdict) Verdict() domain.Status { return v.status }

func (v *verdict) Initialise() {}

func (v *verdict) Terminate(behavior.Status) {}

// judge latches the first violation. A criterion ticked again by its parallel
// parent keeps failing.
func (v *verdict) judge(ok bool) behavior.Status {
	if v.status == domain.StatusFailure {
		return behavior.Failure
	}
	if ok {
		v.status = domain.StatusSuccess
		return behavior.Running
	}
	v.status = domain.StatusFailure
	return behavior.Failure
}

// MaxVelocityTest fails once Actor is faster than Max m/s.
type MaxVelocityTest struct {
	verdict
	World World
	Actor string
	Max   float64
}

func (m *MaxVelocityTest) Update() behavior.Status {
	return m.judge(m.World.Velocity(m.Actor) <= m.Max)
}

// MaxAngularVelocityTest fails once Actor's yaw rate exceeds Max rad/s.
type MaxAngularVelocityTest struct {
	verdict
	World World
	Actor string
	Max   float64
}

func (m *MaxAngularVelocityTest) Update() behavior.Status {
	av, ok := m.World.AngularVelocity(m.Actor)
	if !ok {
		return behavior.Running
	}
	return m.judge(av.Y <= m.Max)
}

// SeparationDistanceTest fails once Actor and Target are more than Max meters apart.
type SeparationDistanceTest struct {
	verdict
	World  World
	Actor  string
	Target string
	Max    float64
}

func (s *SeparationDistanceTest) Update() behavior.Status {
	a, ok := s.World.Location(s.Actor)
	if !ok {
		return behavior.Running
	}
	b, ok := s.World.Location(s.Target)
	if !ok {
		return behavior.Running
	}
	return s.judge(domain.Distance(a, b) <= s.Max)
}

var (
	_ Criterion = (*MaxVelocityTest)(nil)
	_ Criterion = (*MaxAngularVelocityTest)(nil)
	_ Criterion = (*SeparationDistanceTest)(nil)
	_ Criterion = (*ExprCriterion)(nil)
)
