package ports

import (
	"context"

	"github.com/aretw0/roadtest/pkg/domain"
)

// Stepper advances the simulation by exactly one step of dt simulated seconds.
// Each call must return the episode produced by that step and no other.
type Stepper interface {
	Step(ctx context.Context, dt float64) (*domain.EpisodeState, error)
}

// Resetter is implemented by steppers that can restart the simulated scene between
// repetitions of a scenario.
type Resetter interface {
	Reset(ctx context.Context) error
}
