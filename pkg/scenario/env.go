package scenario

import (
	"log/slog"

	"github.com/aretw0/roadtest/internal/logging"
	"github.com/aretw0/roadtest/pkg/clock"
	"github.com/aretw0/roadtest/pkg/provider"
)

// Env is the per-run context handed to leaves by reference. A fresh Env is built
// for every run so no state leaks between repetitions.
type Env struct {
	Clock    *clock.Clock
	Provider *provider.Provider
	Logger   *slog.Logger
}

// NewEnv returns an Env with a zeroed clock and an empty provider.
func NewEnv(logger *slog.Logger) *Env {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Env{
		Clock:    clock.New(),
		Provider: provider.New(provider.WithLogger(logger)),
		Logger:   logger,
	}
}

// Builder creates a scenario against a fresh Env.
type Builder func(env *Env) (*Scenario, error)
