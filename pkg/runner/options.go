package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/ports"
)

// DefaultStepDuration is the simulated time requested per step, in seconds.
const DefaultStepDuration = 0.05

// DefaultLockKey is the lock taken around a run when a locker is configured.
const DefaultLockKey = "roadtest:simulator"

// DefaultLockTTL bounds how long a crashed runner can hold the simulator.
const DefaultLockTTL = 10 * time.Minute

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the ReportStore for persistence of terminal reports.
func WithStore(store ports.ReportStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithLifecycleHooks adds run observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.Hooks = r.Hooks.Merge(hooks)
	}
}

// WithStepDuration sets the simulated seconds requested per step.
func WithStepDuration(dt float64) Option {
	return func(r *Runner) {
		if dt > 0 {
			r.StepDuration = dt
		}
	}
}

// WithMaxSteps bounds the number of steps of a single run. Zero means unbounded.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		r.MaxSteps = n
	}
}

// WithRepetitions sets how many times RunScenario runs a scenario.
func WithRepetitions(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.Repetitions = n
		}
	}
}

// WithLocker serializes runs on key across processes.
func WithLocker(locker ports.DistributedLocker, key string, ttl time.Duration) Option {
	return func(r *Runner) {
		r.Locker = locker
		if key != "" {
			r.LockKey = key
		}
		if ttl > 0 {
			r.LockTTL = ttl
		}
	}
}
