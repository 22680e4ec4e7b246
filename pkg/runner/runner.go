package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/roadtest/internal/logging"
	"github.com/aretw0/roadtest/pkg/atomic"
	"github.com/aretw0/roadtest/pkg/behavior"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/ports"
	"github.com/aretw0/roadtest/pkg/scenario"
	"github.com/google/uuid"
)

// ErrStepLimit is returned when a run exceeds its configured step bound.
var ErrStepLimit = errors.New("step limit reached")

// Runner schedules scenario trees against a Stepper.
type Runner struct {
	Stepper ports.Stepper

	// Logger is used for run logging. If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store receives every terminal report. If nil, reports are only returned.
	Store ports.ReportStore

	Hooks        domain.LifecycleHooks
	StepDuration float64
	MaxSteps     int
	Repetitions  int

	Locker  ports.DistributedLocker
	LockKey string
	LockTTL time.Duration

	now func() time.Time
}

// NewRunner creates a Runner stepping through s.
func NewRunner(s ports.Stepper, opts ...Option) *Runner {
	r := &Runner{
		Stepper:      s,
		Logger:       logging.NewNop(),
		StepDuration: DefaultStepDuration,
		Repetitions:  1,
		LockKey:      DefaultLockKey,
		LockTTL:      DefaultLockTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// RunScenario runs the scenario built by build once per repetition, each against a
// fresh Env. It stops at the first run that ends in an error and returns the reports
// gathered so far.
func (r *Runner) RunScenario(ctx context.Context, build scenario.Builder) ([]*domain.Report, error) {
	var reports []*domain.Report
	for rep := 1; rep <= r.Repetitions; rep++ {
		if rep > 1 {
			if rs, ok := r.Stepper.(ports.Resetter); ok {
				if err := rs.Reset(ctx); err != nil {
					return reports, fmt.Errorf("reset before repetition %d: %w", rep, err)
				}
			}
		}

		env := scenario.NewEnv(r.Logger)
		s, err := build(env)
		if err != nil {
			return reports, fmt.Errorf("failed to build scenario: %w", err)
		}
		tree, err := s.Build(env.Clock)
		if err != nil {
			return reports, fmt.Errorf("failed to build scenario: %w", err)
		}

		report, err := r.run(ctx, env, tree, rep)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// Run drives tree until its root is terminal and returns the report.
// tree must have been built against env.Clock.
//
// Any step error is fatal to the run: the tree is stopped with Failure and the
// report, carrying OutcomeError, is returned together with the error.
func (r *Runner) Run(ctx context.Context, env *scenario.Env, tree *scenario.Tree) (*domain.Report, error) {
	return r.run(ctx, env, tree, 1)
}

func (r *Runner) run(ctx context.Context, env *scenario.Env, tree *scenario.Tree, rep int) (*domain.Report, error) {
	if env == nil || tree == nil {
		return nil, errors.New("runner: nil scenario")
	}
	if r.Stepper == nil {
		return nil, errors.New("runner: no stepper configured")
	}

	if r.Locker != nil {
		unlock, err := r.Locker.Lock(ctx, r.LockKey, r.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire simulator lock: %w", err)
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				r.Logger.Warn("failed to release simulator lock", "key", r.LockKey, "err", err)
			}
		}()
	}

	logger := r.Logger.With("scenario", tree.Name, "repetition", rep)
	rec := newRecorder(ctx, r, tree, env)
	tree.OnTerminate(rec.nodeTerminated)

	started := r.now()
	env.Clock.Restart(r.StepDuration)
	logger.Info("scenario started", "step", r.StepDuration)

	runErr := r.loop(ctx, env, tree, rec, logger)
	if runErr != nil {
		tree.Stop(behavior.Failure)
	}

	finished := r.now()
	report := &domain.Report{
		ID:         uuid.NewString(),
		Scenario:   tree.Name,
		Repetition: rep,
		Status:     tree.Status(),
		Outcome:    tree.Outcome(),
		Steps:      rec.steps,
		Ticks:      tree.Ticks(),
		FinalFrame: env.Clock.Frame(),
		GameTime:   env.Clock.Now(),
		WallTime:   finished.Sub(started),
		Criteria:   rec.criteria(),
		StartedAt:  started,
		FinishedAt: finished,
	}
	if runErr != nil {
		report.Outcome = domain.OutcomeError
		report.Error = runErr.Error()
		logger.Error("scenario aborted", "err", runErr, "steps", rec.steps)
	} else {
		logger.Info("scenario finished",
			"outcome", report.Outcome,
			"game_time", report.GameTime,
			"steps", report.Steps,
			"wall_time", report.WallTime,
		)
	}

	if r.Hooks.OnRunComplete != nil {
		r.Hooks.OnRunComplete(ctx, report)
	}

	if r.Store != nil {
		if err := r.Store.Save(context.WithoutCancel(ctx), report); err != nil {
			return report, errors.Join(runErr, fmt.Errorf("failed to persist report: %w", err))
		}
		logger.Debug("report saved", "report_id", report.ID)
	}
	return report, runErr
}

func (r *Runner) loop(ctx context.Context, env *scenario.Env, tree *scenario.Tree, rec *recorder, logger *slog.Logger) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.MaxSteps > 0 && rec.steps >= r.MaxSteps {
			return fmt.Errorf("%w: %d", ErrStepLimit, r.MaxSteps)
		}

		sent := r.now()
		ep, err := r.Stepper.Step(ctx, r.StepDuration)
		if err != nil {
			return fmt.Errorf("step %d: %w", rec.steps+1, err)
		}
		if ep == nil {
			return fmt.Errorf("step %d: empty episode", rec.steps+1)
		}
		rec.steps++

		env.Provider.Publish(ep)
		if !env.Clock.Advance(ep.GameTime) {
			logger.Warn("stale episode frame", "frame", ep.GameTime.CurrentFrame, "clock_frame", env.Clock.Frame())
		}
		if r.Hooks.OnStep != nil {
			r.Hooks.OnStep(ctx, &domain.StepEvent{
				EventBase: rec.base(domain.EventStep),
				Step:      rec.steps,
				GameTime:  ep.GameTime,
				Latency:   r.now().Sub(sent),
			})
		}

		st := tree.Tick()
		logger.Debug("tick", "tick", tree.Ticks(), "status", st, "time", env.Clock.Now())
		if r.Hooks.OnTick != nil {
			r.Hooks.OnTick(ctx, &domain.TickEvent{
				EventBase: rec.base(domain.EventTick),
				Tick:      tree.Ticks(),
				Status:    st,
				Time:      env.Clock.Now(),
			})
		}
		if st.Terminal() {
			return nil
		}
	}
}

// recorder collects per-run observations from node terminations.
type recorder struct {
	ctx      context.Context
	runner   *Runner
	tree     *scenario.Tree
	env      *scenario.Env
	steps    int
	failedAt map[*behavior.Node]float64
}

func newRecorder(ctx context.Context, r *Runner, tree *scenario.Tree, env *scenario.Env) *recorder {
	return &recorder{ctx: ctx, runner: r, tree: tree, env: env, failedAt: make(map[*behavior.Node]float64)}
}

func (rec *recorder) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: rec.runner.now(), Type: t, Scenario: rec.tree.Name}
}

func (rec *recorder) nodeTerminated(n *behavior.Node, st behavior.Status) {
	if st == behavior.Failure {
		if _, ok := n.Behavior().(atomic.Criterion); ok {
			if _, seen := rec.failedAt[n]; !seen {
				rec.failedAt[n] = rec.env.Clock.Now()
			}
		}
	}
	if h := rec.runner.Hooks.OnNodeTerminate; h != nil {
		h(rec.ctx, &domain.NodeEvent{
			EventBase: rec.base(domain.EventNodeTerminate),
			Node:      n.Name(),
			Kind:      n.Policy().String(),
			Status:    st,
			Time:      rec.env.Clock.Now(),
		})
	}
}

func (rec *recorder) criteria() []domain.CriterionResult {
	results := rec.tree.CriteriaResults()
	if len(results) == 0 {
		return nil
	}
	for i, n := range rec.tree.CriterionLeaves() {
		if at, ok := rec.failedAt[n]; ok {
			results[i].FailedAt = &at
		}
	}
	return results
}
