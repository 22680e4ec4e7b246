package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/roadtest/pkg/domain"
)

// LogHooks returns lifecycle hooks writing every event to logger.
// Steps and ticks are logged at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step",
				"scenario", e.Scenario,
				"step", e.Step,
				"frame", e.GameTime.CurrentFrame,
				"game_time", e.GameTime.CurrentTime,
				"latency", e.Latency,
			)
		},
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			logger.DebugContext(ctx, "tick", "scenario", e.Scenario, "tick", e.Tick, "status", e.Status, "time", e.Time)
		},
		OnNodeTerminate: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_terminate",
				"scenario", e.Scenario,
				"node", e.Node,
				"kind", e.Kind,
				"status", e.Status,
				"time", e.Time,
			)
		},
		OnRunComplete: func(ctx context.Context, r *domain.Report) {
			level := slog.LevelInfo
			if !r.Passed() {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "run_complete",
				"scenario", r.Scenario,
				"report_id", r.ID,
				"outcome", r.Outcome,
				"game_time", r.GameTime,
				"steps", r.Steps,
			)
		},
	}
}
