package observability

import (
	"context"

	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the run collectors.
type Metrics struct {
	Runs         *prometheus.CounterVec
	Steps        *prometheus.CounterVec
	StepLatency  *prometheus.HistogramVec
	RunGameTime  *prometheus.HistogramVec
	NodeOutcomes *prometheus.CounterVec
	Criteria     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadtest_runs_total",
				Help: "Total number of finished scenario runs",
			},
			[]string{"scenario", "outcome"},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadtest_steps_total",
				Help: "Total number of simulator steps",
			},
			[]string{"scenario"},
		),
		StepLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roadtest_step_latency_seconds",
				Help:    "Wall-clock time between a step request and its episode",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"scenario"},
		),
		RunGameTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roadtest_run_game_time_seconds",
				Help:    "Simulated duration of finished runs",
				Buckets: prometheus.LinearBuckets(5, 5, 12),
			},
			[]string{"scenario"},
		),
		NodeOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadtest_node_terminations_total",
				Help: "Total number of node terminations by status",
			},
			[]string{"scenario", "kind", "status"},
		),
		Criteria: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadtest_criteria_total",
				Help: "Criterion verdicts of finished runs",
			},
			[]string{"scenario", "criterion", "status"},
		),
	}
	for _, c := range []prometheus.Collector{m.Runs, m.Steps, m.StepLatency, m.RunGameTime, m.NodeOutcomes, m.Criteria} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.Scenario).Inc()
			m.StepLatency.WithLabelValues(e.Scenario).Observe(e.Latency.Seconds())
		},
		OnNodeTerminate: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeOutcomes.WithLabelValues(e.Scenario, e.Kind, e.Status.String()).Inc()
		},
		OnRunComplete: func(_ context.Context, r *domain.Report) {
			m.Runs.WithLabelValues(r.Scenario, string(r.Outcome)).Inc()
			m.RunGameTime.WithLabelValues(r.Scenario).Observe(r.GameTime)
			for _, c := range r.Criteria {
				m.Criteria.WithLabelValues(r.Scenario, c.Name, c.Status.String()).Inc()
			}
		},
	}
}
