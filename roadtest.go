package roadtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/roadtest/internal/logging"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/runner"
	"github.com/aretw0/roadtest/pkg/scenario"
	"github.com/aretw0/roadtest/pkg/simulator"
	"github.com/aretw0/roadtest/pkg/transport"
)

// Harness is the high-level entry point: one simulator connection plus the
// registry and runner settings used for every scenario run over it.
type Harness struct {
	session       *transport.Session
	client        *simulator.Client
	registry      *scenario.Registry
	logger        *slog.Logger
	transportOpts []transport.Option
	clientOpts    []simulator.Option
	runnerOpts    []runner.Option
}

// Option defines a functional option for configuring the Harness.
type Option func(*Harness)

// WithLogger sets the logger shared by the transport and the runner.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithRegistry replaces the default leaf registry.
func WithRegistry(r *scenario.Registry) Option {
	return func(h *Harness) {
		h.registry = r
	}
}

// WithTransportOptions passes options through to transport.Open.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(h *Harness) {
		h.transportOpts = append(h.transportOpts, opts...)
	}
}

// WithClientOptions passes options through to the simulator client.
func WithClientOptions(opts ...simulator.Option) Option {
	return func(h *Harness) {
		h.clientOpts = append(h.clientOpts, opts...)
	}
}

// WithRunnerOptions passes options through to every runner.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(h *Harness) {
		h.runnerOpts = append(h.runnerOpts, opts...)
	}
}

// Connect opens a session with the simulator at endpoint.
func Connect(ctx context.Context, endpoint string, opts ...Option) (*Harness, error) {
	h := &Harness{
		registry: scenario.DefaultRegistry(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	topts := append([]transport.Option{transport.WithLogger(h.logger)}, h.transportOpts...)
	s, err := transport.Open(ctx, endpoint, topts...)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", endpoint, err)
	}
	h.session = s
	h.client = simulator.New(s, h.clientOpts...)
	return h, nil
}

// Client returns the simulator command client.
func (h *Harness) Client() *simulator.Client {
	return h.client
}

// Registry returns the leaf registry scenario documents are built from.
func (h *Harness) Registry() *scenario.Registry {
	return h.registry
}

// Run runs doc and returns one report per repetition.
func (h *Harness) Run(ctx context.Context, doc *scenario.Document) ([]*domain.Report, error) {
	ropts := append([]runner.Option{runner.WithLogger(h.logger)}, h.runnerOpts...)
	r := runner.NewRunner(h.client, ropts...)
	return r.RunScenario(ctx, doc.Builder(h.registry))
}

// RunFile loads the scenario document at path and runs it.
func (h *Harness) RunFile(ctx context.Context, path string) ([]*domain.Report, error) {
	doc, err := scenario.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return h.Run(ctx, doc)
}

// Close closes the simulator session.
func (h *Harness) Close(ctx context.Context) error {
	if h.session == nil {
		return nil
	}
	return h.session.Close(ctx)
}

// Inspect builds doc against a fresh environment without connecting to a
// simulator, reporting every construction error.
func Inspect(doc *scenario.Document, r *scenario.Registry) (*scenario.Tree, error) {
	if r == nil {
		r = scenario.DefaultRegistry()
	}
	env := scenario.NewEnv(nil)
	sc, err := doc.Scenario(env, r)
	if err != nil {
		return nil, err
	}
	return sc.Build(env.Clock)
}

// InspectFile is Inspect for a document on disk.
func InspectFile(path string, r *scenario.Registry) (*scenario.Tree, error) {
	doc, err := scenario.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Inspect(doc, r)
}

// Failed returns an error naming every report that did not pass, or nil.
func Failed(reports []*domain.Report) error {
	var errs []error
	for _, r := range reports {
		if !r.Passed() {
			errs = append(errs, fmt.Errorf("%s #%d: %s", r.Scenario, r.Repetition, r.Outcome))
		}
	}
	return errors.Join(errs...)
}
