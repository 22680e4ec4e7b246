// Package process runs allow-listed external commands when a scenario run completes,
// for notifications and CI glue.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/roadtest/internal/logging"
	"github.com/aretw0/roadtest/pkg/domain"
)

// DefaultTimeout bounds a single hook command.
const DefaultTimeout = 30 * time.Second

// Result is the outcome of one hook command.
type Result struct {
	Name     string
	Output   string
	ExitCode int
	Err      error
}

// Runner executes the configured commands with the report passed in the environment.
type Runner struct {
	commands []Command
	baseDir  string
	timeout  time.Duration
	logger   *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithCommands appends commands to the allow-list.
func WithCommands(cmds ...Command) RunnerOption {
	return func(r *Runner) {
		r.commands = append(r.commands, cmds...)
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout bounds every command. Zero disables the bound.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new hook runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Commands returns the allow-list.
func (r *Runner) Commands() []Command {
	return r.commands
}

// Hooks returns lifecycle hooks running every command on run completion.
func (r *Runner) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunComplete: func(ctx context.Context, report *domain.Report) {
			for _, res := range r.RunAll(ctx, report) {
				if res.Err != nil {
					r.logger.Warn("report hook failed", "hook", res.Name, "exit_code", res.ExitCode, "err", res.Err)
					continue
				}
				r.logger.Debug("report hook finished", "hook", res.Name, "output", res.Output)
			}
		},
	}
}

// RunAll runs every applicable command for report, in order.
func (r *Runner) RunAll(ctx context.Context, report *domain.Report) []Result {
	var out []Result
	for _, c := range r.commands {
		if c.OnlyFailed && report.Passed() {
			continue
		}
		out = append(out, r.Run(ctx, c, report))
	}
	return out
}

// Run executes c once. The report is never placed on the command line: it is
// passed as ROADTEST_* environment variables.
func (r *Runner) Run(ctx context.Context, c Command, report *domain.Report) Result {
	res := Result{Name: c.Name}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Dir = r.baseDir
	env, err := reportEnv(report)
	if err != nil {
		res.Err = err
		return res
	}
	cmd.Env = append(cmd.Environ(), env...)
	for k, v := range c.Environment {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	res.Output = strings.TrimSpace(stdout.String())
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		}
		res.Err = fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return res
}

func reportEnv(r *domain.Report) ([]string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return []string{
		"ROADTEST_REPORT_ID=" + r.ID,
		"ROADTEST_SCENARIO=" + r.Scenario,
		"ROADTEST_OUTCOME=" + string(r.Outcome),
		"ROADTEST_STATUS=" + r.Status.String(),
		"ROADTEST_PASSED=" + strconv.FormatBool(r.Passed()),
		"ROADTEST_REPETITION=" + strconv.Itoa(r.Repetition),
		"ROADTEST_GAME_TIME=" + strconv.FormatFloat(r.GameTime, 'f', -1, 64),
		"ROADTEST_STEPS=" + strconv.Itoa(r.Steps),
		"ROADTEST_ERROR=" + r.Error,
		"ROADTEST_REPORT_JSON=" + string(data),
	}, nil
}
