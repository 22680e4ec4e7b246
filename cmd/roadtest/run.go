package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/roadtest"
	"github.com/aretw0/roadtest/internal/config"
	"github.com/aretw0/roadtest/internal/presentation/tui"
	"github.com/aretw0/roadtest/pkg/adapters/process"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/observability"
	"github.com/aretw0/roadtest/pkg/runner"
	"github.com/aretw0/roadtest/pkg/simulator"
	"github.com/aretw0/roadtest/pkg/transport"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario-file>...",
	Short: "Run scenarios against the simulator",
	Long: `Connects to the configured simulator and runs every scenario file in order,
printing a report per run. The command fails if any run did not pass.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
			cfg.Simulator.Endpoint = endpoint
		}
		if cmd.Flags().Changed("repetitions") {
			cfg.Run.Repetitions, _ = cmd.Flags().GetInt("repetitions")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		plain, _ := cmd.Flags().GetBool("plain")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		be, err := openBackends(cfg)
		if err != nil {
			return err
		}
		defer be.Close()

		reg := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}
		hooks, err := process.LoadCommands(cfg.Run.HooksFile)
		if err != nil {
			return err
		}
		reportHooks := process.NewRunner(process.WithCommands(hooks...), process.WithLogger(logger))
		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			stopMetrics := serveMetrics(addr, reg, logger)
			defer stopMetrics()
		}

		h, err := roadtest.Connect(ctx, cfg.Simulator.Endpoint,
			roadtest.WithLogger(logger),
			roadtest.WithTransportOptions(transportOptions(cfg.Simulator)...),
			roadtest.WithClientOptions(simulator.WithStepCommand(cfg.Simulator.StepCommand)),
			roadtest.WithRunnerOptions(runnerOptions(cfg, be, metrics.Hooks(), observability.LogHooks(logger), reportHooks.Hooks())...),
		)
		if err != nil {
			return err
		}
		defer h.Close(context.Background())

		out := cmd.OutOrStdout()
		styled := !plain && tui.IsTerminal(os.Stdout)
		if styled {
			tui.PrintBanner(out)
		}
		render := tui.NewRenderer(styled)

		var failed error
		for _, path := range args {
			reports, err := h.RunFile(ctx, path)
			for _, r := range reports {
				text, rerr := render(tui.ReportMarkdown(r))
				if rerr != nil {
					text = tui.ReportMarkdown(r)
				}
				fmt.Fprint(out, text)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if ferr := roadtest.Failed(reports); ferr != nil && failed == nil {
				failed = ferr
			}
		}
		return failed
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("endpoint", "", "Simulator websocket endpoint (overrides config)")
	runCmd.Flags().IntP("repetitions", "n", 1, "Runs per scenario (overrides config)")
	runCmd.Flags().Bool("plain", false, "Print plain markdown reports")
	runCmd.Flags().String("metrics-addr", "", "Expose run metrics on this address while running")
}

// serveMetrics exposes reg on addr/metrics until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func transportOptions(s config.Simulator) []transport.Option {
	return []transport.Option{
		transport.WithDialer(&websocket.Dialer{HandshakeTimeout: s.HandshakeTimeout.Duration}),
		transport.WithStepTimeout(s.StepTimeout.Duration),
		transport.WithCloseGrace(s.CloseGrace.Duration),
	}
}

func runnerOptions(cfg *config.Config, be *backends, hooks ...domain.LifecycleHooks) []runner.Option {
	opts := []runner.Option{
		runner.WithStepDuration(cfg.Simulator.Step),
		runner.WithRepetitions(cfg.Run.Repetitions),
		runner.WithMaxSteps(cfg.Run.MaxSteps),
		runner.WithStore(be.store),
	}
	for _, h := range hooks {
		opts = append(opts, runner.WithLifecycleHooks(h))
	}
	if cfg.Lock.Enabled {
		opts = append(opts, runner.WithLocker(be.locker, cfg.Lock.Key, cfg.Lock.TTL.Duration))
	}
	return opts
}
