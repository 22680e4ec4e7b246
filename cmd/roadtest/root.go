package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/roadtest/internal/config"
	"github.com/aretw0/roadtest/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roadtest",
	Short: "roadtest runs behavior-tree driving scenarios against a simulator",
	Long: `roadtest drives a vehicle simulator step by step over a websocket session,
evaluates a scenario's behavior tree and criteria against the published actor
state and records a report for every run.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (yaml or json)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON lines")
}

// loadConfig reads the --config file and applies the logging flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		cfg.Log.JSON = true
	}
	return cfg, newLogger(cfg.Log), nil
}

func newLogger(l config.Log) *slog.Logger {
	level := logging.ParseLevel(l.Level)
	if l.JSON {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}
