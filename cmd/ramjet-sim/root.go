package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ramjet-sim/internal/config"
	"ramjet-sim/internal/logging"
	"ramjet-sim/internal/observability"
)

var (
	configPath string
	schemaPath string
	logLevel   string
	logFormat  string

	shutdownTracing func(context.Context) error
	initTracing     = observability.InitTracing
)

var rootCmd = &cobra.Command{
	Use:           "ramjet-sim",
	Short:         "Guided ramjet projectile simulator",
	Long:          "ramjet-sim integrates a boosted, ramjet-sustained, PN-guided projectile over a flat earth and reports miss distance.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New()
		if logLevel != "" || logFormat != "" {
			l, err := logging.NewWithOptions(os.Stderr, orEnv(logLevel, "LOG_LEVEL"), orEnv(logFormat, "LOG_FORMAT"))
			if err != nil {
				return err
			}
			log = l
		}
		slog.SetDefault(log)
		ctx := logging.NewContext(cmd.Context(), log)

		shutdown, err := initTracing(ctx, observability.TracingConfigFromEnv(), log)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		shutdownTracing = shutdown
		cmd.SetContext(ctx)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// execute flushes tracing after the command returns, including when RunE
// fails; cobra skips PersistentPostRun on error.
func execute(ctx context.Context, args []string) error {
	defer flushTracing(ctx)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func flushTracing(ctx context.Context) {
	if shutdownTracing == nil {
		return
	}
	observability.ShutdownWithTimeout(context.WithoutCancel(ctx), shutdownTracing, slog.Default())
	shutdownTracing = nil
}

func orEnv(v, key string) string {
	if v != "" {
		return v
	}
	return os.Getenv(key)
}

// loadConfig reads --config, or falls back to the built-in defaults.
func loadConfig() (*config.SimulationConfig, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath, schemaPath)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to simulation configuration YAML (built-in defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL or info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (default $LOG_FORMAT or text)")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(dashboardCmd)
}
