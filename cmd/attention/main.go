// Package main provides the attention CLI.
package main

import (
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/born-ml/attention/internal/envconfig"
	"github.com/born-ml/attention/internal/parallel"
)

const version = "v0.1.0-dev"

func main() {
	if err := NewCLI().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	workers    int
	sequential bool
}

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:          "attention",
		Short:        "Causal scaled dot-product attention",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: envconfig.LogLevel()})
			slog.SetDefault(slog.New(handler))
			slog.Debug("environment", "values", envconfig.Values())
		},
	}

	root.PersistentFlags().IntVar(&flags.workers, "workers", 0, "maximum goroutines per stage (0 = ATTENTION_NUM_WORKERS or CPU count)")
	root.PersistentFlags().BoolVar(&flags.sequential, "sequential", false, "run every stage in a single goroutine")

	root.AddCommand(
		newRunCmd(&flags),
		newTokensCmd(&flags),
		newVersionCmd(),
	)

	return root
}

// parallelConfig merges environment settings with command-line flags.
func (f *globalFlags) parallelConfig() parallel.Config {
	cfg := envconfig.Parallel()
	if f.workers > 0 {
		cfg.NumWorkers = f.workers
	}
	if f.sequential {
		cfg = parallel.Sequential()
	}
	return cfg
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			goVersion := "unknown"
			if info, ok := debug.ReadBuildInfo(); ok {
				goVersion = info.GoVersion
			}
			cmd.Printf("attention %s (%s)\n", version, goVersion)
		},
	}
}
