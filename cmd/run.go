// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagepilot/internal/auth"
	"github.com/xkilldash9x/pagepilot/internal/browser/cdp"
	"github.com/xkilldash9x/pagepilot/internal/config"
	"github.com/xkilldash9x/pagepilot/internal/interact"
	"github.com/xkilldash9x/pagepilot/internal/observability"
	"github.com/xkilldash9x/pagepilot/internal/runner"
	"github.com/xkilldash9x/pagepilot/internal/settings"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Executes all enabled tasks from the settings document",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so they override config file and environment values.
			if err := viper.BindPFlag("settings.file", cmd.Flags().Lookup("settings")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.data_root", cmd.Flags().Lookup("data-root")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			// A run stops cleanly on Ctrl-C: in-flight waits and browser
			// operations observe the cancellation.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			doc, err := settings.Load(cfg.Settings.File)
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			// The supervisor operates on an immutable snapshot; edits to the
			// settings file during a run do not leak into it.
			doc = settings.Clone(doc)

			logger.Info("Settings loaded",
				zap.String("file", cfg.Settings.File),
				zap.Int("profiles", len(doc.Profiles)),
				zap.Int("tasks", len(doc.Tasks)),
			)

			sink := runner.NewLogSink(logger)
			launcher := cdp.NewLauncher(logger, cfg.Browser.Args, cfg.Browser.LaunchTimeout)
			authEngine := auth.NewEngine(logger, "", sink.Message)
			interactEngine := interact.NewEngine(logger)

			exec := runner.NewExecutor(doc, launcher, authEngine, interactEngine, logger, cfg.Browser.DataRoot)
			supervisor := runner.NewSupervisor(doc, exec, sink, logger)

			if err := supervisor.Run(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Run aborted by user signal")
					return fmt.Errorf("run aborted by user signal")
				}
				return err
			}
			return nil
		},
	}

	runCmd.Flags().StringP("settings", "s", "", "Path to the settings document. (Overrides config/env)")
	runCmd.Flags().String("data-root", "", "Root directory for per-profile browser data. (Overrides config/env)")

	return runCmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
