// Package main provides the CLI entrypoint of the Core Web Vitals auditor.
// It wires subcommands (audit, check), loads configuration, and initializes logging.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webvitals/internal/config"
	"webvitals/pkg/logger"
)

// main sets up the root Cobra command and registers subcommands before
// executing the CLI. Configuration and logging are initialized once the
// flags are parsed, before any subcommand runs.
func main() {
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:           "webvitals",
		Short:         "Audits Core Web Vitals of a list of URLs through PageSpeed Insights",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}

			log.Println("loading config ...")
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			*cfg = *loaded

			return logger.Setup(cfg.Environment)
		},
	}
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync(ctx)

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		auditCommand(cfg),
		checkCommand(cfg),
	)

	err := rootCmd.Execute()
	logger.Sync(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1) //nolint: gocritic
	}
}
