package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"webvitals/internal/auditor"
	"webvitals/internal/config"
	"webvitals/internal/report"
	"webvitals/pkg/domain"
)

func checkCommand(cfg *config.Config) *cobra.Command {
	var backend, strategy string

	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Audits a single URL and prints the report row to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrideString(cmd.Flags(), "backend", backend, &cfg.PSI.Backend)
			overrideString(cmd.Flags(), "strategy", strategy, &cfg.PSI.Strategy)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := newPageSpeedClient(ctx, cfg, nil)
			if err != nil {
				return err
			}
			a := auditor.New(client, auditor.NewOptions(cfg, os.Stderr), nil)
			rec, err := a.Check(ctx, args[0])
			if err != nil {
				return err
			}

			return report.Encode(os.Stdout, config.SchemaFixed, []domain.Record{rec})
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "PSI client: rest or google")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Device strategy: mobile or desktop")

	return cmd
}
