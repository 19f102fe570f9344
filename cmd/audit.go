package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webvitals/internal/auditor"
	"webvitals/internal/config"
	"webvitals/internal/report"
	"webvitals/internal/urllist"
	"webvitals/pkg/logger"
	"webvitals/pkg/metrics"
)

func auditCommand(cfg *config.Config) *cobra.Command {
	var input, output, backend, strategy, schema, metricsFile string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audits every URL of the input list and writes a CSV report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			overrideString(flags, "input", input, &cfg.Audit.Input)
			overrideString(flags, "output", output, &cfg.Audit.Output)
			overrideString(flags, "backend", backend, &cfg.PSI.Backend)
			overrideString(flags, "strategy", strategy, &cfg.PSI.Strategy)
			overrideString(flags, "schema", schema, &cfg.Audit.Schema)
			overrideString(flags, "metrics-file", metricsFile, &cfg.Metrics.File)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runAudit(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Newline-delimited URL list (default from config)")
	cmd.Flags().StringVar(&output, "output", "", "CSV report path (default from config)")
	cmd.Flags().StringVar(&backend, "backend", "", "PSI client: rest or google")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Device strategy: mobile or desktop")
	cmd.Flags().StringVar(&schema, "schema", "", "Report header layout: fixed or first-record")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Prometheus textfile written after the run")

	return cmd
}

func runAudit(ctx context.Context, cfg *config.Config) error {
	ctx = logger.WithFields(ctx, zap.String("runID", uuid.New().String()))

	writer, err := report.NewCSVWriter(cfg.Audit.Output, cfg.Audit.Schema)
	if err != nil {
		return err
	}

	urls, err := urllist.Load(ctx, cfg.Audit.Input)
	if err != nil {
		return err
	}

	recorder, err := metrics.New()
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := recorder.Shutdown(shutdownCtx); err != nil {
			logger.Warn(ctx, "could not shut down metrics", zap.Error(err))
		}
	}()

	client, err := newPageSpeedClient(ctx, cfg, recorder)
	if err != nil {
		return err
	}
	a := auditor.New(client, auditor.NewOptions(cfg, os.Stdout), recorder)

	logger.Info(ctx, "starting audit", zap.Int("urls", len(urls)), zap.String("strategy", cfg.PSI.Strategy))
	records, err := a.Audit(ctx, urls)
	if err != nil {
		return err
	}

	if err := writer.Write(records); err != nil {
		return err
	}

	if cfg.Metrics.File != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.File); err != nil {
			logger.Warn(ctx, "could not write metrics file", zap.String("path", cfg.Metrics.File), zap.Error(err))
		}
	}

	logger.Info(ctx, "audit finished", zap.Int("records", len(records)), zap.String("output", writer.Path()))
	fmt.Printf("\nDone! Results saved to %s\n", writer.Path())

	return nil
}
