// Package auditor runs Core Web Vitals audits: one PageSpeed Insights call per
// URL, strictly in input order, with a fixed pause between calls.
package auditor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"webvitals/internal/config"
	"webvitals/pkg/domain"
	"webvitals/pkg/logger"
	"webvitals/pkg/pagespeed"
)

// Options configure an audit run. They are typically derived from
// application configuration.
type Options struct {
	// Strategy is the device profile requested from the API.
	Strategy pagespeed.Strategy
	// Delay is the pause after every URL, successful or not, to stay under
	// the API rate limit.
	Delay time.Duration
	// Progress receives one human-readable line per URL. Nil discards them.
	Progress io.Writer
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config, progress io.Writer) Options {
	return Options{
		Strategy: pagespeed.Strategy(cfg.PSI.Strategy),
		Delay:    cfg.Audit.Delay,
		Progress: progress,
	}
}

// RecordObserver is notified of every record produced, e.g. for metrics.
type RecordObserver interface {
	ObserveRecord(ctx context.Context, rec domain.Record)
}

// Auditor resolves URLs into records using a pagespeed.Client.
type Auditor struct {
	// client performs the API calls.
	client pagespeed.Client
	// options holds runtime configuration of the run.
	options Options
	// observer may be nil.
	observer RecordObserver
	// sleep waits between URLs; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Auditor. observer may be nil.
func New(client pagespeed.Client, options Options, observer RecordObserver) *Auditor {
	if options.Strategy == "" {
		options.Strategy = pagespeed.StrategyMobile
	}
	if options.Progress == nil {
		options.Progress = io.Discard
	}

	return &Auditor{
		client:   client,
		options:  options,
		observer: observer,
		sleep:    sleep,
	}
}

// Audit checks every URL in order and returns exactly one record per URL.
// Request-level failures become error records and the run continues; only
// context cancellation stops it early, in which case the records gathered so
// far are returned together with the context error.
func (a *Auditor) Audit(ctx context.Context, urls []string) ([]domain.Record, error) {
	records := make([]domain.Record, 0, len(urls))

	for i, u := range urls {
		urlCtx := logger.WithFields(ctx, zap.String("url", u), zap.Int("index", i))

		rec, err := a.Check(urlCtx, u)
		if err != nil {
			return records, err
		}
		records = append(records, rec)

		if err := a.sleep(ctx, a.options.Delay); err != nil {
			return records, fmt.Errorf("audit interrupted after %d of %d URLs: %w", len(records), len(urls), err)
		}
	}

	return records, nil
}

// Check audits a single URL. The returned error is non-nil only when ctx is
// done; every other failure is reported in the record.
func (a *Auditor) Check(ctx context.Context, url string) (domain.Record, error) {
	_, _ = fmt.Fprintf(a.options.Progress, "Checking %s ...\n", url)

	report, err := a.client.Run(ctx, pagespeed.Request{URL: url, Strategy: a.options.Strategy})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Record{}, fmt.Errorf("audit of %s interrupted: %w", url, ctxErr)
		}

		rec := domain.ErrorRecord(url, errorMessage(err))
		logger.Warn(ctx, "could not audit URL", zap.Error(err))
		a.observe(ctx, rec)

		return rec, nil
	}

	rec := Resolve(url, report)
	logger.Info(ctx, "URL audited",
		zap.String("source", string(rec.Source)),
		zap.String("lcp", string(rec.LCPCategory)),
		zap.String("inp", string(rec.INPCategory)),
		zap.String("cls", string(rec.CLSCategory)))
	a.observe(ctx, rec)

	return rec, nil
}

func (a *Auditor) observe(ctx context.Context, rec domain.Record) {
	if a.observer != nil {
		a.observer.ObserveRecord(ctx, rec)
	}
}

// errorMessage renders the report text of a failed call: "{status}: {body}"
// when the API answered, the error chain otherwise.
func errorMessage(err error) string {
	var statusErr *pagespeed.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}

	return err.Error()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
