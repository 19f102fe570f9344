// Package metrics records audit run metrics through OpenTelemetry and exposes
// them as a Prometheus registry, which can be written to a node_exporter
// textfile at the end of a run.
package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"webvitals/pkg/domain"
)

// DefaultBuckets provides histogram buckets in seconds for API latency. PSI
// calls run a full Lighthouse pass, so they span seconds rather than
// milliseconds.
var DefaultBuckets = []float64{.25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90} //nolint: gochecknoglobals

const meterName = "webvitals"

// Outcome labels of the audited URLs counter.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder owns the meter provider and the instruments of one audit run.
type Recorder struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider

	requestDuration metric.Float64Histogram
	audited         metric.Int64Counter
	classified      metric.Int64Counter
}

// New creates a Recorder backed by a private Prometheus registry.
func New() (*Recorder, error) {
	reg := prometheus.NewRegistry()

	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	meter := mp.Meter(meterName)

	r := &Recorder{registry: reg, provider: mp}

	r.requestDuration, err = meter.Float64Histogram("webvitals_psi_request_duration",
		metric.WithDescription("Duration of PageSpeed Insights API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create request duration histogram: %w", err)
	}

	r.audited, err = meter.Int64Counter("webvitals_audited_urls",
		metric.WithDescription("URLs audited, by outcome and data source"))
	if err != nil {
		return nil, fmt.Errorf("could not create audited urls counter: %w", err)
	}

	r.classified, err = meter.Int64Counter("webvitals_classifications",
		metric.WithDescription("Metric classifications, by metric and category"))
	if err != nil {
		return nil, fmt.Errorf("could not create classifications counter: %w", err)
	}

	return r, nil
}

// ObserveRequest records one PSI call. status is 0 when no response arrived.
func (r *Recorder) ObserveRequest(ctx context.Context, status int, elapsed time.Duration) {
	r.requestDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("status", strconv.Itoa(status))))
}

// ObserveRecord counts a finished record and the categories of its metrics.
func (r *Recorder) ObserveRecord(ctx context.Context, rec domain.Record) {
	if rec.Failed() {
		r.audited.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", OutcomeError),
			attribute.String("source", "")))

		return
	}

	r.audited.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", OutcomeOK),
		attribute.String("source", string(rec.Source))))

	for m, c := range map[domain.Metric]domain.Category{
		domain.MetricLCP: rec.LCPCategory,
		domain.MetricINP: rec.INPCategory,
		domain.MetricCLS: rec.CLSCategory,
	} {
		r.classified.Add(ctx, 1, metric.WithAttributes(
			attribute.String("metric", string(m)),
			attribute.String("category", string(c))))
	}
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the current metrics to path in the Prometheus text
// format. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("could not write metrics to %s: %w", path, err)
	}

	return nil
}

// Shutdown releases the meter provider.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if err := r.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("could not shut down meter provider: %w", err)
	}

	return nil
}
