// Package pagespeed defines the client abstraction and the response model
// used to fetch performance measurements for a URL from the PageSpeed
// Insights API. Only the parts of the response the audit reads are modeled.
package pagespeed

import (
	"context"
	"strconv"
)

// Strategy selects the device profile the API emulates.
type Strategy string

const (
	StrategyMobile  Strategy = "mobile"
	StrategyDesktop Strategy = "desktop"
)

// Valid reports whether s is a strategy the API accepts.
func (s Strategy) Valid() bool {
	return s == StrategyMobile || s == StrategyDesktop
}

// CategoryPerformance is the only Lighthouse category requested.
const CategoryPerformance = "performance"

// CrUX metric keys under loadingExperience.metrics.
const (
	FieldLCP             = "LARGEST_CONTENTFUL_PAINT_MS"
	FieldINP             = "INTERACTION_TO_NEXT_PAINT"
	FieldExperimentalINP = "EXPERIMENTAL_INTERACTION_TO_NEXT_PAINT"
	FieldCLS             = "CUMULATIVE_LAYOUT_SHIFT_SCORE"
)

// Lighthouse audit IDs under lighthouseResult.audits.
const (
	AuditLCP         = "largest-contentful-paint"
	AuditInteractive = "interactive"
	AuditCLS         = "cumulative-layout-shift"
)

// Request describes one API call.
type Request struct {
	URL      string
	Strategy Strategy
}

// FieldMetric is a CrUX metric. Percentile is nil when the metric object has
// no numeric percentile.
type FieldMetric struct {
	Percentile *float64
}

// Audit is a Lighthouse audit. HasNumericValue tells whether the numericValue
// key exists at all, NumericValue is nil when it is null or not a number.
type Audit struct {
	HasNumericValue bool
	NumericValue    *float64
}

// Report is the subset of a PageSpeed Insights response the audit reads.
// Maps only contain entries for keys present in the response.
type Report struct {
	// FieldMetrics is keyed by CrUX metric key (FieldLCP, ...).
	FieldMetrics map[string]FieldMetric
	// Audits is keyed by Lighthouse audit ID (AuditLCP, ...).
	Audits map[string]Audit
	// PerformanceScore is the raw 0..1 performance category score.
	PerformanceScore *float64
}

// StatusError is returned when the API answers with anything but 200 OK.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error formats the error as "{status}: {body}", the form written to reports.
func (e *StatusError) Error() string {
	return strconv.Itoa(e.StatusCode) + ": " + e.Body
}

// Client fetches performance reports for URLs.
//
//go:generate mockgen -package mockpagespeed -source=interface.go -destination=mock/mockpagespeed.go *
type Client interface {
	// Run issues a single API call for the request. It returns a *StatusError
	// (wrapped with a serrors kind) for non-200 responses.
	Run(ctx context.Context, req Request) (*Report, error)
}
