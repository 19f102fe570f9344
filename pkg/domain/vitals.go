package domain

import (
	"math"
	"strconv"
)

// Category is the tier a metric value falls in.
type Category string

const (
	CategoryGood             Category = "Good"
	CategoryNeedsImprovement Category = "Needs Improvement"
	CategoryPoor             Category = "Poor"
	CategoryNotAvailable     Category = "Not Available"
)

// Metric names a Core Web Vital.
type Metric string

const (
	MetricLCP Metric = "lcp"
	MetricINP Metric = "inp"
	MetricCLS Metric = "cls"
)

// Thresholds holds the inclusive upper bounds of the Good and Needs
// Improvement tiers of a metric. Anything above NeedsImprovement is Poor.
type Thresholds struct {
	Good             float64
	NeedsImprovement float64
}

var (
	// LCPThresholds are expressed in seconds.
	LCPThresholds = Thresholds{Good: 2.5, NeedsImprovement: 4.0} //nolint: gochecknoglobals
	// INPThresholds are expressed in milliseconds.
	INPThresholds = Thresholds{Good: 200, NeedsImprovement: 500} //nolint: gochecknoglobals
	// CLSThresholds are unitless.
	CLSThresholds = Thresholds{Good: 0.1, NeedsImprovement: 0.25} //nolint: gochecknoglobals
)

// Classify maps a measurement onto a Category. A nil or zero value is Not
// Available: a zero measurement cannot be told apart from a missing one.
func (t Thresholds) Classify(v *float64) Category {
	if !Present(v) {
		return CategoryNotAvailable
	}

	switch {
	case *v <= t.Good:
		return CategoryGood
	case *v <= t.NeedsImprovement:
		return CategoryNeedsImprovement
	default:
		return CategoryPoor
	}
}

// ClassifyLCP classifies a Largest Contentful Paint in seconds.
func ClassifyLCP(seconds *float64) Category { return LCPThresholds.Classify(seconds) }

// ClassifyINP classifies an Interaction to Next Paint in milliseconds.
func ClassifyINP(ms *float64) Category { return INPThresholds.Classify(ms) }

// ClassifyCLS classifies a Cumulative Layout Shift score.
func ClassifyCLS(score *float64) Category { return CLSThresholds.Classify(score) }

// Present reports whether v holds a usable measurement, i.e. is non-nil and
// non-zero.
func Present(v *float64) bool {
	return v != nil && *v != 0
}

// Round returns v rounded to the given number of decimals, or nil when v is
// not Present. Halfway cases are resolved on the exact binary value, ties to
// even, so 0.125 stays 0.12.
func Round(v *float64, decimals int) *float64 {
	if !Present(v) {
		return nil
	}

	r, err := strconv.ParseFloat(strconv.FormatFloat(*v, 'f', decimals, 64), 64)
	if err != nil || math.IsInf(r, 0) {
		r = *v
	}

	return &r
}
