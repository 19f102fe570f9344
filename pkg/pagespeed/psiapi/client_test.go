package psiapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"webvitals/pkg/pagespeed"
	"webvitals/pkg/pagespeed/psiapi"
	"webvitals/pkg/serrors"

	"github.com/stretchr/testify/require"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(fn rtFunc) *psiapi.Client {
	return psiapi.New(&http.Client{Transport: fn}, "", "test-key")
}

func respond(status int, body string) rtFunc {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}, nil
	}
}

func ptr(v float64) *float64 { return &v }

const fullBody = `{
  "id": "https://example.com/",
  "loadingExperience": {
    "id": "https://example.com/",
    "metrics": {
      "LARGEST_CONTENTFUL_PAINT_MS": {"percentile": 1800, "distributions": [{"min": 0, "max": 2500, "proportion": 0.9}], "category": "FAST"},
      "INTERACTION_TO_NEXT_PAINT": {"percentile": 150, "category": "FAST"},
      "CUMULATIVE_LAYOUT_SHIFT_SCORE": {"percentile": 5, "category": "FAST"}
    },
    "overall_category": "FAST"
  },
  "lighthouseResult": {
    "requestedUrl": "https://example.com/",
    "audits": {
      "largest-contentful-paint": {"id": "largest-contentful-paint", "score": 0.9, "numericValue": 2300.5, "displayValue": "2.3 s"},
      "interactive": {"id": "interactive", "numericValue": 3400},
      "cumulative-layout-shift": {"id": "cumulative-layout-shift", "numericValue": 0.02, "details": {"items": [{"cumulativeLayoutShiftMainFrame": 0.02}]}},
      "speed-index": {"id": "speed-index", "numericValue": 1200}
    },
    "categories": {
      "performance": {"id": "performance", "title": "Performance", "score": 0.93}
    }
  }
}`

func TestClient_Run_success(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "www.googleapis.com", r.URL.Host)
		require.Equal(t, "/pagespeedonline/v5/runPagespeed", r.URL.Path)

		q := r.URL.Query()
		require.Equal(t, "https://example.com", q.Get("url"))
		require.Equal(t, "test-key", q.Get("key"))
		require.Equal(t, "mobile", q.Get("strategy"))
		require.Equal(t, "performance", q.Get("category"))

		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(fullBody))}, nil
	})

	report, err := c.Run(context.Background(), pagespeed.Request{URL: "https://example.com", Strategy: pagespeed.StrategyMobile})
	require.NoError(t, err)
	require.Equal(t, map[string]pagespeed.FieldMetric{
		pagespeed.FieldLCP: {Percentile: ptr(1800)},
		pagespeed.FieldINP: {Percentile: ptr(150)},
		pagespeed.FieldCLS: {Percentile: ptr(5)},
	}, report.FieldMetrics)
	require.Equal(t, map[string]pagespeed.Audit{
		pagespeed.AuditLCP:         {HasNumericValue: true, NumericValue: ptr(2300.5)},
		pagespeed.AuditInteractive: {HasNumericValue: true, NumericValue: ptr(3400)},
		pagespeed.AuditCLS:         {HasNumericValue: true, NumericValue: ptr(0.02)},
	}, report.Audits)
	require.Equal(t, ptr(0.93), report.PerformanceScore)
}

func TestClient_Run_customEndpoint(t *testing.T) {
	c := psiapi.New(&http.Client{Transport: rtFunc(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, "psi.internal", r.URL.Host)
		require.Equal(t, "/run", r.URL.Path)
		require.Equal(t, "desktop", r.URL.Query().Get("strategy"))

		return respond(http.StatusOK, `{}`)(r)
	})}, "http://psi.internal/run", "k")

	report, err := c.Run(context.Background(), pagespeed.Request{URL: "https://example.com", Strategy: pagespeed.StrategyDesktop})
	require.NoError(t, err)
	require.Empty(t, report.FieldMetrics)
	require.Empty(t, report.Audits)
	require.Nil(t, report.PerformanceScore)
}

func TestClient_Run_rateLimited429(t *testing.T) {
	c := newTestClient(respond(http.StatusTooManyRequests, "quota exceeded"))

	report, err := c.Run(context.Background(), pagespeed.Request{URL: "https://example.com", Strategy: pagespeed.StrategyMobile})
	require.Error(t, err)
	require.Nil(t, report)
	require.ErrorIs(t, err, serrors.ErrRateLimited, "expected ErrRateLimited kind: %v", err)
	require.Equal(t, "429: quota exceeded", err.Error())

	var statusErr *pagespeed.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	require.Equal(t, "quota exceeded", statusErr.Body)
}

func TestClient_Run_forbiddenKeepsRawBody(t *testing.T) {
	body := "{\n  \"error\": {\"code\": 403, \"message\": \"API key not valid\"}\n}\n"
	c := newTestClient(respond(http.StatusForbidden, body))

	_, err := c.Run(context.Background(), pagespeed.Request{URL: "https://example.com", Strategy: pagespeed.StrategyMobile})
	require.ErrorIs(t, err, serrors.ErrForbidden)
	require.Equal(t, "403: "+body, err.Error())
}

func TestClient_Run_non200Success(t *testing.T) {
	// only 200 counts as success, other 2xx codes are reported as errors
	c := newTestClient(respond(http.StatusAccepted, "queued"))

	_, err := c.Run(context.Background(), pagespeed.Request{URL: "https://example.com", Strategy: pagespeed.StrategyMobile})
	var statusErr *pagespeed.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, "202: queued", statusErr.Error())
}

func TestClient_Run_transportError(t *testing.T) {
	boom := errors.New("connection reset")
	c := newTestClient(func(*http.Request) (*http.Response, error) { return nil, boom })

	_, err := c.Run(context.Background(), pagespeed.Request{URL: "https://example.com", Strategy: pagespeed.StrategyMobile})
	require.ErrorIs(t, err, boom)
	require.NotContains(t, err.Error(), "test-key", "API key must not leak into error messages")

	var statusErr *pagespeed.StatusError
	require.NotErrorAs(t, err, &statusErr)
}

func TestClient_Run_invalidJSON(t *testing.T) {
	c := newTestClient(respond(http.StatusOK, `<html>maintenance</html>`))

	_, err := c.Run(context.Background(), pagespeed.Request{URL: "https://example.com", Strategy: pagespeed.StrategyMobile})
	require.Error(t, err)
	require.Contains(t, err.Error(), "could not decode response")
}
