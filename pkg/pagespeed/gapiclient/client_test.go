package gapiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"webvitals/pkg/pagespeed"
	"webvitals/pkg/pagespeed/gapiclient"
	"webvitals/pkg/serrors"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func ptr(v float64) *float64 { return &v }

func newTestClient(t *testing.T, fn rtFunc) *gapiclient.Client {
	t.Helper()

	c, err := gapiclient.New(context.Background(), &http.Client{Transport: fn}, "test-key")
	require.NoError(t, err)

	return c
}

func respond(status int, body string) rtFunc {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
}

const body = `{
  "loadingExperience": {
    "metrics": {
      "LARGEST_CONTENTFUL_PAINT_MS": {"percentile": 1800, "category": "FAST"},
      "CUMULATIVE_LAYOUT_SHIFT_SCORE": {"percentile": 5, "category": "FAST"}
    }
  },
  "lighthouseResult": {
    "audits": {
      "interactive": {"id": "interactive", "numericValue": 3400},
      "speed-index": {"id": "speed-index", "numericValue": 1200}
    },
    "categories": {"performance": {"id": "performance", "score": 0.5}}
  }
}`

func TestClient_Run(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, r.Method)
		require.True(t, strings.HasSuffix(r.URL.Path, "/runPagespeed"), r.URL.Path)

		q := r.URL.Query()
		require.Equal(t, "https://example.com", q.Get("url"))
		require.Equal(t, "test-key", q.Get("key"))
		require.Equal(t, "DESKTOP", q.Get("strategy"))
		require.Equal(t, "PERFORMANCE", q.Get("category"))

		return respond(http.StatusOK, body)(r)
	})

	report, err := c.Run(context.Background(), pagespeed.Request{URL: "https://example.com", Strategy: pagespeed.StrategyDesktop})
	require.NoError(t, err)
	require.Equal(t, ptr(1800), report.FieldMetrics[pagespeed.FieldLCP].Percentile)
	require.Equal(t, ptr(5), report.FieldMetrics[pagespeed.FieldCLS].Percentile)
	require.NotContains(t, report.FieldMetrics, pagespeed.FieldINP)
	require.Equal(t, map[string]pagespeed.Audit{
		pagespeed.AuditInteractive: {HasNumericValue: true, NumericValue: ptr(3400)},
	}, report.Audits)
	require.Equal(t, ptr(0.5), report.PerformanceScore)
}

func TestClient_Run_rateLimited(t *testing.T) {
	c := newTestClient(t, respond(http.StatusTooManyRequests, "quota exceeded"))

	_, err := c.Run(context.Background(), pagespeed.Request{URL: "https://example.com", Strategy: pagespeed.StrategyMobile})
	require.ErrorIs(t, err, serrors.ErrRateLimited)

	var statusErr *pagespeed.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, "429: quota exceeded", statusErr.Error())
}

func TestClient_Run_transportError(t *testing.T) {
	boom := errors.New("connection reset")
	c := newTestClient(t, func(*http.Request) (*http.Response, error) { return nil, boom })

	_, err := c.Run(context.Background(), pagespeed.Request{URL: "https://example.com", Strategy: pagespeed.StrategyMobile})
	require.ErrorIs(t, err, boom)
	require.NotContains(t, err.Error(), "test-key")
}
