package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"webvitals/pkg/logger"
	"webvitals/pkg/transport"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ok(body string) transport.RoundTripperFunc {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}, nil
	}
}

func TestRedactURL(t *testing.T) {
	u, err := url.Parse("https://www.googleapis.com/pagespeedonline/v5/runPagespeed?key=secret&url=https%3A%2F%2Fexample.com")
	require.NoError(t, err)

	got := transport.RedactURL(u)
	require.NotContains(t, got, "secret")
	require.Contains(t, got, "key=REDACTED")
	require.Contains(t, got, "url=https%3A%2F%2Fexample.com")
	require.Equal(t, "secret", u.Query().Get("key"), "original URL must not be modified")

	plain, _ := url.Parse("https://example.com/a?b=c")
	require.Equal(t, "https://example.com/a?b=c", transport.RedactURL(plain))
}

func TestWithLogger_SetsRequestIDAndRedacts(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	var seenID string
	rt := transport.WithLogger(transport.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seenID = r.Header.Get(transport.RequestIDHeader)
		require.Equal(t, seenID, r.Context().Value(transport.RequestIDKey))

		return ok(`{}`)(r)
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://psi.example/run?key=secret&url=x", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, seenID)
	require.Empty(t, req.Header.Get(transport.RequestIDHeader), "caller request must not be mutated")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, seenID, fields["requestID"])
	require.Equal(t, int64(http.StatusOK), fields["status_code"])
	require.NotContains(t, fields["url"], "secret")
}

func TestWithLogger_KeepsProvidedRequestID(t *testing.T) {
	rt := transport.WithLogger(transport.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, "abc-123", r.Header.Get(transport.RequestIDHeader))

		return ok(`{}`)(r)
	}))

	req, _ := http.NewRequest(http.MethodGet, "https://psi.example/run", nil)
	req.Header.Set(transport.RequestIDHeader, "abc-123")
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
}

func TestWithLogger_Error(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	boom := errors.New("dial tcp: no route to host")
	rt := transport.WithLogger(transport.RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	}))

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://psi.example/run", nil)
	resp, err := rt.RoundTrip(req)
	require.Nil(t, resp)
	require.ErrorIs(t, err, boom)

	entries := logs.FilterMessage("upstream request failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

type recordingObserver struct {
	statuses []int
}

func (o *recordingObserver) ObserveRequest(_ context.Context, status int, elapsed time.Duration) {
	o.statuses = append(o.statuses, status)
}

func TestWithObserver(t *testing.T) {
	obs := &recordingObserver{}
	calls := 0
	rt := transport.WithObserver(transport.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("reset")
		}

		return &http.Response{StatusCode: http.StatusTooManyRequests, Body: http.NoBody}, nil
	}), obs)

	req, _ := http.NewRequest(http.MethodGet, "https://psi.example/run", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.Error(t, err)

	require.Equal(t, []int{http.StatusTooManyRequests, 0}, obs.statuses)
}
