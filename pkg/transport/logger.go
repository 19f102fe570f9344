package transport

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"webvitals/pkg/logger"
)

// RoundTripperFunc allows using a function as an http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls f(r).
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// CtxKey is a string-based type used for storing values in request contexts.
// It avoids collisions with other packages' context keys.
type CtxKey string

const (
	// RequestIDKey is the context key under which the current request ID is stored.
	RequestIDKey CtxKey = "requestID"

	// RequestIDHeader carries the request ID on the outgoing request.
	RequestIDHeader = "X-Request-Id"
)

// redactedParams are query parameters never written to logs.
var redactedParams = []string{"key"} //nolint: gochecknoglobals

// RedactURL returns u as a string with credential query parameters masked.
func RedactURL(u *url.URL) string {
	q := u.Query()
	changed := false
	for _, p := range redactedParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return u.String()
	}

	c := *u
	c.RawQuery = q.Encode()

	return c.String()
}

// WithLogger returns a middleware that attaches a request ID to the outgoing
// request and its context, then logs a structured entry once the response
// headers arrive or the request fails. A nil next uses
// http.DefaultTransport.
func WithLogger(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		ctx := r.Context()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = context.WithValue(ctx, RequestIDKey, requestID)
		ctx = logger.WithFields(ctx, zap.String(string(RequestIDKey), requestID))
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			ctx = logger.WithFields(ctx, zap.String("traceID", sc.TraceID().String()))
		}

		r = r.Clone(ctx)
		r.Header.Set(RequestIDHeader, requestID)

		start := time.Now()
		resp, err := next.RoundTrip(r)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("url", RedactURL(r.URL)),
			zap.Float64("latency", time.Since(start).Seconds()),
		}
		if err != nil {
			logger.Warn(ctx, "upstream request failed", append(fields, zap.Error(err))...)

			return nil, err //nolint: wrapcheck
		}

		logger.Debug(ctx, "upstream request", append(fields, zap.Int("status_code", resp.StatusCode))...)

		return resp, nil
	})
}
