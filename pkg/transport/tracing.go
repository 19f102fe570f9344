package transport

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies spans started by WithTracing.
const tracerName = "webvitals/pkg/transport"

// WithTracing returns a middleware that wraps each request in a client span
// obtained from tp. A nil next uses http.DefaultTransport.
func WithTracing(next http.RoundTripper, tp trace.TracerProvider) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	tracer := tp.Tracer(tracerName)

	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		ctx, span := tracer.Start(r.Context(), "HTTP "+r.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.full", RedactURL(r.URL)),
				attribute.String("server.address", r.URL.Hostname()),
			))
		defer span.End()

		resp, err := next.RoundTrip(r.WithContext(ctx))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "request failed")

			return nil, err //nolint: wrapcheck
		}

		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		if resp.StatusCode >= http.StatusBadRequest {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", resp.StatusCode))
		}

		return resp, nil
	})
}
