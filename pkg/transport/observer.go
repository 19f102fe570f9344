package transport

import (
	"context"
	"net/http"
	"time"
)

// Observer receives the outcome of each request. status is 0 when the
// request failed before a response arrived.
type Observer interface {
	ObserveRequest(ctx context.Context, status int, elapsed time.Duration)
}

// WithObserver returns a middleware that reports every round trip to obs.
// A nil next uses http.DefaultTransport.
func WithObserver(next http.RoundTripper, obs Observer) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		obs.ObserveRequest(r.Context(), status, time.Since(start))

		return resp, err //nolint: wrapcheck
	})
}
