// Package transport contains http.RoundTripper middlewares wrapped around the
// PageSpeed Insights HTTP client.
//
// Provided middlewares:
//   - WithLogger: Tags each outgoing request with a request ID and logs status and latency,
//     with the API key redacted from the logged URL.
//   - WithObserver: Reports status and latency of each request to an Observer (metrics).
//   - WithTracing: Wraps each request in an OpenTelemetry client span.
package transport
