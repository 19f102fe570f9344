package main

import (
	"context"
	"net/http"

	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"

	"webvitals/internal/config"
	"webvitals/pkg/pagespeed"
	"webvitals/pkg/pagespeed/gapiclient"
	"webvitals/pkg/pagespeed/psiapi"
	"webvitals/pkg/transport"
)

// newPageSpeedClient builds the PSI client for the configured backend. Every
// upstream call is traced and logged and, when obs is non-nil, reported to it.
func newPageSpeedClient(ctx context.Context, cfg *config.Config, obs transport.Observer) (pagespeed.Client, error) {
	rt := transport.WithLogger(http.DefaultTransport)
	rt = transport.WithTracing(rt, otel.GetTracerProvider())
	if obs != nil {
		rt = transport.WithObserver(rt, obs)
	}
	httpClient := &http.Client{Transport: rt, Timeout: cfg.PSI.Timeout}

	if cfg.PSI.Backend == config.BackendGoogle {
		return gapiclient.New(ctx, httpClient, cfg.PSI.APIKey)
	}

	return psiapi.New(httpClient, cfg.Endpoint(), cfg.PSI.APIKey), nil
}

// overrideString replaces *dst with the value of a flag the user set.
func overrideString(flags *pflag.FlagSet, name, value string, dst *string) {
	if flags.Changed(name) {
		*dst = value
	}
}
