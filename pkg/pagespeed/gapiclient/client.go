// Package gapiclient provides a pagespeed.Client implementation backed by the
// generated Google API client for PageSpeed Insights v5.
//
// The generated response types drop zero values when re-encoded, so an audit
// whose numericValue is 0 looks the same as one without numericValue. Both
// are reported as an audit without a numeric value.
package gapiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	pagespeedonline "google.golang.org/api/pagespeedonline/v5"

	"webvitals/pkg/pagespeed"
	"webvitals/pkg/pagespeed/psiapi"
	"webvitals/pkg/serrors"
)

// Client fulfills the pagespeed.Client interface through
// pagespeedonline.Service.
type Client struct {
	svc    *pagespeedonline.Service
	apiKey string
}

// New creates a Client sending requests through httpClient. Extra options,
// such as option.WithEndpoint, are passed to the service.
func New(ctx context.Context, httpClient *http.Client, apiKey string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	svc, err := pagespeedonline.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create pagespeedonline service: %w", err)
	}

	return &Client{svc: svc, apiKey: apiKey}, nil
}

// Run requests a performance-only analysis of req.URL. Error responses are
// reported like psiapi.Client does: a *pagespeed.StatusError with the raw
// body, wrapped in the matching serrors kind.
func (c *Client) Run(ctx context.Context, req pagespeed.Request) (*pagespeed.Report, error) {
	resp, err := c.svc.Pagespeedapi.Runpagespeed(req.URL).
		Strategy(strings.ToUpper(string(req.Strategy))).
		Category(strings.ToUpper(pagespeed.CategoryPerformance)).
		Context(ctx).
		Do(googleapi.QueryParameter("key", c.apiKey))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, serrors.Wrap(serrors.KindFromStatus(gerr.Code),
				&pagespeed.StatusError{StatusCode: gerr.Code, Body: gerr.Body}, "")
		}

		// *url.Error embeds the full request URL, API key included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			if u, perr := url.Parse(uerr.URL); perr == nil {
				u.RawQuery = ""
				uerr.URL = u.String()
			}
		}

		return nil, fmt.Errorf("could not send request: %w", err)
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("could not encode response: %w", err)
	}

	report, err := psiapi.DecodeReport(b)
	if err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}

	return report, nil
}

// Ensure Client conforms to the pagespeed.Client interface at compile time.
var _ pagespeed.Client = (*Client)(nil)
