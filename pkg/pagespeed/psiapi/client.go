// Package psiapi provides a pagespeed.Client implementation backed by the
// public PageSpeed Insights v5 REST API.
package psiapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"webvitals/pkg/pagespeed"
	"webvitals/pkg/serrors"
)

// DefaultEndpoint is the runPagespeed method of the v5 API.
const DefaultEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// Client talks to the PageSpeed Insights API and fulfills the
// pagespeed.Client interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs HTTP requests to the API
	endpoint   string       // endpoint is the runPagespeed URL
	apiKey     string       // apiKey is the Google API key sent as the key parameter
}

// Run requests a performance-only analysis of req.URL.
// Any status other than 200 yields a *pagespeed.StatusError carrying the raw
// body, wrapped in the serrors kind matching the status. A body that is not
// valid JSON yields a decode error.
func (c *Client) Run(ctx context.Context, req pagespeed.Request) (*pagespeed.Report, error) {
	// https://developers.google.com/speed/docs/insights/rest/v5/pagespeedapi/runpagespeed
	q := url.Values{}
	q.Set("url", req.URL)
	q.Set("key", c.apiKey)
	q.Set("strategy", string(req.Strategy))
	q.Set("category", pagespeed.CategoryPerformance)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// *url.Error embeds the full request URL, API key included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = c.endpoint
		}

		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, serrors.Wrap(serrors.KindFromStatus(resp.StatusCode),
			&pagespeed.StatusError{StatusCode: resp.StatusCode, Body: string(b)}, "")
	}

	// successful
	report, err := DecodeReport(b)
	if err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}

	return report, nil
}

// Ensure Client conforms to the pagespeed.Client interface at compile time.
var _ pagespeed.Client = (*Client)(nil)

// New constructs a Client that uses the provided http.Client, endpoint and
// API key. An empty endpoint selects DefaultEndpoint.
func New(httpClient *http.Client, endpoint, apiKey string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}
