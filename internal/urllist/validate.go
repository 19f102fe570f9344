package urllist

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate reports whether raw looks like a page the PageSpeed Insights API
// can analyze:
//   - it parses as a URL
//   - the scheme is http or https (case-insensitive)
//   - the host is non-empty, and an explicit port is numeric
//
// Validate never rewrites the URL. Lines that fail it are still audited as
// written; the API has the final word.
func Validate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("could not parse URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		return fmt.Errorf("URL %q has no scheme", raw)
	default:
		return fmt.Errorf("URL %q has unsupported scheme %q", raw, u.Scheme)
	}

	host := u.Host
	if h, port, err := net.SplitHostPort(host); err == nil {
		host = h
		if port == "" || strings.Trim(port, "0123456789") != "" {
			return fmt.Errorf("URL %q has invalid port %q", raw, port)
		}
	} // else: no explicit port, or an IPv6 literal without one
	if strings.Trim(host, "[]") == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}

	return nil
}
