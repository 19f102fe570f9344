// Package urllist reads the list of URLs to audit.
package urllist

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"webvitals/pkg/logger"
	"webvitals/pkg/serrors"
)

// Load reads a newline-delimited URL list. Each line is trimmed, blank lines
// are skipped, order and duplicates are kept. Lines that do not look like
// http(s) URLs are logged and kept verbatim.
//
// A list without any URL is an ErrBadRequest: a report needs at least one row.
func Load(ctx context.Context, path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open URL list: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var urls []string
	scanner := bufio.NewScanner(file)
	// long tracking URLs can exceed the default 64KiB token size
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := Validate(line); err != nil {
			logger.Warn(ctx, "suspicious URL in list, auditing it anyway",
				zap.String("path", path), zap.Int("line", lineNo), zap.Error(err))
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read URL list: %w", err)
	}

	if len(urls) == 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "no URLs in %s", path)
	}

	return urls, nil
}
