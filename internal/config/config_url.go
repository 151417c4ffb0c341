// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package config

import (
	"fmt"
	"net/url"
)

// validateWebSocketURL validates that a URL can be dialed as a WebSocket endpoint.
// Paths and query parameters are allowed; endpoints commonly carry a token.
func validateWebSocketURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "ws" && parsedURL.Scheme != "wss" {
		return fmt.Errorf("%s scheme must be ws or wss, got: %q", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	return nil
}

// RedactURL returns rawURL with userinfo and query values masked, for logging.
// Unparseable input is replaced entirely.
func RedactURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "[invalid url]"
	}
	if parsedURL.User != nil {
		parsedURL.User = url.User("REDACTED")
	}
	if parsedURL.RawQuery != "" {
		q := parsedURL.Query()
		for key := range q {
			q.Set(key, "REDACTED")
		}
		parsedURL.RawQuery = q.Encode()
	}
	return parsedURL.String()
}
