// Package linkedin records the intent to use a profile URL as supporting
// context. No network fetch happens here: LinkedIn blocks anonymous scraping
// and fetching would require credentials this tool does not handle. The agent
// is instead prompted to ask the user for the relevant details directly.
package linkedin

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// StatusReceived marks a URL that was accepted and recorded.
const StatusReceived = "received"

// Ack acknowledges a submitted profile URL.
type Ack struct {
	Status string
	URL    string
}

// Accept validates the URL shape and returns an acknowledgment.
func Accept(rawURL string) (*Ack, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, errors.New("url is required")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return nil, errors.New("url host is required")
	}

	return &Ack{Status: StatusReceived, URL: trimmed}, nil
}
