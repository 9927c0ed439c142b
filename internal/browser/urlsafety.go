package browser

import (
	"fmt"
	"net/url"
	"strings"

	. "github.com/roelfdiedericks/chatextract/internal/logging"
)

// URLSafetyError is a start URL the controller refuses to open.
type URLSafetyError struct {
	URL    string
	Reason string
}

func (e *URLSafetyError) Error() string {
	return fmt.Sprintf("refusing to open %q: %s", e.URL, e.Reason)
}

// ValidateStartURL checks a URL before it is handed to the browser.
// Only absolute http/https URLs with a host are accepted.
func ValidateStartURL(raw string) error {
	if strings.ContainsAny(raw, "\r\n\t") {
		return &URLSafetyError{URL: raw, Reason: "control characters in URL"}
	}
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return &URLSafetyError{URL: raw, Reason: fmt.Sprintf("invalid URL: %v", err)}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return &URLSafetyError{URL: raw, Reason: fmt.Sprintf("scheme '%s' not allowed, only http/https", parsed.Scheme)}
	}
	if parsed.Hostname() == "" {
		return &URLSafetyError{URL: raw, Reason: "empty hostname"}
	}

	L_trace("urlsafety: start URL passed validation", "url", raw)
	return nil
}
