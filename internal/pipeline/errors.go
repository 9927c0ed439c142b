package pipeline

import (
	"fmt"
	"strings"
)

// TabNotFoundError means no open tab URL contains the target substring.
type TabNotFoundError struct {
	Target  string
	Scanned int
}

func (e *TabNotFoundError) Error() string {
	return fmt.Sprintf("no open tab matches %q (%d tabs scanned); open the chat page in the browser and retry", e.Target, e.Scanned)
}

// InputElementNotFoundError means the page had no element to type the query
// into. The pipeline treats it as a no-op and proceeds to extraction.
type InputElementNotFoundError struct {
	Tab       string
	Selectors []string
}

func (e *InputElementNotFoundError) Error() string {
	return fmt.Sprintf("no input element in %s (tried %s)", e.Tab, strings.Join(e.Selectors, ", "))
}

// EmptyPageError means extraction produced nothing usable.
type EmptyPageError struct {
	Tab    string
	Reason string
}

func (e *EmptyPageError) Error() string {
	return fmt.Sprintf("empty page content from %s: %s", e.Tab, e.Reason)
}
