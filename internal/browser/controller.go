// Package browser drives an already running desktop browser through OS-level
// scripting. It enumerates open tabs and executes JavaScript inside them;
// there is no debugging-protocol connection.
package browser

import (
	"context"
	"fmt"
)

// Tab identifies one open document. Tabs are snapshots: they are never
// cached across runs because the user can close or navigate them at any time.
type Tab struct {
	WindowID int    `json:"windowId"`
	TabIndex int    `json:"tabIndex"` // 1-based, in window order
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`

	// LastAccess is an approximate last-use time in epoch milliseconds.
	// HasLastAccess is false when the recency check failed.
	LastAccess    float64 `json:"lastAccess,omitempty"`
	HasLastAccess bool    `json:"-"`
}

func (t Tab) String() string {
	return fmt.Sprintf("window %d tab %d (%s)", t.WindowID, t.TabIndex, t.URL)
}

// Controller is the capability the extraction pipeline needs from a browser.
type Controller interface {
	// ListTabs returns every open tab in window-then-tab order.
	ListTabs(ctx context.Context) ([]Tab, error)

	// RunScript executes a JavaScript expression in tab and returns its value
	// as a string. An empty string is a valid result.
	RunScript(ctx context.Context, tab Tab, script string) (string, error)
}

// TabOpener is implemented by controllers that can open a new tab.
type TabOpener interface {
	OpenTab(ctx context.Context, url string) (Tab, error)
}

// TabActivator is implemented by controllers that can bring a tab to front.
type TabActivator interface {
	ActivateTab(ctx context.Context, tab Tab) error
}
