package pipeline

import (
	"context"
	"strconv"
	"strings"

	"github.com/roelfdiedericks/chatextract/internal/browser"
	. "github.com/roelfdiedericks/chatextract/internal/logging"
)

// Locator picks the tab to work on among all open tabs.
type Locator struct {
	ctrl browser.Controller
}

// NewLocator returns a Locator over ctrl.
func NewLocator(ctrl browser.Controller) *Locator {
	return &Locator{ctrl: ctrl}
}

// Locate returns the most recently used tab whose URL contains target.
// Several matching tabs are common after repeated runs; the one with the
// highest recency wins, a failed recency check ranks below any known value,
// and the first tab seen wins ties.
func (l *Locator) Locate(ctx context.Context, target string) (browser.Tab, error) {
	tabs, err := l.ctrl.ListTabs(ctx)
	if err != nil {
		return browser.Tab{}, err
	}

	var best browser.Tab
	found := false
	candidates := 0
	for _, tab := range tabs {
		if !strings.Contains(tab.URL, target) {
			continue
		}
		candidates++

		tab = l.stampRecency(ctx, tab)
		if err := ctx.Err(); err != nil {
			return browser.Tab{}, err
		}

		if !found || moreRecent(tab, best) {
			best = tab
			found = true
		}
	}

	if !found {
		return browser.Tab{}, &TabNotFoundError{Target: target, Scanned: len(tabs)}
	}

	L_debug("locator: selected tab", "tab", best.String(), "candidates", candidates,
		"lastAccess", best.LastAccess, "known", best.HasLastAccess)
	return best, nil
}

// stampRecency fills LastAccess. Failures of any kind leave the tab "unknown".
func (l *Locator) stampRecency(ctx context.Context, tab browser.Tab) browser.Tab {
	out, err := l.ctrl.RunScript(ctx, tab, recencyJS)
	if err != nil {
		L_debug("locator: recency check failed", "tab", tab.String(), "error", err)
		return tab
	}
	ts, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		L_debug("locator: recency reply unparseable", "tab", tab.String(), "reply", out)
		return tab
	}
	tab.LastAccess = ts
	tab.HasLastAccess = true
	return tab
}

// moreRecent reports whether a strictly outranks b. A known timestamp
// always beats an unknown one.
func moreRecent(a, b browser.Tab) bool {
	if !a.HasLastAccess {
		return false
	}
	if !b.HasLastAccess {
		return true
	}
	return a.LastAccess > b.LastAccess
}
