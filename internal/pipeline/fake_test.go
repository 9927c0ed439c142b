package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/roelfdiedericks/chatextract/internal/browser"
)

// fakeBrowser is an in-memory browser.Controller. Page text is keyed by tab
// URL; successive extractions consume the list and repeat its last entry.
type fakeBrowser struct {
	mu sync.Mutex

	tabs    []browser.Tab
	listErr error
	recency map[string]string // URL -> recency reply; missing = script error
	texts   map[string][]string
	html    map[string]string
	textErr error
	noInput bool

	textCalls    int
	recencyCalls []string
	injected     []string
	opened       []string
	activated    []browser.Tab
}

func (f *fakeBrowser) ListTabs(ctx context.Context) ([]browser.Tab, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]browser.Tab(nil), f.tabs...), nil
}

func (f *fakeBrowser) RunScript(ctx context.Context, tab browser.Tab, script string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case script == recencyJS:
		f.recencyCalls = append(f.recencyCalls, tab.URL)
		reply, ok := f.recency[tab.URL]
		if !ok {
			return "", &browser.ScriptExecutionError{Tab: tab.String(), Detail: "recency script threw"}
		}
		return reply, nil
	case script == innerTextJS:
		f.textCalls++
		if f.textErr != nil {
			return "", f.textErr
		}
		seq := f.texts[tab.URL]
		if len(seq) == 0 {
			return "", nil
		}
		reply := seq[0]
		if len(seq) > 1 {
			f.texts[tab.URL] = seq[1:]
		}
		return reply, nil
	case script == outerHTMLJS:
		return f.html[tab.URL], nil
	case strings.Contains(script, "KeyboardEvent"):
		f.injected = append(f.injected, script)
		if f.noInput {
			return injectNoInput, nil
		}
		return injectTyped, nil
	}
	return "", errors.New("unexpected script")
}

// openingBrowser adds browser.TabOpener and browser.TabActivator.
type openingBrowser struct {
	*fakeBrowser
}

func (f openingBrowser) OpenTab(ctx context.Context, url string) (browser.Tab, error) {
	f.opened = append(f.opened, url)
	tab := browser.Tab{WindowID: 99, TabIndex: 1, URL: url}
	return tab, nil
}

func (f openingBrowser) ActivateTab(ctx context.Context, tab browser.Tab) error {
	f.activated = append(f.activated, tab)
	return nil
}

// sleepRecorder is a SleepFunc that records requested durations.
type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}
