package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roelfdiedericks/chatextract/internal/cleaner"
	. "github.com/roelfdiedericks/chatextract/internal/logging"
)

// Format selects how page content is captured.
type Format string

const (
	FormatText     Format = "text"     // document.body.innerText
	FormatArticle  Format = "article"  // readability over the rendered HTML
	FormatMarkdown Format = "markdown" // rendered HTML converted to markdown
)

// ParseFormat validates a format name; empty means FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatArticle, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, article or markdown)", s)
	}
}

// Request is the immutable input to one pipeline run.
type Request struct {
	Site      string // Site profile name
	TargetURL string // Tab URL substring
	StartURL  string // Opened when NewTab is set
	NewTab    bool

	Query          string // Empty means extraction only
	InputSelectors []string
	SubmitDelay    time.Duration // In-page delay between typing and Enter

	Format  Format
	Cleaner cleaner.Cleaner // nil means raw text passes through

	RetryOnShort        bool
	MinAcceptableLength int // In characters

	Waits WaitPolicy
}

func (r *Request) validate() error {
	if strings.TrimSpace(r.TargetURL) == "" {
		return fmt.Errorf("target URL substring is required")
	}
	if r.NewTab && r.StartURL == "" {
		return fmt.Errorf("site %s has no start URL to open", r.Site)
	}
	return nil
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// WaitPolicy holds the settle delays. There is no observable "generation
// finished" signal, so these are fixed heuristics backed by the retry.
type WaitPolicy struct {
	PostNavigation time.Duration // After opening a tab, before typing
	PostSubmit     time.Duration // After submitting, before extracting
	Retry          time.Duration // Before the short-content retry
	Sleep          SleepFunc     // nil = Sleep
}

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoWait returns immediately; for tests and dry runs.
func NoWait(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func (w WaitPolicy) wait(ctx context.Context, phase string, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	sleep := w.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	L_debug("pipeline: waiting", "phase", phase, "duration", d)
	return sleep(ctx, d)
}
