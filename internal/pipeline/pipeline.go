// Package pipeline finds the chat tab, optionally submits a query, waits for
// the answer to settle and extracts it.
//
// Runs are strictly sequential and the browser tab is shared state: callers
// must not run two pipelines against the same site at once.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/roelfdiedericks/chatextract/internal/browser"
	"github.com/roelfdiedericks/chatextract/internal/cleaner"
	. "github.com/roelfdiedericks/chatextract/internal/logging"
)

// Result is the outcome of one run. It is created once and not modified.
type Result struct {
	RunID          string    `json:"runId"`
	Site           string    `json:"site"`
	Query          string    `json:"query,omitempty"`
	Success        bool      `json:"success"`
	Content        string    `json:"content"`
	Length         int       `json:"length"`
	Cleaned        bool      `json:"cleaned"`
	Retried        bool      `json:"retried"`
	SourceURL      string    `json:"sourceUrl,omitempty"`
	ElapsedSeconds float64   `json:"elapsedSeconds"`
	Timestamp      time.Time `json:"timestamp"`
	Error          string    `json:"error,omitempty"`

	// Err is the typed failure behind Error
	Err error `json:"-"`
}

// Pipeline wires the locator, injector and extractor to one controller.
type Pipeline struct {
	ctrl      browser.Controller
	locator   *Locator
	injector  *Injector
	extractor *Extractor
	now       func() time.Time
}

// New returns a Pipeline driving ctrl.
func New(ctrl browser.Controller) *Pipeline {
	return &Pipeline{
		ctrl:      ctrl,
		locator:   NewLocator(ctrl),
		injector:  NewInjector(ctrl),
		extractor: NewExtractor(ctrl),
		now:       time.Now,
	}
}

// Run executes one request. Failures are reported in the Result, never
// as partial content.
func (p *Pipeline) Run(ctx context.Context, req Request) Result {
	start := p.now()
	res := Result{
		RunID:     uuid.NewString(),
		Site:      req.Site,
		Query:     req.Query,
		Cleaned:   req.Cleaner != nil,
		Timestamp: start,
	}

	L_info("pipeline: starting", "run", res.RunID, "site", req.Site, "target", req.TargetURL, "query", req.Query != "")

	content, tab, retried, err := p.run(ctx, req)
	res.ElapsedSeconds = p.now().Sub(start).Seconds()
	res.Retried = retried
	if err != nil {
		res.Error = err.Error()
		res.Err = err
		L_error("pipeline: failed", "run", res.RunID, "error", err)
		return res
	}

	res.Success = true
	res.Content = content.String()
	res.Length = content.Len()
	res.SourceURL = tab.URL
	L_elapsed(start, "pipeline: complete", "run", res.RunID, "chars", res.Length, "retried", retried)
	return res
}

// Failed returns the Result of a run that could not start.
func Failed(req Request, err error) Result {
	return Result{
		RunID:     uuid.NewString(),
		Site:      req.Site,
		Query:     req.Query,
		Cleaned:   req.Cleaner != nil,
		Timestamp: time.Now(),
		Error:     err.Error(),
		Err:       err,
	}
}

func (p *Pipeline) run(ctx context.Context, req Request) (cleaner.Content, browser.Tab, bool, error) {
	if err := req.validate(); err != nil {
		return cleaner.Content{}, browser.Tab{}, false, err
	}

	tab, err := p.target(ctx, req)
	if err != nil {
		return cleaner.Content{}, browser.Tab{}, false, err
	}

	if req.Query != "" {
		err := p.injector.Inject(ctx, tab, req.Query, req.InputSelectors, req.SubmitDelay)
		var noInput *InputElementNotFoundError
		switch {
		case errors.As(err, &noInput):
			L_warn("pipeline: no input element, extracting existing content", "tab", tab.String())
		case err != nil:
			return cleaner.Content{}, tab, false, err
		default:
			if err := req.Waits.wait(ctx, "post-submit", req.Waits.PostSubmit); err != nil {
				return cleaner.Content{}, tab, false, err
			}
		}
	}

	content, retried, err := p.extractWithRetry(ctx, tab, req)
	return content, tab, retried, err
}

// target opens a fresh tab when asked, otherwise locates an existing one,
// and brings it to front when the controller supports that. Either way the
// page gets PostNavigation to settle before a query is typed into it.
func (p *Pipeline) target(ctx context.Context, req Request) (browser.Tab, error) {
	if req.NewTab {
		opener, ok := p.ctrl.(browser.TabOpener)
		if !ok {
			return browser.Tab{}, errors.New("browser controller cannot open tabs")
		}
		tab, err := opener.OpenTab(ctx, req.StartURL)
		if err != nil {
			return browser.Tab{}, err
		}
		if err := req.Waits.wait(ctx, "post-navigation", req.Waits.PostNavigation); err != nil {
			return browser.Tab{}, err
		}
		return tab, nil
	}

	tab, err := p.locator.Locate(ctx, req.TargetURL)
	if err != nil {
		return browser.Tab{}, err
	}
	if activator, ok := p.ctrl.(browser.TabActivator); ok {
		if err := activator.ActivateTab(ctx, tab); err != nil {
			L_warn("pipeline: could not activate tab", "tab", tab.String(), "error", err)
		}
	}
	if req.Query != "" {
		if err := req.Waits.wait(ctx, "post-activation", req.Waits.PostNavigation); err != nil {
			return browser.Tab{}, err
		}
	}
	return tab, nil
}

// extractWithRetry extracts and cleans once, and a second time after the
// retry wait when the result is shorter than MinAcceptableLength. An empty
// page counts as short. At most one retry happens; a still-short retry
// result is accepted.
func (p *Pipeline) extractWithRetry(ctx context.Context, tab browser.Tab, req Request) (cleaner.Content, bool, error) {
	content, err := p.attempt(ctx, tab, req)

	var empty *EmptyPageError
	if err != nil && !errors.As(err, &empty) {
		return cleaner.Content{}, false, err
	}
	short := err != nil || content.Len() < req.MinAcceptableLength
	if !short || !req.RetryOnShort {
		return content, false, err
	}

	L_info("pipeline: content short, retrying once", "chars", content.Len(), "min", req.MinAcceptableLength)
	if werr := req.Waits.wait(ctx, "retry", req.Waits.Retry); werr != nil {
		return cleaner.Content{}, true, werr
	}

	again, rerr := p.attempt(ctx, tab, req)
	if rerr != nil {
		if err != nil {
			return cleaner.Content{}, true, rerr
		}
		L_warn("pipeline: retry failed, keeping first result", "error", rerr)
		return content, true, nil
	}
	return again, true, nil
}

// attempt runs extractor then cleaner. Content that cleans down to nothing
// is an EmptyPageError.
func (p *Pipeline) attempt(ctx context.Context, tab browser.Tab, req Request) (cleaner.Content, error) {
	raw, err := p.extractor.Extract(ctx, tab, req.Format)
	if err != nil {
		return cleaner.Content{}, err
	}

	c := req.Cleaner
	if c == nil {
		c = cleaner.Passthrough{}
	}
	content := c.Clean(raw.Text)
	L_debug("pipeline: cleaned", "raw", len([]rune(raw.Text)), "clean", content.Len(), "lines", len(content.Lines))

	if len(content.Lines) == 0 {
		return cleaner.Content{}, &EmptyPageError{Tab: tab.String(), Reason: "nothing left after cleaning"}
	}
	return content, nil
}
