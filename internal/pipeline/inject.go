package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roelfdiedericks/chatextract/internal/browser"
	"github.com/roelfdiedericks/chatextract/internal/config"
	. "github.com/roelfdiedericks/chatextract/internal/logging"
)

// Injector types a query into the page and triggers the page's own submit.
type Injector struct {
	ctrl browser.Controller
}

// NewInjector returns an Injector over ctrl.
func NewInjector(ctrl browser.Controller) *Injector {
	return &Injector{ctrl: ctrl}
}

// Inject types query into the first element matching selectors (in
// priority order) and schedules an Enter key press after delay.
// It returns InputElementNotFoundError when nothing matched.
func (i *Injector) Inject(ctx context.Context, tab browser.Tab, query string, selectors []string, delay time.Duration) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query must not be empty")
	}
	if len(selectors) == 0 {
		selectors = config.DefaultInputSelectors()
	}

	js, err := injectJS(query, selectors, delay)
	if err != nil {
		return err
	}

	out, err := i.ctrl.RunScript(ctx, tab, js)
	if err != nil {
		return err
	}

	switch strings.TrimSpace(out) {
	case injectTyped:
		L_info("injector: query submitted", "tab", tab.String(), "chars", len([]rune(query)))
		return nil
	case injectNoInput:
		return &InputElementNotFoundError{Tab: tab.String(), Selectors: selectors}
	default:
		return &browser.ScriptExecutionError{Tab: tab.String(), Detail: fmt.Sprintf("unexpected injection reply %q", out)}
	}
}
