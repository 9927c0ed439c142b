package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	. "github.com/roelfdiedericks/chatextract/internal/logging"
)

// MissingValue is what osascript prints when a script yields no value,
// e.g. JavaScript that returned undefined.
const MissingValue = "missing value"

// Runner executes an AppleScript program and returns its stdout.
type Runner func(ctx context.Context, script string) (string, error)

// AppleScript controls a scriptable Chromium-family browser through osascript.
type AppleScript struct {
	app     string
	timeout time.Duration
	run     Runner
}

// NewAppleScript returns a controller for the named browser application.
// It fails with PlatformUnsupportedError where osascript is unavailable.
func NewAppleScript(app string, timeout time.Duration) (*AppleScript, error) {
	if err := CheckPlatform(); err != nil {
		return nil, err
	}
	return newAppleScript(app, timeout, Osascript), nil
}

func newAppleScript(app string, timeout time.Duration, run Runner) *AppleScript {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AppleScript{app: app, timeout: timeout, run: run}
}

// Osascript runs script through `osascript -`, feeding it on stdin.
func Osascript(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, "osascript", "-")
	cmd.Stdin = strings.NewReader(script)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.New(msg)
	}

	// osascript terminates its output with a single newline
	return strings.TrimSuffix(stdout.String(), "\n"), nil
}

// execute runs one AppleScript program under the per-script timeout and maps
// host failures onto the typed errors.
func (a *AppleScript) execute(ctx context.Context, tab, script string) (string, error) {
	execCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	out, err := a.run(execCtx, script)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) || execCtx.Err() == context.DeadlineExceeded {
			L_warn("applescript: timed out", "tab", tab, "timeout", a.timeout)
			return "", &ScriptTimeoutError{Timeout: a.timeout}
		}
		return "", a.classify(tab, err.Error())
	}

	L_trace("applescript: completed", "tab", tab, "took", time.Since(start), "outLen", len(out))
	return out, nil
}

// classify turns osascript stderr into one of the typed errors.
func (a *AppleScript) classify(tab, msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "allow javascript from apple events"),
		strings.Contains(lower, "javascript through applescript is turned off"),
		strings.Contains(lower, "not authorized to send apple events"),
		strings.Contains(msg, "(-1743)"):
		return &PermissionDeniedError{Browser: a.app, Detail: msg}
	case strings.Contains(msg, "(-600)"),
		strings.Contains(lower, "isn’t running"),
		strings.Contains(lower, "isn't running"),
		strings.Contains(lower, "is not running"):
		return &HostProcessNotRunningError{Browser: a.app}
	default:
		return &ScriptExecutionError{Tab: tab, Detail: msg}
	}
}

// runningGuard aborts the program with error -600 when the browser is not
// running, instead of letting AppleScript launch it.
func (a *AppleScript) runningGuard() string {
	return fmt.Sprintf("if application %s is not running then error %s number -600\n",
		quote(a.app), quote(a.app+" is not running"))
}

// ListTabs enumerates every tab of every window.
func (a *AppleScript) ListTabs(ctx context.Context) ([]Tab, error) {
	script := a.runningGuard() + fmt.Sprintf(`set sep to character id 9
set out to ""
tell application %s
	repeat with w in windows
		set wid to id of w
		set i to 0
		repeat with t in tabs of w
			set i to i + 1
			set out to out & (wid as text) & sep & (i as text) & sep & (URL of t) & sep & (title of t) & linefeed
		end repeat
	end repeat
end tell
return out
`, quote(a.app))

	out, err := a.execute(ctx, "", script)
	if err != nil {
		return nil, err
	}
	tabs := parseTabList(out)
	L_debug("applescript: listed tabs", "browser", a.app, "count", len(tabs))
	return tabs, nil
}

// RunScript executes JavaScript in tab via `execute ... javascript`.
func (a *AppleScript) RunScript(ctx context.Context, tab Tab, js string) (string, error) {
	script := fmt.Sprintf(`tell application %s
	set w to first window whose id is %d
	return execute tab %d of w javascript %s
end tell
`, quote(a.app), tab.WindowID, tab.TabIndex, quote(js))

	return a.execute(ctx, tab.String(), script)
}

// OpenTab opens url in a new tab of the front window (creating a window if
// none exist) and returns the new tab.
func (a *AppleScript) OpenTab(ctx context.Context, url string) (Tab, error) {
	if err := ValidateStartURL(url); err != nil {
		return Tab{}, err
	}
	script := a.runningGuard() + fmt.Sprintf(`tell application %s
	if (count of windows) is 0 then make new window
	set w to front window
	make new tab at end of tabs of w with properties {URL:%s}
	set n to count of tabs of w
	set active tab index of w to n
	return ((id of w) as text) & (character id 9) & (n as text)
end tell
`, quote(a.app), quote(url))

	out, err := a.execute(ctx, "", script)
	if err != nil {
		return Tab{}, err
	}
	fields := strings.Split(strings.TrimSpace(out), "\t")
	if len(fields) != 2 {
		return Tab{}, &ScriptExecutionError{Detail: fmt.Sprintf("unexpected open-tab reply %q", out)}
	}
	wid, err1 := strconv.Atoi(fields[0])
	idx, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return Tab{}, &ScriptExecutionError{Detail: fmt.Sprintf("unexpected open-tab reply %q", out)}
	}
	tab := Tab{WindowID: wid, TabIndex: idx, URL: url}
	L_debug("applescript: opened tab", "tab", tab.String())
	return tab, nil
}

// ActivateTab makes tab the active tab of its window and raises the window.
func (a *AppleScript) ActivateTab(ctx context.Context, tab Tab) error {
	script := fmt.Sprintf(`tell application %s
	set w to first window whose id is %d
	set active tab index of w to %d
	set index of w to 1
	activate
end tell
`, quote(a.app), tab.WindowID, tab.TabIndex)

	_, err := a.execute(ctx, tab.String(), script)
	return err
}

// parseTabList parses ListTabs output: one tab per line,
// "windowID\ttabIndex\turl\ttitle". Malformed lines are skipped.
func parseTabList(out string) []Tab {
	var tabs []Tab
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 4)
		if len(fields) < 3 {
			L_debug("applescript: skipping malformed tab line", "line", line)
			continue
		}
		wid, err1 := strconv.Atoi(strings.TrimSpace(fields[0]))
		idx, err2 := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err1 != nil || err2 != nil {
			L_debug("applescript: skipping malformed tab line", "line", line)
			continue
		}
		tab := Tab{WindowID: wid, TabIndex: idx, URL: fields[2]}
		if len(fields) == 4 {
			tab.Title = fields[3]
		}
		tabs = append(tabs, tab)
	}
	return tabs
}

// quote renders s as an AppleScript string literal.
func quote(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return `"` + r.Replace(s) + `"`
}
