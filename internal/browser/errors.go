package browser

import (
	"fmt"
	"time"
)

// ScriptExecutionError means the injected script threw, the target tab went
// away mid-call, or the scripting host reported a failure.
type ScriptExecutionError struct {
	Tab    string // Tab description, empty for browser-level scripts
	Detail string
}

func (e *ScriptExecutionError) Error() string {
	if e.Tab == "" {
		return fmt.Sprintf("script execution failed: %s", e.Detail)
	}
	return fmt.Sprintf("script execution failed in %s: %s", e.Tab, e.Detail)
}

// ScriptTimeoutError means the scripting host did not answer in time.
type ScriptTimeoutError struct {
	Timeout time.Duration
}

func (e *ScriptTimeoutError) Error() string {
	return fmt.Sprintf("script timed out after %s", e.Timeout)
}

// PermissionDeniedError means the OS or the browser refused scripting access.
type PermissionDeniedError struct {
	Browser string
	Detail  string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied while scripting %s: %s\n"+
		"Enable %s > View > Developer > Allow JavaScript from Apple Events, and grant your terminal "+
		"access under System Settings > Privacy & Security > Automation.", e.Browser, e.Detail, e.Browser)
}

// HostProcessNotRunningError means the browser application is not running.
type HostProcessNotRunningError struct {
	Browser string
}

func (e *HostProcessNotRunningError) Error() string {
	return fmt.Sprintf("%s is not running; start it and open the chat page first", e.Browser)
}

// PlatformUnsupportedError means this OS has no supported scripting bridge.
type PlatformUnsupportedError struct {
	GOOS string
}

func (e *PlatformUnsupportedError) Error() string {
	return fmt.Sprintf("platform %s is not supported: browser scripting requires macOS (osascript)", e.GOOS)
}
