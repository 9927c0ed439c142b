//go:build !darwin

package browser

import "runtime"

// CheckPlatform returns PlatformUnsupportedError outside macOS; osascript is
// the only scripting bridge.
func CheckPlatform() error {
	return &PlatformUnsupportedError{GOOS: runtime.GOOS}
}
