//go:build darwin

package browser

// CheckPlatform reports whether browser scripting is available here.
func CheckPlatform() error {
	return nil
}
