package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStartURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string // substring to look for in error
	}{
		{"https", "https://chat.deepseek.com/", false, ""},
		{"http with port", "http://localhost:3000/chat", false, ""},
		{"upper-case scheme", "HTTPS://www.doubao.com/chat/", false, ""},

		{"javascript scheme", "javascript:alert(1)", true, "scheme"},
		{"file scheme", "file:///etc/passwd", true, "scheme"},
		{"data scheme", "data:text/html,<h1>hi</h1>", true, "scheme"},
		{"no scheme", "chat.deepseek.com", true, "scheme"},
		{"empty", "", true, "scheme"},
		{"empty host", "https:///path", true, "empty hostname"},
		{"newline", "https://chat.deepseek.com/\nx", true, "control"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStartURL(tt.url)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var safety *URLSafetyError
			require.ErrorAs(t, err, &safety)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestOpenTabRejectsUnsafeURL(t *testing.T) {
	r := &scriptedRunner{}
	a := newAppleScript("Google Chrome", 0, r.run)

	_, err := a.OpenTab(t.Context(), "javascript:alert(1)")
	var safety *URLSafetyError
	require.ErrorAs(t, err, &safety)
	assert.Empty(t, r.scripts, "nothing reaches osascript")
}
