package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/roelfdiedericks/chatextract/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeController serves fixed tabs; every tab reports recency 100 and
// returns the same page text.
type fakeController struct {
	tabs     []browser.Tab
	text     string
	injected int
}

func (f *fakeController) ListTabs(ctx context.Context) ([]browser.Tab, error) {
	return f.tabs, nil
}

func (f *fakeController) RunScript(ctx context.Context, tab browser.Tab, script string) (string, error) {
	switch {
	case strings.Contains(script, "performance.timeOrigin"):
		return "100", nil
	case strings.Contains(script, "KeyboardEvent"):
		f.injected++
		return "typed", nil
	case strings.Contains(script, "innerText"):
		return f.text, nil
	}
	return "", nil
}

func factory(ctrl browser.Controller) ControllerFactory {
	return func(app string, timeout time.Duration) (browser.Controller, error) {
		return ctrl, nil
	}
}

type invocation struct {
	code   int
	stdout string
	stderr string
	dir    string
}

func invoke(t *testing.T, ctrl ControllerFactory, args ...string) invocation {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run(append(args, "--results-dir", dir), &stdout, &stderr, ctrl)
	return invocation{code: code, stdout: stdout.String(), stderr: stderr.String(), dir: dir}
}

func resultFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func deepseekTab() []browser.Tab {
	return []browser.Tab{{WindowID: 1, TabIndex: 1, URL: "https://chat.deepseek.com/a/chat/s/1"}}
}

func TestHelpExitsZero(t *testing.T) {
	res := invoke(t, factory(&fakeController{}), "--help")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Usage: chatextract")
	assert.Contains(t, res.stdout, "--clean")
	assert.Empty(t, resultFiles(t, res.dir))
}

func TestVersion(t *testing.T) {
	res := invoke(t, factory(&fakeController{}), "--version")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, version)
}

func TestUnknownOptionExitsOne(t *testing.T) {
	res := invoke(t, factory(&fakeController{}), "--bogus")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "--bogus")
}

func TestExtractionOnly(t *testing.T) {
	ctrl := &fakeController{tabs: deepseekTab(), text: strings.Repeat("答案内容", 150)}
	res := invoke(t, factory(ctrl))

	require.Equal(t, 0, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "=== DEEPSEEK SEARCH RESULTS ===\n\n"))
	assert.True(t, strings.HasSuffix(res.stdout, "\n\n=== END RESULTS ===\n"))
	assert.Equal(t, 0, ctrl.injected)

	files := resultFiles(t, res.dir)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0], "deepseek_"))
	assert.Contains(t, res.stderr, "Elapsed:")
}

func TestCleanFlag(t *testing.T) {
	ctrl := &fakeController{
		tabs: deepseekTab(),
		text: "新对话\n这是一条长度超过二十个字符的示例内容\n1.2.3.4",
	}
	res := invoke(t, factory(ctrl), "--clean", "--no-retry")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "=== DEEPSEEK SEARCH RESULTS ===\n\n这是一条长度超过二十个字符的示例内容\n\n=== END RESULTS ===\n", res.stdout)
}

func TestQuerySubmitted(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "chatextract.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[wait]\npost_navigation = \"1ms\"\n"), 0o600))

	ctrl := &fakeController{tabs: deepseekTab(), text: strings.Repeat("a", 600)}
	res := invoke(t, factory(ctrl), "--config", cfgPath, "--wait", "1ms", "--text-only", "谷爱凌最喜欢吃什么")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, 1, ctrl.injected)
	assert.Equal(t, strings.Repeat("a", 600)+"\n", res.stdout)
}

func TestNoTabExitsOne(t *testing.T) {
	ctrl := &fakeController{tabs: []browser.Tab{{WindowID: 1, TabIndex: 1, URL: "https://example.com/"}}}
	res := invoke(t, factory(ctrl), "--site", "doubao")

	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "doubao.com/chat")

	files := resultFiles(t, res.dir)
	require.Len(t, files, 1)
	saved, err := os.ReadFile(filepath.Join(res.dir, files[0]))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "ERROR:")
}

func TestPlatformUnsupportedExitsOne(t *testing.T) {
	unsupported := func(app string, timeout time.Duration) (browser.Controller, error) {
		return nil, &browser.PlatformUnsupportedError{GOOS: "plan9"}
	}
	res := invoke(t, unsupported)

	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "plan9")
}

func TestUnknownSite(t *testing.T) {
	res := invoke(t, factory(&fakeController{}), "--site", "nope")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "deepseek")
	assert.Empty(t, resultFiles(t, res.dir))
}

func TestBadFormat(t *testing.T) {
	res := invoke(t, factory(&fakeController{}), "--format", "pdf")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "pdf")
}

func TestListSites(t *testing.T) {
	res := invoke(t, factory(&fakeController{}), "--list-sites")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "deepseek")
	assert.Contains(t, res.stdout, "doubao.com/chat")
}

func TestConfigFileSite(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "chatextract.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
site = "kimi"

[retry]
disabled = true

[sites.kimi]
url_contains = "kimi.com/chat"
start_url = "https://www.kimi.com/"
`), 0600))

	ctrl := &fakeController{
		tabs: []browser.Tab{{WindowID: 1, TabIndex: 1, URL: "https://www.kimi.com/chat/xyz"}},
		text: "short answer",
	}
	res := invoke(t, factory(ctrl), "--config", cfgPath)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "=== KIMI SEARCH RESULTS ===")
	assert.Contains(t, res.stdout, "short answer")
}

func TestJSONOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.json")
	ctrl := &fakeController{tabs: deepseekTab(), text: strings.Repeat("x", 600)}
	res := invoke(t, factory(ctrl), "--output", out)

	require.Equal(t, 0, res.code, res.stderr)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"success": true`)
	assert.Contains(t, string(data), `"site": "deepseek"`)
}
