package sink

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roelfdiedericks/chatextract/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)

func newTestSink(t *testing.T, opts Options) (*Sink, *bytes.Buffer, *bytes.Buffer, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	dir := t.TempDir()
	opts.Dir = dir
	opts.Stdout = &stdout
	opts.Stderr = &stderr
	opts.Now = func() time.Time { return fixedNow }
	return New(opts), &stdout, &stderr, dir
}

func TestFormat(t *testing.T) {
	got := Format("DEEPSEEK", "line one\n\nline two")
	assert.Equal(t, "=== DEEPSEEK SEARCH RESULTS ===\n\nline one\n\nline two\n\n=== END RESULTS ===\n", got)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "deepseek_20260314_092653.txt", FileName("DeepSeek", fixedNow))
	assert.Equal(t, "results_20260314_092653.txt", FileName("", fixedNow))
}

func TestEmitSuccess(t *testing.T) {
	s, stdout, stderr, dir := newTestSink(t, Options{})

	res := pipeline.Result{Site: "deepseek", Success: true, Content: "answer text", Length: 11, ElapsedSeconds: 12.345}
	path, err := s.Emit(res, "DEEPSEEK")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "deepseek_20260314_092653.txt"), path)
	want := "=== DEEPSEEK SEARCH RESULTS ===\n\nanswer text\n\n=== END RESULTS ===\n"
	assert.Equal(t, want, stdout.String())

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(saved))

	assert.Contains(t, stderr.String(), "Elapsed: 12.35s")
	assert.Contains(t, stderr.String(), path)
}

func TestEmitFailureWritesErrorFileOnly(t *testing.T) {
	s, stdout, stderr, _ := newTestSink(t, Options{})

	res := pipeline.Result{Site: "doubao", Error: `no open tab matches "doubao.com/chat"`}
	path, err := s.Emit(res, "DOUBAO")
	require.NoError(t, err)

	assert.Empty(t, stdout.String())
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(saved), `ERROR: no open tab matches "doubao.com/chat"`)
	assert.Contains(t, string(saved), "=== DOUBAO SEARCH RESULTS ===")
	assert.Contains(t, stderr.String(), "Elapsed:")
}

func TestEmitTextOnly(t *testing.T) {
	s, stdout, _, _ := newTestSink(t, Options{TextOnly: true})

	path, err := s.Emit(pipeline.Result{Site: "deepseek", Success: true, Content: "bare"}, "")
	require.NoError(t, err)
	assert.Equal(t, "bare\n", stdout.String())

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "=== DEEPSEEK SEARCH RESULTS ===", "the file keeps the markers")
}

func TestEmitJSONExport(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "out", "result.json")
	s, _, _, _ := newTestSink(t, Options{JSONPath: jsonPath})

	res := pipeline.Result{RunID: "r1", Site: "deepseek", Query: "q", Success: true, Content: "c", Length: 1, Cleaned: true}
	path, err := s.Emit(res, "DEEPSEEK")
	require.NoError(t, err)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "r1", got["runId"])
	assert.Equal(t, true, got["success"])
	assert.Equal(t, true, got["cleaned"])
	assert.Equal(t, path, got["savedTo"])
	assert.NotContains(t, got, "Err")
}

func TestEmitLeavesNoTempFiles(t *testing.T) {
	s, _, _, dir := newTestSink(t, Options{})
	_, err := s.Emit(pipeline.Result{Site: "deepseek", Success: true, Content: "x"}, "DEEPSEEK")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "deepseek_20260314_092653.txt", entries[0].Name())
}
