// Package sink formats a pipeline result for stdout and persists a copy.
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roelfdiedericks/chatextract/internal/config"
	. "github.com/roelfdiedericks/chatextract/internal/logging"
	"github.com/roelfdiedericks/chatextract/internal/paths"
	"github.com/roelfdiedericks/chatextract/internal/pipeline"
)

const (
	EndMarker       = "=== END RESULTS ==="
	fileTimeLayout  = "20060102_150405"
	resultsFileMode = 0644
)

// StartMarker returns the opening marker line for a site label.
func StartMarker(label string) string {
	return fmt.Sprintf("=== %s SEARCH RESULTS ===", label)
}

// Format wraps body in the start and end markers, separated by blank lines.
func Format(label, body string) string {
	return StartMarker(label) + "\n\n" + body + "\n\n" + EndMarker + "\n"
}

// Options configures a Sink.
type Options struct {
	Dir      string // Results directory; empty means the system temp dir
	JSONPath string // Optional JSON export of the result
	TextOnly bool   // Print bare content without markers

	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
}

// Sink writes results. Emit is called exactly once per run.
type Sink struct {
	opts Options
}

// New returns a Sink. Nil writers default to os.Stdout and os.Stderr.
func New(opts Options) *Sink {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Sink{opts: opts}
}

// Record is what the JSON export contains.
type Record struct {
	pipeline.Result
	SavedTo string `json:"savedTo,omitempty"`
}

// Emit persists res under <dir>/<site>_<YYYYMMDD_HHMMSS>.txt and reports the
// elapsed time on stderr. Successful content goes to stdout; a failed run
// writes its ERROR line to the file only. It returns the saved file path.
func (s *Sink) Emit(res pipeline.Result, label string) (string, error) {
	if label == "" {
		label = strings.ToUpper(res.Site)
	}

	body := res.Content
	if !res.Success {
		body = "ERROR: " + res.Error
	}
	block := Format(label, body)

	dir, err := paths.ResultsDir(s.opts.Dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(res.Site, s.opts.Now()))
	if err := config.AtomicWrite(path, []byte(block), resultsFileMode); err != nil {
		return "", fmt.Errorf("failed to save results: %w", err)
	}
	L_debug("sink: saved", "path", path, "success", res.Success)

	if s.opts.JSONPath != "" {
		if err := s.writeJSON(Record{Result: res, SavedTo: path}); err != nil {
			return path, err
		}
	}

	if res.Success {
		out := block
		if s.opts.TextOnly {
			out = res.Content + "\n"
		}
		if _, err := io.WriteString(s.opts.Stdout, out); err != nil {
			return path, fmt.Errorf("failed to write results: %w", err)
		}
	}

	st := newStyles(s.opts.Stderr)
	st.field(s.opts.Stderr, "Results saved to", path)
	st.field(s.opts.Stderr, "Elapsed:", fmt.Sprintf("%.2fs", res.ElapsedSeconds))
	return path, nil
}

func (s *Sink) writeJSON(rec Record) error {
	path, err := paths.ExpandTilde(s.opts.JSONPath)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := config.AtomicWrite(path, append(data, '\n'), resultsFileMode); err != nil {
		return fmt.Errorf("failed to write JSON export: %w", err)
	}
	L_debug("sink: exported JSON", "path", path)
	return nil
}

// FileName is the results file name for site at t.
func FileName(site string, t time.Time) string {
	if site == "" {
		site = "results"
	}
	return fmt.Sprintf("%s_%s.txt", strings.ToLower(site), t.Format(fileTimeLayout))
}
