// Package cleaner turns raw page text into answer text by dropping
// navigation, menu and pagination noise line by line.
//
// The filter only sees surface text. It knows nothing about the page's DOM,
// which is not a stable contract.
package cleaner

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Separator joins cleaned lines into the output text.
const Separator = "\n\n"

// Defaults for Options left at zero.
const (
	DefaultMinLineLength = 20
	DefaultMaxLines      = 100
)

// numericToken matches IP addresses and other purely numeric/dotted tokens
// left behind by copied UI chrome. It is checked before the length rule, so
// a digit run is dropped however long it is.
var numericToken = regexp.MustCompile(`^[0-9.:]+$`)

// Cleaner reduces raw page text to content lines.
type Cleaner interface {
	Clean(raw string) Content
}

// Content is the cleaned, order-preserving sequence of lines.
type Content struct {
	Lines []string
}

// String joins the lines with Separator.
func (c Content) String() string {
	return strings.Join(c.Lines, Separator)
}

// Len is the character count of String.
func (c Content) Len() int {
	return utf8.RuneCountInString(c.String())
}

// Options configures a LineFilter.
type Options struct {
	Denylist      []string // Exact line matches, compared after trimming
	DenyPatterns  []string // Regular expressions matched against the trimmed line
	MinLineLength int      // Lines longer than this are kept even without letters
	MaxLines      int      // Output cap
	Focus         string   // When set, drop lines before the first one containing it
}

// LineFilter is the default Cleaner.
type LineFilter struct {
	deny     map[string]struct{}
	patterns []*regexp.Regexp
	minLen   int
	maxLines int
	focus    string
}

// New compiles opts into a LineFilter.
func New(opts Options) (*LineFilter, error) {
	f := &LineFilter{
		deny:     make(map[string]struct{}, len(opts.Denylist)),
		minLen:   opts.MinLineLength,
		maxLines: opts.MaxLines,
		focus:    strings.ToLower(strings.TrimSpace(opts.Focus)),
	}
	if f.minLen <= 0 {
		f.minLen = DefaultMinLineLength
	}
	if f.maxLines <= 0 {
		f.maxLines = DefaultMaxLines
	}
	for _, label := range opts.Denylist {
		if label = strings.TrimSpace(label); label != "" {
			f.deny[label] = struct{}{}
		}
	}
	for _, p := range opts.DenyPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid deny pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Clean applies, in order: denylist, numeric tokens, blank lines, the
// short-decorative rule, optional focus, and the line cap.
func (f *LineFilter) Clean(raw string) Content {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if f.denied(line) {
			continue
		}
		// before the length rule: long numeric runs still go
		if numericToken.MatchString(line) {
			continue
		}
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) <= f.minLen && !hasAlnum(line) {
			continue
		}
		lines = append(lines, line)
	}

	if f.focus != "" {
		for i, line := range lines {
			if strings.Contains(strings.ToLower(line), f.focus) {
				lines = lines[i:]
				break
			}
		}
	}

	if len(lines) > f.maxLines {
		lines = lines[:f.maxLines]
	}
	return Content{Lines: lines}
}

func (f *LineFilter) denied(line string) bool {
	if _, ok := f.deny[line]; ok {
		return true
	}
	for _, re := range f.patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// hasAlnum reports whether s has a letter or digit in any script, so CJK
// text counts as content.
func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Passthrough is the Cleaner used without --clean: it keeps the raw text as
// a single block.
type Passthrough struct{}

// Clean returns raw unmodified as one "line".
func (Passthrough) Clean(raw string) Content {
	if raw == "" {
		return Content{}
	}
	return Content{Lines: []string{raw}}
}
