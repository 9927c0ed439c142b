package sink

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	secondaryColor = lipgloss.Color("245") // Gray
	successColor   = lipgloss.Color("82")  // Green
	errorColor     = lipgloss.Color("196") // Red
)

// styles render the stderr report. The renderer is bound to the writer, so
// output that is not a terminal stays plain text.
type styles struct {
	label lipgloss.Style
	value lipgloss.Style
	err   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		label: r.NewStyle().Foreground(secondaryColor),
		value: r.NewStyle().Foreground(successColor),
		err:   r.NewStyle().Foreground(errorColor).Bold(true),
	}
}

func (s styles) field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", s.label.Render(label), s.value.Render(value))
}

// Diagnostic writes an ERROR line to w.
func Diagnostic(w io.Writer, msg string) {
	st := newStyles(w)
	fmt.Fprintf(w, "%s %s\n", st.err.Render("ERROR:"), msg)
}
