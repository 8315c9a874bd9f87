// Package render turns session decisions into report output: styled
// console text at one of three verbosity levels, a transient progress
// line, and the fixed 80-column plain rendering used for log files.
package render

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// PlainWidth is the fixed width used when rendering for a non-terminal
// sink, such as per-test log files.
const PlainWidth = 80

// resultReserve is the number of columns kept clear at the right edge for
// the result token and its surrounding spacing.
const resultReserve = 15

// Palette holds the process-wide styling state: the styles for structural
// lines, the terminal width, and whether the output is an interactive
// terminal at all. Construct it once at startup and pass it by reference;
// the rest of the package never consults the environment.
type Palette struct {
	Title lipgloss.Style
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Muted lipgloss.Style

	Width int
	TTY   bool
}

// NewPalette probes w for terminal capability and builds the palette.
// Styling degrades to empty escape sequences when w is not a terminal,
// when TERM designates a non-interactive terminal, or when noColor is set.
func NewPalette(w io.Writer, noColor bool) *Palette {
	p := &Palette{Width: PlainWidth}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.TTY = true
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			p.Width = tw
		}
	}

	if t := os.Getenv("TERM"); t == "dumb" || t == "" {
		noColor = true
	}
	if !p.TTY || noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
		p.Title = lipgloss.NewStyle()
		p.Pass = lipgloss.NewStyle()
		p.Fail = lipgloss.NewStyle()
		p.Muted = lipgloss.NewStyle()
		return p
	}

	p.Title = lipgloss.NewStyle().Bold(true)
	p.Pass = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	p.Fail = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	p.Muted = lipgloss.NewStyle().Faint(true)
	return p
}

// CheckLine renders a check line at the given width, padding the
// description with a dot fill so result tokens align at the result
// column. When the description is long enough to span display lines the
// pad calculation wraps to the width, so the token still lands at the
// column on its final line. style formats the result token.
func CheckLine(prefix, text, result string, width int, style func(string) string) string {
	body := prefix + "! " + text + " "
	fill := dots(runewidth.StringWidth(body), width)
	return body + fill + " " + style(result)
}

// dots returns the dot fill for a check body occupying used cells.
func dots(used, width int) string {
	avail := width - resultReserve
	if avail < 10 {
		avail = PlainWidth - resultReserve
	}
	n := avail - used%avail
	return strings.Repeat(".", n)
}

// PlainCheckLine is CheckLine at the fixed 80-column width with no
// styling, for persistent log sinks.
func PlainCheckLine(prefix, text, result string) string {
	return CheckLine(prefix, text, result, PlainWidth, func(s string) string { return s })
}

// SectionCheckText synthesizes the description used when a whole section
// is summarized as a single check line.
func SectionCheckText(where, what string) string {
	return where + "  " + what
}
