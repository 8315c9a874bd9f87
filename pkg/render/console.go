package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/wvtest/wvrun/pkg/protocol"
	"github.com/wvtest/wvrun/pkg/session"
)

// Verbosity selects how much of the stream reaches the console, strictly
// ordered from least to most output.
type Verbosity int

const (
	// Summary shows only the one-line-per-section outcome.
	Summary Verbosity = iota
	// Normal shows one-line outcomes for passing sections and the full
	// transcript for failing ones.
	Normal
	// Verbose echoes every line immediately as it arrives.
	Verbose
)

func (v Verbosity) String() string {
	switch v {
	case Summary:
		return "summary"
	case Verbose:
		return "verbose"
	default:
		return "normal"
	}
}

// progressGlyphs is the rotating in-flight indicator.
var progressGlyphs = []string{"-", "\\", "|", "/"}

// Console renders session events to a terminal or pipe. It implements
// session.Emitter.
//
// A write failure (for example a broken pipe on the display device)
// disables the console for the remainder of the run; other sinks are
// unaffected.
type Console struct {
	out  io.Writer
	pal  *Palette
	verb Verbosity

	dead     bool
	pending  *protocol.Line
	glyph    int
	progress bool
}

// NewConsole builds a console emitter writing to out.
func NewConsole(out io.Writer, pal *Palette, verb Verbosity) *Console {
	return &Console{out: out, pal: pal, verb: verb}
}

// StartSection notes the in-flight section for the progress preview.
func (c *Console) StartSection(t protocol.Line) {
	c.pending = &t
	c.drawProgress()
}

// EchoLine renders one appended line. In verbose mode every line is
// printed immediately, with structural lines stylized; otherwise the line
// only advances the transient progress indicator.
func (c *Console) EchoLine(l protocol.Line) {
	if c.verb != Verbose {
		c.glyph++
		c.drawProgress()
		return
	}
	c.write(c.styled(l) + "\n")
}

// SectionPassed emits the one-line passing outcome in summary and normal
// modes. In verbose mode the section's lines were already streamed live.
func (c *Console) SectionPassed(t protocol.Line) {
	c.pending = nil
	if c.verb == Verbose {
		return
	}
	c.clearProgress()
	c.writeOutcome(t, protocol.ResultOK)
}

// SectionFailed flushes the buffered transcript in normal mode, or a
// single failing-check line in summary mode.
func (c *Console) SectionFailed(t protocol.Line, transcript []protocol.Line) {
	c.pending = nil
	switch c.verb {
	case Verbose:
		// Already streamed live.
	case Normal:
		c.clearProgress()
		for _, l := range transcript {
			c.write(c.styled(l) + "\n")
		}
	case Summary:
		c.clearProgress()
		c.writeOutcome(t, protocol.ResultFailed)
	}
}

// Tally prints the final summary line.
func (c *Console) Tally(tests, failures int) {
	c.clearProgress()
	c.write(session.Tally(tests, failures) + "\n")
}

// writeOutcome prints the synthesized per-section check line.
func (c *Console) writeOutcome(t protocol.Line, result string) {
	text := SectionCheckText(t.Where, t.What)
	c.write(CheckLine("", text, result, c.pal.Width, c.resultStyle(result)) + "\n")
}

func (c *Console) resultStyle(result string) func(string) string {
	style := c.pal.Fail
	if result == protocol.ResultOK {
		style = c.pal.Pass
	}
	return func(s string) string { return style.Render(s) }
}

// styled renders one line for verbose echo: Testing titles bold, check
// results colored, tag annotations muted, plain lines untouched.
func (c *Console) styled(l protocol.Line) string {
	switch l.Kind {
	case protocol.KindTesting:
		return l.Prefix + c.pal.Title.Render(`Testing "`+l.What+`" in `+l.Where+`:`)
	case protocol.KindCheck:
		return CheckLine(l.Prefix, l.Text, l.Result, c.pal.Width, c.resultStyle(l.Result))
	case protocol.KindTag:
		return l.Prefix + c.pal.Muted.Render("wvtest: "+l.Tag)
	default:
		return l.String()
	}
}

// drawProgress repaints the transient status line: a rotating glyph plus
// the pending section's outcome preview, truncated to the terminal width.
// It is a no-op off-terminal and in verbose mode.
func (c *Console) drawProgress() {
	if !c.pal.TTY || c.verb == Verbose || c.pending == nil {
		return
	}
	preview := CheckLine("", SectionCheckText(c.pending.Where, c.pending.What), "", c.pal.Width,
		func(s string) string { return s })
	line := progressGlyphs[c.glyph%len(progressGlyphs)] + " " + preview
	if lipgloss.Width(line) >= c.pal.Width {
		line = truncate(line, c.pal.Width-1)
	}
	c.write("\r\x1b[K" + line)
	c.progress = true
}

// clearProgress wipes the status line so it never corrupts real output.
func (c *Console) clearProgress() {
	if !c.progress {
		return
	}
	c.progress = false
	c.write("\r\x1b[K")
}

func (c *Console) write(s string) {
	if c.dead {
		return
	}
	if _, err := io.WriteString(c.out, s); err != nil {
		c.dead = true
	}
}

// truncate cuts s to at most width display cells.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	var b []rune
	used := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if used+rw > width {
			break
		}
		b = append(b, r)
		used += rw
	}
	return string(b)
}
