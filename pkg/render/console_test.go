package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wvtest/wvrun/pkg/protocol"
	"github.com/wvtest/wvrun/pkg/session"
)

// plainPalette is a deterministic no-terminal palette for tests.
func plainPalette(width int) *Palette {
	style := lipgloss.NewStyle()
	return &Palette{Title: style, Pass: style, Fail: style, Muted: style, Width: width}
}

func feed(s *session.Session, raw ...string) {
	c := protocol.MustClassifier("")
	for _, r := range raw {
		s.Append(c.Classify(r))
	}
}

func TestConsole_When_SummaryMode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	console := NewConsole(&buf, plainPalette(80), Summary)
	s := session.New([]session.Emitter{console})

	feed(s,
		`Testing "A" in loc:`,
		"! check one ok",
		`Testing "B" in loc:`,
		"! check two FAILED",
	)
	s.Done()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "! loc  A "))
	assert.True(t, strings.HasSuffix(lines[0], " ok"))
	assert.True(t, strings.HasPrefix(lines[1], "! loc  B "))
	assert.True(t, strings.HasSuffix(lines[1], " FAILED"))
	assert.Equal(t, "WvTest: 2 tests, 1 failure.", lines[2])

	// No raw transcript in summary mode.
	assert.NotContains(t, buf.String(), "check one")
	assert.NotContains(t, buf.String(), "check two")
}

func TestConsole_When_NormalModeFlushesFailingTranscript(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	console := NewConsole(&buf, plainPalette(80), Normal)
	s := session.New([]session.Emitter{console})

	feed(s,
		`Testing "A" in loc:`,
		"! check one ok",
		`Testing "B" in loc:`,
		"some diagnostic output",
		"! check two FAILED",
	)
	s.Done()

	out := buf.String()
	// Passing section: one-line outcome only.
	assert.NotContains(t, out, "check one")
	assert.Contains(t, out, "! loc  A ")
	// Failing section: the full transcript.
	assert.Contains(t, out, `Testing "B" in loc:`)
	assert.Contains(t, out, "some diagnostic output")
	assert.Contains(t, out, "check two")
}

func TestConsole_When_VerboseModeEchoesEverything(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	console := NewConsole(&buf, plainPalette(80), Verbose)
	s := session.New([]session.Emitter{console})

	feed(s,
		`Testing "A" in loc:`,
		"plain output",
		"wvtest: note",
		"! check one ok",
	)
	s.Done()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, `Testing "A" in loc:`, lines[0])
	assert.Equal(t, "plain output", lines[1])
	assert.Equal(t, "wvtest: note", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "! check one "))
	assert.True(t, strings.HasSuffix(lines[3], " ok"))
	// No extra outcome line for the passing section in verbose mode.
	assert.Equal(t, "WvTest: 1 test, 0 failures.", lines[4])
}

func TestConsole_When_VerboseTagLine_UsesMutedStyle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	pal := plainPalette(80)
	pal.Muted = lipgloss.NewStyle().Transform(strings.ToUpper)
	console := NewConsole(&buf, pal, Verbose)
	s := session.New([]session.Emitter{console})

	feed(s, `Testing "A" in loc:`, "wvtest: note")

	assert.Contains(t, buf.String(), "WVTEST: NOTE\n")
}

func TestCheckLine_ResultColumnAligns(t *testing.T) {
	t.Parallel()

	noStyle := func(s string) string { return s }
	short := CheckLine("", "a", "ok", 80, noStyle)
	long := CheckLine("", "a considerably longer description", "ok", 80, noStyle)

	// The dot fill ends at the same column for both.
	assert.Equal(t, strings.LastIndex(short, ". "), strings.LastIndex(long, ". "))
	assert.True(t, strings.HasSuffix(short, " ok"))
	assert.True(t, strings.HasSuffix(long, " ok"))
}

func TestCheckLine_When_TextSpansDisplayLines(t *testing.T) {
	t.Parallel()

	noStyle := func(s string) string { return s }
	text := strings.Repeat("x", 100)
	line := CheckLine("", text, "ok", 80, noStyle)

	// The pad calculation wraps: the fill is still short of a full row.
	fill := strings.TrimSuffix(strings.TrimPrefix(line, "! "+text+" "), " ok")
	assert.NotEmpty(t, fill)
	assert.Less(t, len(fill), 80-resultReserve+1)
	assert.Equal(t, strings.Repeat(".", len(fill)), fill)
}

func TestPlainCheckLine_IsFixedWidthAndUnstyled(t *testing.T) {
	t.Parallel()

	line := PlainCheckLine("", "logged check", "ok")
	assert.NotContains(t, line, "\x1b[")
	assert.True(t, strings.HasSuffix(line, " ok"))
}

// errWriter fails every write after the first.
type errWriter struct{ writes int }

func (w *errWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > 1 {
		return 0, errors.New("broken pipe")
	}
	return len(p), nil
}

func TestConsole_When_WriteFails_DisablesSink(t *testing.T) {
	t.Parallel()

	w := &errWriter{}
	console := NewConsole(w, plainPalette(80), Summary)
	s := session.New([]session.Emitter{console})

	feed(s,
		`Testing "A" in loc:`,
		`Testing "B" in loc:`,
		`Testing "C" in loc:`,
	)
	s.Done()

	// One successful write, one failing write, then the sink goes quiet.
	assert.Equal(t, 2, w.writes)
}

func TestConsole_ProgressLine_OnTerminalOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	pal := plainPalette(40)
	pal.TTY = true
	console := NewConsole(&buf, pal, Summary)
	s := session.New([]session.Emitter{console})

	feed(s, `Testing "section in flight" in loc:`, "! c ok")

	out := buf.String()
	// Transient status line: carriage return + erase, then the preview.
	assert.Contains(t, out, "\r\x1b[K")
	assert.Contains(t, out, "section in flight")

	s.Done()
	// The status line is cleared immediately before the real output.
	tail := buf.String()[strings.LastIndex(buf.String(), "\r\x1b[K"):]
	assert.True(t, strings.HasPrefix(tail, "\r\x1b[K! loc  section in flight "))
	assert.True(t, strings.HasSuffix(tail, "WvTest: 1 test, 0 failures.\n"))
}

func TestTruncate_RespectsWidth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "abc", truncate("abc", 10))
}
