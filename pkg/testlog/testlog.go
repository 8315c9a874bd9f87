// Package testlog writes one log file per test section. Files use the
// fixed 80-column non-colored rendering so they read the same everywhere.
package testlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/wvtest/wvrun/pkg/protocol"
	"github.com/wvtest/wvrun/pkg/render"
)

// Dir is a per-test log sink rooted at a directory. It implements
// session.Emitter: a file opens when a section starts and closes, with
// the section's outcome appended, when the section closes — on every exit
// path, pass or fail.
//
// Write errors are logged and disable the current file only; the run
// continues.
type Dir struct {
	root   string
	logger *log.Logger

	f *os.File
}

// NewDir creates root if needed and returns the sink.
func NewDir(root string, logger *log.Logger) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", root, err)
	}
	return &Dir{root: root, logger: logger}, nil
}

// FileName derives the log file name for a section from its location and
// its lowercased, space-to-underscore-substituted title.
func FileName(where, what string) string {
	name := strings.ToLower(where + "_" + what)
	name = strings.ReplaceAll(name, " ", "_")
	// A location like t/sub/db.t must not escape the log directory.
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.ReplaceAll(name, "/", "_")
	return name + ".log"
}

// StartSection opens the section's log file.
func (d *Dir) StartSection(t protocol.Line) {
	d.close()
	path := filepath.Join(d.root, FileName(t.Where, t.What))
	f, err := os.Create(path)
	if err != nil {
		d.logger.Warn("cannot open per-test log", "path", path, "err", err)
		return
	}
	d.f = f
	d.writeLine(t)
}

// EchoLine appends one line of the in-flight section.
func (d *Dir) EchoLine(l protocol.Line) {
	if l.Kind == protocol.KindTesting {
		// Already written by StartSection.
		return
	}
	d.writeLine(l)
}

// SectionPassed records the outcome and closes the file.
func (d *Dir) SectionPassed(t protocol.Line) {
	d.outcome(t, protocol.ResultOK)
}

// SectionFailed records the outcome and closes the file. The transcript
// was already written line by line as it arrived.
func (d *Dir) SectionFailed(t protocol.Line, _ []protocol.Line) {
	d.outcome(t, protocol.ResultFailed)
}

// Tally closes any file still open at end of stream.
func (d *Dir) Tally(_, _ int) {
	d.close()
}

func (d *Dir) outcome(t protocol.Line, result string) {
	d.write(render.PlainCheckLine("", render.SectionCheckText(t.Where, t.What), result) + "\n")
	d.close()
}

func (d *Dir) writeLine(l protocol.Line) {
	if l.Kind == protocol.KindCheck {
		d.write(render.PlainCheckLine(l.Prefix, l.Text, l.Result) + "\n")
		return
	}
	d.write(l.String() + "\n")
}

func (d *Dir) write(s string) {
	if d.f == nil {
		return
	}
	if _, err := d.f.WriteString(s); err != nil {
		d.logger.Warn("per-test log write failed", "path", d.f.Name(), "err", err)
		d.close()
	}
}

func (d *Dir) close() {
	if d.f == nil {
		return
	}
	if err := d.f.Close(); err != nil {
		d.logger.Warn("closing per-test log", "path", d.f.Name(), "err", err)
	}
	d.f = nil
}
