// Package session tracks the state of one WvTest run: the ordered log of
// classified lines, the currently open test section, and the aggregate
// pass/fail tallies.
//
// A Session is not safe for concurrent use. The supervisor and file
// readers feed it from a single goroutine; the emitter and recorder are
// invoked synchronously from that same call path.
package session

import (
	"fmt"
	"time"

	"github.com/wvtest/wvrun/pkg/protocol"
)

// Emitter receives rendering decisions as the session advances. The
// session decides when something is reportable; the emitter decides how
// (or whether) to show it at the active verbosity.
type Emitter interface {
	// StartSection is called when a new section opens.
	StartSection(t protocol.Line)
	// EchoLine is called for every appended line, in order, while its
	// section is in flight.
	EchoLine(l protocol.Line)
	// SectionPassed is called when a section closes with no failing checks.
	SectionPassed(t protocol.Line)
	// SectionFailed is called when a section closes with at least one
	// failing check. transcript is the section's buffered lines in order.
	SectionFailed(t protocol.Line, transcript []protocol.Line)
	// Tally is called exactly once, from Done, with the final counts.
	Tally(tests, failures int)
}

// Record is the per-section summary handed to a Recorder when a section
// closes. Transcript is only populated for failed sections.
type Record struct {
	Where      string
	What       string
	Duration   time.Duration
	Failed     bool
	Transcript []string
}

// Recorder consumes section records for structured report output. Sections
// arrive in closing order; Totals is called exactly once at the end.
type Recorder interface {
	Section(r Record)
	Totals(tests, failures int)
}

// Session is the mutable aggregate state for one run.
type Session struct {
	emitters []Emitter
	recorder Recorder
	now      func() time.Time

	tests         int
	testFailures  int
	checks        int
	checkFailures int

	current      *protocol.Line
	currentFails int
	started      time.Time
	buffer       []protocol.Line
	implicit     *protocol.Line
	finished     bool
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder attaches a structured-report collaborator.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithClock overrides the wall clock used for section durations.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session reporting to the given emitters.
func New(emitters []Emitter, opts ...Option) *Session {
	s := &Session{emitters: emitters, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tests returns the number of sections opened so far.
func (s *Session) Tests() int { return s.tests }

// TestFailures returns the number of sections closed with failures.
func (s *Session) TestFailures() int { return s.testFailures }

// Checks returns the number of check lines seen so far.
func (s *Session) Checks() int { return s.checks }

// CheckFailures returns the number of failing check lines seen so far.
func (s *Session) CheckFailures() int { return s.checkFailures }

// Failed reports whether at least one section has failed.
func (s *Session) Failed() bool { return s.testFailures > 0 }

// SetImplicitTitle arms a pending section title, used when input begins
// without an explicit Testing marker. The title is promoted to a real
// section start by the first appended line that is neither blank nor
// itself a Testing line; an explicit Testing line discards it.
func (s *Session) SetImplicitTitle(t protocol.Line) {
	s.implicit = &t
}

// Append feeds one classified line into the session. This is the single
// mutating entry point for stream content.
func (s *Session) Append(l protocol.Line) {
	if s.implicit != nil {
		switch {
		case l.Kind == protocol.KindTesting:
			// The explicit title wins.
			s.implicit = nil
		case l.Blank():
			// Blank lines neither promote nor clear the pending title.
		default:
			// Promote as if the title had appeared in the stream: the
			// promoted line takes the full Testing path, buffer and echo
			// included, so transcripts and verbose output carry the header.
			t := *s.implicit
			s.implicit = nil
			s.Append(t)
		}
	}

	if l.Kind == protocol.KindTesting {
		s.closeSection()
		s.openSection(l)
	}

	if l.Kind == protocol.KindCheck {
		s.checks++
		if !l.OK() {
			s.checkFailures++
			s.currentFails++
		}
	}

	s.buffer = append(s.buffer, l)
	for _, e := range s.emitters {
		e.EchoLine(l)
	}
}

// Done finalizes the run: it closes any still-open section and emits the
// final tally line. Calling Done with no open section only emits the tally.
func (s *Session) Done() {
	s.closeSection()
	s.implicit = nil
	if s.finished {
		return
	}
	s.finished = true
	for _, e := range s.emitters {
		e.Tally(s.tests, s.testFailures)
	}
	if s.recorder != nil {
		s.recorder.Totals(s.tests, s.testFailures)
	}
}

// Tally formats the final summary line with correct pluralization.
func Tally(tests, failures int) string {
	return fmt.Sprintf("WvTest: %d test%s, %d failure%s.",
		tests, plural(tests), failures, plural(failures))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func (s *Session) openSection(t protocol.Line) {
	s.tests++
	s.current = &t
	s.currentFails = 0
	s.started = s.now()
	s.buffer = s.buffer[:0]
	for _, e := range s.emitters {
		e.StartSection(t)
	}
}

func (s *Session) closeSection() {
	if s.current == nil {
		return
	}
	t := *s.current
	failed := s.currentFails > 0
	if failed {
		s.testFailures++
		for _, e := range s.emitters {
			e.SectionFailed(t, s.buffer)
		}
	} else {
		for _, e := range s.emitters {
			e.SectionPassed(t)
		}
	}
	if s.recorder != nil {
		s.recorder.Section(s.record(t, failed))
	}
	s.current = nil
	s.currentFails = 0
	s.buffer = s.buffer[:0]
}

func (s *Session) record(t protocol.Line, failed bool) Record {
	r := Record{
		Where:    t.Where,
		What:     t.What,
		Duration: s.now().Sub(s.started),
		Failed:   failed,
	}
	if failed {
		r.Transcript = make([]string, len(s.buffer))
		for i, l := range s.buffer {
			r.Transcript[i] = l.String()
		}
	}
	return r
}
