// Package junit serializes closed test sections as a JUnit XML report,
// the interchange format most CI systems ingest.
package junit

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/wvtest/wvrun/pkg/session"
)

// testSuites is the top-level XML element.
type testSuites struct {
	XMLName   xml.Name  `xml:"testsuites"`
	TestSuite testSuite `xml:"testsuite"`
}

type testSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	TestCase []*testCase `xml:"testcase"`
}

type testCase struct {
	Name      string   `xml:"name,attr"`
	ClassName string   `xml:"classname,attr"`
	Time      string   `xml:"time,attr"`
	Failure   *failure `xml:"failure,omitempty"`
}

type failure struct {
	Message string `xml:"message,attr"`
	Details string `xml:",cdata"`
}

// Writer collects section records and writes them out once the run ends.
// It implements session.Recorder.
type Writer struct {
	suite testSuite
	done  bool
}

// NewWriter returns a collector for the given suite name.
func NewWriter(name string) *Writer {
	return &Writer{suite: testSuite{Name: name}}
}

// Section records one closed section, in closing order.
func (w *Writer) Section(r session.Record) {
	tc := &testCase{
		Name:      r.What,
		ClassName: r.Where,
		// The decimal point distinguishes seconds from nanosecond notation.
		Time: fmt.Sprintf("%.3f", r.Duration.Seconds()),
	}
	if r.Failed {
		tc.Failure = &failure{
			Message: "one or more checks failed",
			Details: strings.Join(r.Transcript, "\n"),
		}
	}
	w.suite.TestCase = append(w.suite.TestCase, tc)
}

// Totals records the aggregate counts from the session tally.
func (w *Writer) Totals(tests, failures int) {
	w.suite.Tests = tests
	w.suite.Failures = failures
	w.done = true
}

// WriteFile marshals the collected report to path. It is an error to call
// WriteFile before the session has finished.
func (w *Writer) WriteFile(path string) error {
	if !w.done {
		return fmt.Errorf("junit: writing report before the run finished")
	}
	data, err := xml.MarshalIndent(testSuites{TestSuite: w.suite}, "", "  ")
	if err != nil {
		return fmt.Errorf("junit: marshaling report: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("junit: writing %s: %w", path, err)
	}
	return nil
}
