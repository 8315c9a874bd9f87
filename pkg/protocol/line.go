// Package protocol implements the WvTest line grammar.
//
// A WvTest stream is newline-delimited text. Three line shapes carry
// structured meaning; everything else is plain output from the program
// under test:
//
//	Testing "open database" in t/db.t:
//	! t/db.t:40  connection established  ok
//	wvtest: skipping slow cases
//
// Classification is total: any line that matches none of the structured
// shapes is a Plain line.
package protocol

import "fmt"

// ResultOK is the result token that marks a passing check. Any other
// non-empty token is a failure.
const ResultOK = "ok"

// ResultFailed is the conventional failure token used for synthesized
// checks (section summaries, watchdog and exit-status failures).
const ResultFailed = "FAILED"

// Kind identifies the shape of a classified line.
type Kind int

const (
	// KindPlain is free-form output; the catch-all shape.
	KindPlain Kind = iota
	// KindTesting opens a new test section.
	KindTesting
	// KindCheck is a single pass/fail assertion result.
	KindCheck
	// KindTag is an out-of-band "wvtest:" annotation.
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindTesting:
		return "testing"
	case KindCheck:
		return "check"
	case KindTag:
		return "tag"
	default:
		return "plain"
	}
}

// Line is one classified line of WvTest output. Kind selects which fields
// are meaningful:
//
//	KindPlain:   Text
//	KindTesting: What, Where
//	KindCheck:   Text, Result
//	KindTag:     Tag
//
// Prefix holds any transport-added prefix matched ahead of the structured
// shapes (empty unless the classifier was built with a prefix pattern).
// It is preserved verbatim when the line is re-rendered.
type Line struct {
	Kind   Kind
	Prefix string

	Text   string // plain text, or check description
	What   string // section title
	Where  string // section location
	Result string // check result token
	Tag    string // tag text
}

// NewTesting builds a section-opening line.
func NewTesting(what, where string) Line {
	return Line{Kind: KindTesting, What: what, Where: where}
}

// NewCheck builds a check line with the given description and result token.
func NewCheck(text, result string) Line {
	return Line{Kind: KindCheck, Text: text, Result: result}
}

// NewPlain builds a free-form line.
func NewPlain(text string) Line {
	return Line{Kind: KindPlain, Text: text}
}

// OK reports whether a check line passed. It is false for every
// non-check line.
func (l Line) OK() bool {
	return l.Kind == KindCheck && l.Result == ResultOK
}

// Blank reports whether l is a plain line with no text. Blank lines do
// not promote a pending implicit title.
func (l Line) Blank() bool {
	return l.Kind == KindPlain && l.Text == ""
}

// String renders the canonical wire form of the line. Re-classifying the
// result yields the original field values for the three structured shapes.
func (l Line) String() string {
	switch l.Kind {
	case KindTesting:
		return fmt.Sprintf("%sTesting \"%s\" in %s:", l.Prefix, l.What, l.Where)
	case KindCheck:
		return fmt.Sprintf("%s! %s %s", l.Prefix, l.Text, l.Result)
	case KindTag:
		return fmt.Sprintf("%swvtest: %s", l.Prefix, l.Tag)
	default:
		return l.Prefix + l.Text
	}
}
