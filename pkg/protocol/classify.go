package protocol

import (
	"fmt"
	"regexp"
	"strings"
)

// Shape patterns, tried in this order. Check must come first: a check
// description may itself contain the word Testing, and Plain matches
// everything so it goes last.
const (
	checkBody   = `!\s*(.*?)\s+(\S+)$`
	testingBody = `Testing "(.*)" in (.*):$`
	tagBody     = `wvtest:\s*(.*)$`
)

// Classifier turns raw lines into classified Lines. The zero value is not
// usable; build one with NewClassifier.
//
// A classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	check   *regexp.Regexp
	testing *regexp.Regexp
	tag     *regexp.Regexp
}

// NewClassifier compiles the shape patterns. prefix is an optional regular
// expression matched (and captured) ahead of each structured shape, used to
// tolerate transport-added prefixes such as multiplexed stream tags. An
// empty prefix matches the empty string. An invalid prefix is an error.
func NewClassifier(prefix string) (*Classifier, error) {
	build := func(body string) (*regexp.Regexp, error) {
		return regexp.Compile(fmt.Sprintf("^(%s)%s", prefix, body))
	}
	check, err := build(checkBody)
	if err != nil {
		return nil, fmt.Errorf("compiling line prefix %q: %w", prefix, err)
	}
	testing, err := build(testingBody)
	if err != nil {
		return nil, fmt.Errorf("compiling line prefix %q: %w", prefix, err)
	}
	tag, err := build(tagBody)
	if err != nil {
		return nil, fmt.Errorf("compiling line prefix %q: %w", prefix, err)
	}
	return &Classifier{check: check, testing: testing, tag: tag}, nil
}

// MustClassifier is NewClassifier for known-good prefixes; it panics on a
// compile error.
func MustClassifier(prefix string) *Classifier {
	c, err := NewClassifier(prefix)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify strips trailing line-ending whitespace from raw and returns the
// first shape that matches, in the order Check, Testing, Tag, Plain.
// It never fails: Plain matches any string, including the empty string.
func (c *Classifier) Classify(raw string) Line {
	raw = strings.TrimRight(raw, " \t\r\n")

	if m := c.check.FindStringSubmatch(raw); m != nil {
		return Line{Kind: KindCheck, Prefix: m[1], Text: m[2], Result: m[3]}
	}
	if m := c.testing.FindStringSubmatch(raw); m != nil {
		return Line{Kind: KindTesting, Prefix: m[1], What: m[2], Where: m[3]}
	}
	if m := c.tag.FindStringSubmatch(raw); m != nil {
		return Line{Kind: KindTag, Prefix: m[1], Tag: m[2]}
	}
	return Line{Kind: KindPlain, Text: raw}
}
