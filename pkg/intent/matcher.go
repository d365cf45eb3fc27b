package intent

import (
	"regexp"
	"strings"
)

// MatchResult carries the confidence a matcher assigns to an utterance
// and the text left over once the command phrase is stripped.
type MatchResult struct {
	Confidence float64
	Remainder  string
}

// Matcher scores one intent category against an utterance. Regex packs
// implement it today; a statistical classifier can be swapped in later
// without touching the parser contract.
type Matcher interface {
	Intent() Intent
	Match(text string) (MatchResult, bool)
}

type regexMatcher struct {
	intent     Intent
	re         *regexp.Regexp
	confidence float64
}

// NewRegexMatcher compiles pattern once at registration. Patterns are
// matched against lowercased input.
func NewRegexMatcher(in Intent, pattern string, confidence float64) Matcher {
	return &regexMatcher{
		intent:     in,
		re:         regexp.MustCompile(pattern),
		confidence: confidence,
	}
}

func (m *regexMatcher) Intent() Intent { return m.intent }

func (m *regexMatcher) Match(text string) (MatchResult, bool) {
	if !m.re.MatchString(text) {
		return MatchResult{}, false
	}
	remainder := collapseSpaces(m.re.ReplaceAllString(text, " "))
	return MatchResult{Confidence: m.confidence, Remainder: remainder}, true
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
