package intent

import (
	"regexp"
	"strings"
)

type dietaryEntry struct {
	phrase string // surface form, lowercased
	tag    string // canonical tag, language independent
}

// Pack bundles the matchers and vocabulary for one language.
// Matcher declaration order is the tie-break priority: when two
// categories score the same confidence the first-registered wins.
// This ordering is deliberate, not incidental — dietary filters are
// registered ahead of price filters because dietary phrasing is the
// more specific signal.
type Pack struct {
	Language string
	Matchers []Matcher

	dietary    []dietaryEntry
	greetingRe *regexp.Regexp
	farewellRe *regexp.Regexp
	vendorRe   *regexp.Regexp // optional, capture group 1 is the vendor
}

// DietaryTags returns every canonical tag whose surface phrase occurs
// in text. Multiple tags may match a single utterance.
func (p *Pack) DietaryTags(text string) []string {
	var tags []string
	for _, d := range p.dietary {
		if strings.Contains(text, d.phrase) {
			tags = append(tags, d.tag)
		}
	}
	return tags
}

// Vendor extracts a vendor mention, if the language pack defines one.
func (p *Pack) Vendor(text string) string {
	if p.vendorRe == nil {
		return ""
	}
	if m := p.vendorRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func (p *Pack) isGreeting(text string) bool {
	return p.greetingRe.MatchString(strings.ToLower(text))
}

func (p *Pack) isFarewell(text string) bool {
	return p.farewellRe.MatchString(strings.ToLower(text))
}

// stripGreeting removes a leading greeting phrase from reply text.
// Used as a scrub step once a session has already introduced itself.
func (p *Pack) stripGreeting(text string) string {
	loc := p.greetingRe.FindStringIndex(strings.ToLower(text))
	if loc == nil || loc[0] > 2 {
		return text
	}
	rest := strings.TrimLeft(text[loc[1]:], " \t,.!-—")
	if rest == "" {
		return text
	}
	return rest
}
