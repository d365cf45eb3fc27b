package intent

import (
	"strings"
)

const (
	// Utterances of at most this many tokens that match nothing are
	// treated as a product search; short inputs are overwhelmingly
	// product names in practice.
	shortUtteranceTokens = 3
	fallbackConfidence   = 0.7
)

// Parser evaluates every registered matcher for the utterance's
// language and picks the highest-confidence category. Ties go to the
// first-registered matcher; that order is fixed per pack and
// documented there. Pure function of its inputs — no I/O, no state.
type Parser struct {
	packs map[string]*Pack
	order []string
}

func NewParser(packs ...*Pack) *Parser {
	p := &Parser{packs: make(map[string]*Pack, len(packs))}
	for _, pk := range packs {
		if _, dup := p.packs[pk.Language]; dup {
			continue
		}
		p.packs[pk.Language] = pk
		p.order = append(p.order, pk.Language)
	}
	return p
}

// Default builds a parser with every shipped language pack.
func Default() *Parser {
	return NewParser(English(), Hebrew(), Arabic())
}

// Languages lists supported language tags in registration order.
func (p *Parser) Languages() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Parse classifies a final transcript. Callers must reject empty
// transcripts before reaching here; an empty input yields Unknown.
func (p *Parser) Parse(text, language string) ParsedCommand {
	cmd := ParsedCommand{Intent: Unknown, Text: text}

	trimmed := strings.TrimSpace(text)
	pack := p.packFor(language)
	if trimmed == "" || pack == nil {
		return cmd
	}
	lowered := strings.ToLower(trimmed)

	var best *MatchResult
	bestIntent := Unknown
	for _, m := range pack.Matchers {
		res, ok := m.Match(lowered)
		if !ok {
			continue
		}
		// strictly greater: equal confidence keeps the earlier matcher
		if best == nil || res.Confidence > best.Confidence {
			r := res
			best = &r
			bestIntent = m.Intent()
		}
	}

	if best == nil {
		if len(strings.Fields(trimmed)) <= shortUtteranceTokens {
			return ParsedCommand{
				Intent:     SearchProduct,
				Entities:   Entities{Product: trimmed},
				Confidence: fallbackConfidence,
				Text:       text,
			}
		}
		return cmd
	}

	cmd.Intent = bestIntent
	cmd.Confidence = best.Confidence
	cmd.Entities = extractEntities(pack, bestIntent, lowered, best.Remainder)
	return cmd
}

// IsFarewell reports whether text matches the language's closed set of
// farewell phrases.
func (p *Parser) IsFarewell(text, language string) bool {
	pack := p.packFor(language)
	return pack != nil && pack.isFarewell(text)
}

// IsGreeting reports whether text opens with a greeting phrase.
func (p *Parser) IsGreeting(text, language string) bool {
	pack := p.packFor(language)
	return pack != nil && pack.isGreeting(text)
}

// ScrubGreeting strips a leading greeting phrase from reply text.
func (p *Parser) ScrubGreeting(text, language string) string {
	pack := p.packFor(language)
	if pack == nil {
		return text
	}
	return pack.stripGreeting(text)
}

func (p *Parser) packFor(language string) *Pack {
	if pack, ok := p.packs[language]; ok {
		return pack
	}
	// unsupported tag falls back to the first registered pack
	if len(p.order) > 0 {
		return p.packs[p.order[0]]
	}
	return nil
}
