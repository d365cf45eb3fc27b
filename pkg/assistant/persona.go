package assistant

import (
	"fmt"
	"strings"
)

const personaPrompt = `You are a grocery shopping assistant on a voice line.
Answer in at most two short sentences, plain speech, no markdown or lists.
Answer in the language tagged %q. Do not open with a greeting.
If a concrete product request hides in the question, name the product plainly.
You may end with a line "suggestions: a | b" holding up to two short follow-ups.`

// SystemPrompt is the shared persona prefix every provider sends first.
func SystemPrompt(language string) string {
	return fmt.Sprintf(personaPrompt, language)
}

// ReplyFromText converts raw model output into a Reply, peeling off the
// optional trailing suggestions line.
func ReplyFromText(text string) *Reply {
	body, suggestions := splitSuggestions(text)
	return &Reply{Text: body, Suggestions: suggestions}
}

// splitSuggestions peels a trailing "suggestions:" line off model output.
func splitSuggestions(text string) (string, []string) {
	text = strings.TrimSpace(text)
	idx := strings.LastIndex(strings.ToLower(text), "\nsuggestions:")
	if idx < 0 {
		return text, nil
	}
	body := strings.TrimSpace(text[:idx])
	raw := text[idx+len("\nsuggestions:"):]
	var suggestions []string
	for _, s := range strings.Split(raw, "|") {
		if s = strings.TrimSpace(s); s != "" {
			suggestions = append(suggestions, s)
		}
	}
	if body == "" {
		return text, nil
	}
	return body, suggestions
}
