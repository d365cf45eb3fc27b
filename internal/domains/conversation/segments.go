package conversation

import "strings"

// sentence-terminal runes; ؟ is the Arabic question mark
const segmentTerminals = ".!?؟\n"

// SplitSegments breaks reply text into speakable sentence-level
// segments. The first segment can start synthesis while the rest are
// still in flight, which is what keeps perceived latency low.
func SplitSegments(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var segments []string
	var sb strings.Builder
	for _, r := range text {
		sb.WriteRune(r)
		if strings.ContainsRune(segmentTerminals, r) {
			if seg := strings.TrimSpace(sb.String()); seg != "" {
				segments = append(segments, seg)
			}
			sb.Reset()
		}
	}
	if seg := strings.TrimSpace(sb.String()); seg != "" {
		segments = append(segments, seg)
	}
	return segments
}
