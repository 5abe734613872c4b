package summarizer

import "strings"

const ellipsis = "..."

// Aggregate joins the non-empty chunk summaries with a single space. When
// maxWords is positive the result is cut to that many words and marked with
// an ellipsis. If nothing is left, fallback is returned.
func Aggregate(parts []string, maxWords int, fallback string) string {
	var kept []string
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return fallback
	}

	joined := strings.Join(kept, " ")
	if maxWords <= 0 {
		return joined
	}

	words := strings.Fields(joined)
	if len(words) <= maxWords {
		return joined
	}

	return strings.Join(words[:maxWords], " ") + ellipsis
}
