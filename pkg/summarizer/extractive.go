package summarizer

import (
	"context"
	"strings"

	"github.com/xhad/polisum/pkg/processor"
)

// Extractive keeps the leading sentences of a chunk up to MaxLength words.
// It needs no model and always returns the same output for the same input.
type Extractive struct{}

func (Extractive) Summarize(_ context.Context, text string, opts Options) (string, error) {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}

	sentences := processor.SplitSentences(text)
	if len(sentences) == 0 {
		return "", nil
	}

	var (
		kept  []string
		words int
	)
	for _, sentence := range sentences {
		n := len(strings.Fields(sentence))
		if words+n > opts.MaxLength {
			break
		}
		kept = append(kept, sentence)
		words += n
	}

	// First sentence alone is already too long.
	if len(kept) == 0 {
		fields := strings.Fields(sentences[0])
		return strings.Join(fields[:opts.MaxLength], " "), nil
	}

	return strings.Join(kept, " "), nil
}
