package processor

import (
	"regexp"
	"strings"
)

const (
	DefaultChunkSize     = 1200
	DefaultMaxInputChars = 12000
)

var (
	dotRunRe      = regexp.MustCompile(`\.{3,}`)
	unprintableRe = regexp.MustCompile(`[^\x20-\x7E]+`)
)

type ProcessorConfig struct {
	ChunkSize     int // runes per chunk
	MaxInputChars int // runes kept before chunking
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.MaxInputChars <= 0 {
		config.MaxInputChars = DefaultMaxInputChars
	}

	return Processor{
		config: config,
	}
}

func (p Processor) Config() ProcessorConfig {
	return p.config
}

// CleanText replaces dot leaders with a space, collapses whitespace runs
// and trims the result.
func CleanText(text string) string {
	text = dotRunRe.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// CleanPDFText is CleanText for extracted PDF text: anything outside
// printable ASCII is dropped as well.
func CleanPDFText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = unprintableRe.ReplaceAllString(text, "")
	return CleanText(text)
}

// Chunk truncates text to MaxInputChars and splits it into contiguous
// ChunkSize pieces. Boundaries are positional only; the last chunk may be
// shorter.
func (p Processor) Chunk(text string) []string {
	runes := []rune(text)
	if len(runes) > p.config.MaxInputChars {
		runes = runes[:p.config.MaxInputChars]
	}

	var chunks []string
	for start := 0; start < len(runes); start += p.config.ChunkSize {
		end := min(start+p.config.ChunkSize, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}

// SplitSentences breaks text after '.', '!' or '?' when followed by
// whitespace or the end of the text.
func SplitSentences(text string) []string {
	var sentences []string

	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\n' && text[i+1] != '\t' {
				continue
			}
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}

	// Add any remaining text
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
