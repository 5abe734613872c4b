package processor_test

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/polisum/pkg/processor"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
		{"collapses whitespace", "Data  governance\n\nframework\tv2", "Data governance framework v2"},
		{"dot leaders", "Section 1.........4", "Section 1 4"},
		{"keeps ellipsis of two", "wait.. what", "wait.. what"},
		{"dots next to spaces", "Intro ..... \n Scope", "Intro Scope"},
		{"unicode spaces", "open\u00a0data\u2003policy", "open data policy"},
		{"trims", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, processor.CleanText(tt.in))
		})
	}
}

func TestCleanTextProperties(t *testing.T) {
	inputs := []string{
		"a....b",
		"......",
		". . . ...",
		"line\r\n\r\nnext\v\fpage",
		"Table of contents ......... 3\n\n1. Purpose .......... 4",
		"x   \ny",
	}

	for _, in := range inputs {
		out := processor.CleanText(in)
		assert.NotContains(t, out, "...", "input %q", in)
		assertNoDoubleSpace(t, out)
		assert.Equal(t, strings.TrimSpace(out), out)
	}
}

func TestCleanPDFText(t *testing.T) {
	in := "Open\x00 Data•Policy ✓ ...... Annex\x0cB"
	out := processor.CleanPDFText(in)

	assert.Equal(t, "Open DataPolicy Annex B", out)
	for _, r := range out {
		assert.True(t, r >= 0x20 && r <= 0x7e, "unexpected rune %q", r)
	}
	assertNoDoubleSpace(t, out)
}

func TestChunk(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:     10,
		MaxInputChars: 35,
	})

	text := strings.Repeat("abcdefghij", 5)
	chunks := p.Chunk(text)

	require.Len(t, chunks, 4)
	for _, c := range chunks[:3] {
		assert.Len(t, c, 10)
	}
	assert.Equal(t, "abcde", chunks[3])
	assert.Equal(t, text[:35], strings.Join(chunks, ""))
}

func TestChunkReassembles(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 7, MaxInputChars: 1000})

	for _, text := range []string{
		"",
		"short",
		"exactly7",
		strings.Repeat("policy text ", 40),
		"données ouvertes — politique de gouvernance",
	} {
		chunks := p.Chunk(text)
		assert.Equal(t, text, strings.Join(chunks, ""))
		for i, c := range chunks {
			if i < len(chunks)-1 {
				assert.Equal(t, 7, len([]rune(c)))
			} else {
				assert.LessOrEqual(t, len([]rune(c)), 7)
				assert.NotEmpty(t, c)
			}
		}
	}
}

func TestChunkDefaults(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	assert.Equal(t, processor.DefaultChunkSize, p.Config().ChunkSize)
	assert.Equal(t, processor.DefaultMaxInputChars, p.Config().MaxInputChars)

	chunks := p.Chunk(strings.Repeat("x", 20000))
	assert.Len(t, chunks, 10)
}

func TestCleanThenChunk(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 12})

	chunks := p.Chunk(processor.CleanText("Open   data.....\npolicy framework"))

	assert.Equal(t, []string{"Open data po", "licy framewo", "rk"}, chunks)
}

func assertNoDoubleSpace(t *testing.T, s string) {
	t.Helper()
	prev := false
	for _, r := range s {
		space := unicode.IsSpace(r)
		assert.False(t, prev && space, "consecutive whitespace in %q", s)
		prev = space
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"", nil},
		{"No terminator", []string{"No terminator"}},
		{"Data is open. Access is logged! Who owns it? Stewards.", []string{"Data is open.", "Access is logged!", "Who owns it?", "Stewards."}},
		{"Version 2.1 applies. Next", []string{"Version 2.1 applies.", "Next"}},
		{"Ends with space.  ", []string{"Ends with space."}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, processor.SplitSentences(tt.text))
		})
	}
}
