package summarizer_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/polisum/internal/models"
	"github.com/xhad/polisum/pkg/processor"
	"github.com/xhad/polisum/pkg/summarizer"
)

// stubSummarizer returns "S<n>" for the n-th call, or fails on the calls
// listed in failOn.
type stubSummarizer struct {
	mu     sync.Mutex
	calls  []string
	opts   []summarizer.Options
	failOn map[int]bool
	cancel context.CancelFunc
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string, opts summarizer.Options) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.calls)
	s.calls = append(s.calls, text)
	s.opts = append(s.opts, opts)
	if s.cancel != nil {
		s.cancel()
		return "", ctx.Err()
	}
	if s.failOn[n] {
		return "", errors.New("model exploded")
	}
	return "S" + string(rune('0'+n)), nil
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		maxWords int
		want     string
	}{
		{"nil parts", nil, 0, "fallback"},
		{"all empty", []string{"", "  ", "\n"}, 0, "fallback"},
		{"drops empties in order", []string{"first", "", "second", " ", "third"}, 0, "first second third"},
		{"under cap", []string{"one two", "three"}, 3, "one two three"},
		{"over cap", []string{"one two", "three four five"}, 3, "one two three..."},
		{"cap disabled", []string{"one two", "three four five"}, 0, "one two three four five"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarizer.Aggregate(tt.parts, tt.maxWords, "fallback"))
		})
	}
}

func TestPipelineSkipsShortChunks(t *testing.T) {
	stub := &stubSummarizer{}
	p := summarizer.NewPipeline(stub, summarizer.PipelineConfig{
		ChunkSize:     300,
		MaxInputChars: 1000,
		MinChunkChars: 200,
	})

	// 300 + 300 + 100: the tail is too short to summarize.
	text := strings.Repeat("a", 700)
	var events []models.Progress
	out, err := p.SummarizeCleaned(context.Background(), text, func(ev models.Progress) {
		events = append(events, ev)
	})

	require.NoError(t, err)
	assert.Equal(t, "S0 S1", out)
	assert.Len(t, stub.calls, 2)
	require.Len(t, events, 3)
	assert.Equal(t, models.Progress{Index: 3, Total: 3, Skipped: true}, events[2])
	assert.Equal(t, summarizer.Options{MinLength: summarizer.DefaultMinLength, MaxLength: summarizer.DefaultMaxLength}, stub.opts[0])
}

func TestPipelineAbsorbsChunkFailures(t *testing.T) {
	stub := &stubSummarizer{failOn: map[int]bool{1: true}}
	p := summarizer.NewPipeline(stub, summarizer.PipelineConfig{ChunkSize: 200, MinChunkChars: 200})

	results, err := p.SummarizeChunks(context.Background(), strings.Repeat("b", 600), nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[1].Failed)
	assert.Empty(t, results[1].Summary)

	out, err := p.SummarizeCleaned(context.Background(), strings.Repeat("b", 600), nil)
	require.NoError(t, err)
	// second run continues the stub's call counter: calls 3, 4, 5
	assert.Equal(t, "S3 S4 S5", out)
}

func TestPipelineFallback(t *testing.T) {
	stub := &stubSummarizer{failOn: map[int]bool{0: true}}
	p := summarizer.NewPipeline(stub, summarizer.PipelineConfig{Fallback: "nothing here"})

	out, err := p.SummarizeCleaned(context.Background(), "too short to summarize", nil)
	require.NoError(t, err)
	assert.Equal(t, "nothing here", out)
	assert.Empty(t, stub.calls)

	out, err = p.SummarizeCleaned(context.Background(), strings.Repeat("policy ", 100), nil)
	require.NoError(t, err)
	assert.Equal(t, "nothing here", out)
	assert.Len(t, stub.calls, 1)
}

func TestPipelineWordCap(t *testing.T) {
	p := summarizer.NewPipeline(summarizer.Extractive{}, summarizer.PipelineConfig{
		ChunkSize:     250,
		MinChunkChars: 10,
		MaxWords:      5,
	})

	out, err := p.SummarizeCleaned(context.Background(), processor.CleanText(strings.Repeat("Records are retained for seven years. ", 20)), nil)
	require.NoError(t, err)
	assert.Equal(t, "Records are retained for seven...", out)
}

func TestPipelineStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stub := &stubSummarizer{cancel: cancel}
	p := summarizer.NewPipeline(stub, summarizer.PipelineConfig{ChunkSize: 200})

	_, err := p.SummarizeCleaned(ctx, strings.Repeat("c", 1000), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, stub.calls, 1)
}

func TestExtractive(t *testing.T) {
	text := "Data must be classified. Owners approve access. Logs are kept for audit purposes."

	out, err := summarizer.Extractive{}.Summarize(context.Background(), text, summarizer.Options{MaxLength: 8})
	require.NoError(t, err)
	assert.Equal(t, "Data must be classified. Owners approve access.", out)

	out, err = summarizer.Extractive{}.Summarize(context.Background(), text, summarizer.Options{MaxLength: 2})
	require.NoError(t, err)
	assert.Equal(t, "Data must", out)

	out, err = summarizer.Extractive{}.Summarize(context.Background(), "   ", summarizer.Options{MaxLength: 2})
	require.NoError(t, err)
	assert.Empty(t, out)
}
