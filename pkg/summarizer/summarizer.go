// Package summarizer turns cleaned policy text into one aggregate summary:
// the text is cut into fixed-size chunks, each chunk long enough is sent to
// a Summarizer, and the non-empty chunk summaries are joined in order.
package summarizer

import (
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/xhad/polisum/internal/models"
	"github.com/xhad/polisum/pkg/processor"
)

const (
	DefaultMinChunkChars = 200
	DefaultMinLength     = 40
	DefaultMaxLength     = 150
	DefaultFallback      = "No meaningful content could be summarized."
)

// Options bound the length, in words, of a single chunk summary.
type Options struct {
	MinLength int
	MaxLength int
}

// Summarizer summarizes one chunk of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string, opts Options) (string, error)
}

// ProgressFunc is called after every chunk, skipped or not.
type ProgressFunc = func(models.Progress)

// PipelineConfig sizes the pipeline. Zero or negative values select the
// package defaults.
type PipelineConfig struct {
	ChunkSize     int
	MaxInputChars int
	MinChunkChars int
	MinLength     int
	MaxLength     int
	MaxWords      int // 0 disables the aggregate word cap
	Fallback      string
}

type Pipeline struct {
	config     PipelineConfig
	processor  processor.Processor
	summarizer Summarizer
}

func NewPipeline(s Summarizer, config PipelineConfig) *Pipeline {
	if config.MinChunkChars <= 0 {
		config.MinChunkChars = DefaultMinChunkChars
	}
	if config.MinLength <= 0 {
		config.MinLength = DefaultMinLength
	}
	if config.MaxLength <= 0 {
		config.MaxLength = DefaultMaxLength
	}
	if config.MinLength > config.MaxLength {
		config.MinLength = config.MaxLength
	}
	if config.Fallback == "" {
		config.Fallback = DefaultFallback
	}

	p := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:     config.ChunkSize,
		MaxInputChars: config.MaxInputChars,
	})

	return &Pipeline{
		config:     config,
		processor:  p,
		summarizer: s,
	}
}

// SummarizeCleaned summarizes text that already went through a cleaner.
func (p *Pipeline) SummarizeCleaned(ctx context.Context, cleaned string, onProgress ProgressFunc) (string, error) {
	results, err := p.SummarizeChunks(ctx, cleaned, onProgress)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Summary
	}

	return Aggregate(parts, p.config.MaxWords, p.config.Fallback), nil
}

// SummarizeChunks runs the summarizer over every chunk in order. Chunks
// under MinChunkChars are skipped and summarizer failures are logged and
// recorded as empty results. Only a cancelled context stops the run.
func (p *Pipeline) SummarizeChunks(ctx context.Context, cleaned string, onProgress ProgressFunc) ([]models.ChunkSummary, error) {
	chunks := p.processor.Chunk(cleaned)
	results := make([]models.ChunkSummary, 0, len(chunks))
	opts := Options{MinLength: p.config.MinLength, MaxLength: p.config.MaxLength}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := models.ChunkSummary{Index: i}
		if utf8.RuneCountInString(chunk) < p.config.MinChunkChars {
			result.Skipped = true
			log.Debug().Int("chunk", i).Int("chars", utf8.RuneCountInString(chunk)).Msg("Skipping short chunk")
		} else {
			summary, err := p.summarizer.Summarize(ctx, chunk, opts)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				result.Failed = true
				log.Warn().Err(err).Int("chunk", i).Msg("Chunk summarization failed")
			} else {
				result.Summary = summary
			}
		}
		results = append(results, result)

		if onProgress != nil {
			onProgress(models.Progress{
				Index:   i + 1,
				Total:   len(chunks),
				Skipped: result.Skipped,
				Failed:  result.Failed,
			})
		}
	}

	return results, nil
}
