package config

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/xhad/polisum/pkg/drafter"
	"github.com/xhad/polisum/pkg/llm"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// LLM
	switch c.LLM.Provider {
	case llm.ProviderExtractive, llm.ProviderOllama, llm.ProviderOpenAI, llm.ProviderAnthropic:
	default:
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider %q", c.LLM.Provider),
		})
	}

	if c.LLM.BaseURL != "" {
		if u, err := url.ParseRequestURI(c.LLM.BaseURL); err != nil || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.base_url",
				Message: "invalid base URL",
			})
		}
	}

	if c.LLM.Provider == llm.ProviderAnthropic && c.LLM.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.api_key",
			Message: "api_key is required for anthropic",
		})
	}

	// Summarizer
	if c.Summarizer.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "summarizer.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Summarizer.MaxInputChars < c.Summarizer.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "summarizer.max_input_chars",
			Message: "max_input_chars must be at least chunk_size",
		})
	}

	if c.Summarizer.MinChunkChars < 1 {
		errors = append(errors, ValidationError{
			Field:   "summarizer.min_chunk_chars",
			Message: "min_chunk_chars must be positive",
		})
	}

	if c.Summarizer.MinLength < 1 || c.Summarizer.MinLength > c.Summarizer.MaxLength {
		errors = append(errors, ValidationError{
			Field:   "summarizer.min_length",
			Message: "min_length must be between 1 and max_length",
		})
	}

	if c.Summarizer.MaxWords < 0 {
		errors = append(errors, ValidationError{
			Field:   "summarizer.max_words",
			Message: "max_words must not be negative",
		})
	}

	// Drafter
	switch c.Drafter.Mode {
	case drafter.ModeTemplate:
	case drafter.ModeGenerative:
		if c.LLM.Provider == llm.ProviderExtractive {
			errors = append(errors, ValidationError{
				Field:   "drafter.mode",
				Message: "generative mode requires an llm provider",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "drafter.mode",
			Message: fmt.Sprintf("unknown mode %q", c.Drafter.Mode),
		})
	}

	if c.Drafter.Temperature <= 0 || c.Drafter.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "drafter.temperature",
			Message: "temperature must be in (0, 2]",
		})
	}

	if c.Drafter.TopP <= 0 || c.Drafter.TopP > 1 {
		errors = append(errors, ValidationError{
			Field:   "drafter.top_p",
			Message: "top_p must be in (0, 1]",
		})
	}

	if c.Drafter.RepetitionPenalty <= 0 {
		errors = append(errors, ValidationError{
			Field:   "drafter.repetition_penalty",
			Message: "repetition_penalty must be positive",
		})
	}

	if c.Drafter.MaxLength < 1 || c.Drafter.MaxSummaryChars < 1 {
		errors = append(errors, ValidationError{
			Field:   "drafter.max_length",
			Message: "max_length and max_summary_chars must be positive",
		})
	}

	// Server
	if c.Server.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Message: "addr is required",
		})
	}

	if c.Server.MaxUploadMB < 1 {
		errors = append(errors, ValidationError{
			Field:   "server.max_upload_mb",
			Message: "max_upload_mb must be positive",
		})
	}

	// Database
	if c.Database.URL != "" {
		if u, err := url.Parse(c.Database.URL); err != nil || u.Scheme == "" {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if !tableNameRe.MatchString(c.Database.TableName) {
		errors = append(errors, ValidationError{
			Field:   "database.table_name",
			Message: "table_name must be a plain SQL identifier",
		})
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	// Fetcher
	if c.Fetcher.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "fetcher.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Fetcher.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "fetcher.timeout",
			Message: "timeout must be positive",
		})
	}

	// Log
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown level %q", c.Log.Level),
		})
	}

	return errors
}
