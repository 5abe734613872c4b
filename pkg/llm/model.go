package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Supported providers. Extractive means no model at all.
const (
	ProviderOllama     = "ollama"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderExtractive = "extractive"
)

var ErrNoModel = errors.New("provider has no generation model")

// ModelConfig represents the configuration for a model provider.
type ModelConfig struct {
	Provider       string
	Model          string
	EmbeddingModel string
	BaseURL        string // Ollama server URL or OpenAI-compatible base
	APIKey         string
}

func (c ModelConfig) withDefaults() ModelConfig {
	if c.Provider == "" {
		c.Provider = ProviderExtractive
	}
	c.Provider = strings.ToLower(c.Provider)
	if c.Provider == ProviderOllama {
		if c.Model == "" {
			c.Model = "mistral"
		}
		if c.EmbeddingModel == "" {
			c.EmbeddingModel = "nomic-embed-text:latest"
		}
		if c.BaseURL == "" {
			c.BaseURL = "http://localhost:11434"
		}
	}
	return c
}

// NewModel builds the generation model for the configured provider. It is
// created once at startup and shared read-only by every request.
func NewModel(config ModelConfig) (llms.Model, error) {
	config = config.withDefaults()

	switch config.Provider {
	case ProviderOllama:
		llm, err := ollama.New(ollama.WithModel(config.Model), ollama.WithServerURL(config.BaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama: %w", err)
		}
		return llm, nil
	case ProviderOpenAI:
		llm, err := openai.New(openAIOptions(config, config.Model)...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai: %w", err)
		}
		return llm, nil
	case ProviderAnthropic:
		opts := []anthropic.Option{anthropic.WithToken(strings.TrimPrefix(config.APIKey, "Bearer "))}
		if config.Model != "" {
			opts = append(opts, anthropic.WithModel(config.Model))
		}
		if config.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(config.BaseURL))
		}
		llm, err := anthropic.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize anthropic: %w", err)
		}
		return llm, nil
	case ProviderExtractive:
		return nil, ErrNoModel
	default:
		return nil, fmt.Errorf("unknown llm provider %q", config.Provider)
	}
}

func openAIOptions(config ModelConfig, model string) []openai.Option {
	opts := []openai.Option{openai.WithToken(strings.TrimPrefix(config.APIKey, "Bearer "))}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}
	return opts
}

// Generate sends a single prompt and returns the first choice.
func Generate(ctx context.Context, model llms.Model, prompt string, opts ...llms.CallOption) (string, error) {
	if model == nil {
		return "", ErrNoModel
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("generation error: %w", err)
	}

	return out, nil
}
