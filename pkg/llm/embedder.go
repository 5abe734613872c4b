package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewEmbedder builds an embedder for history search. Providers without an
// embeddings endpoint return ErrNoModel.
func NewEmbedder(config ModelConfig) (embeddings.Embedder, error) {
	config = config.withDefaults()

	var client embeddings.EmbedderClient
	switch config.Provider {
	case ProviderOllama:
		emb, err := ollama.New(ollama.WithModel(config.EmbeddingModel), ollama.WithServerURL(config.BaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama embedder: %w", err)
		}
		client = emb
	case ProviderOpenAI:
		opts := openAIOptions(config, config.Model)
		if config.EmbeddingModel != "" {
			opts = append(opts, openai.WithEmbeddingModel(config.EmbeddingModel))
		}
		emb, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai embedder: %w", err)
		}
		client = emb
	default:
		return nil, ErrNoModel
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return embedder, nil
}
