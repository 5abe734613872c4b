// Package app builds the long-lived service objects from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/xhad/polisum/internal/types"
	"github.com/xhad/polisum/pkg/config"
	"github.com/xhad/polisum/pkg/drafter"
	"github.com/xhad/polisum/pkg/fetcher"
	"github.com/xhad/polisum/pkg/llm"
	"github.com/xhad/polisum/pkg/store"
	"github.com/xhad/polisum/pkg/summarizer"
	"github.com/xhad/polisum/server"
)

type Services struct {
	Summarizer *summarizer.Pipeline
	Drafter    drafter.Drafter
	Fetcher    *fetcher.Fetcher
	History    types.HistoryStore // nil unless server.enable_history is set
}

// Build creates every service once. The model client, when a provider is
// configured, is shared by the summarizer and the generative drafter.
func Build(ctx context.Context, cfg *config.Config) (*Services, error) {
	model, err := llm.NewModel(cfg.ModelConfig())
	if err != nil && !errors.Is(err, llm.ErrNoModel) {
		return nil, err
	}

	var chunkSummarizer summarizer.Summarizer = summarizer.Extractive{}
	if model != nil {
		chunkSummarizer = summarizer.NewLLM(model)
	}
	log.Info().Str("provider", cfg.LLM.Provider).Str("drafter", cfg.Drafter.Mode).Msg("Building services")

	d, err := drafter.New(cfg.DrafterConfig(), model)
	if err != nil {
		return nil, err
	}

	services := &Services{
		Summarizer: summarizer.NewPipeline(chunkSummarizer, cfg.PipelineConfig()),
		Drafter:    d,
		Fetcher:    fetcher.NewWithConfig(cfg.FetcherConfig()),
	}

	if !cfg.Server.EnableHistory {
		return services, nil
	}

	var embedder store.QueryEmbedder
	if cfg.Database.URL != "" {
		emb, err := llm.NewEmbedder(cfg.ModelConfig())
		switch {
		case err == nil:
			embedder = emb
		case errors.Is(err, llm.ErrNoModel):
			log.Info().Msg("No embedding model, history search uses text match")
		default:
			return nil, err
		}
	}

	history, err := store.New(ctx, cfg.StoreConfig(), embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history store: %w", err)
	}
	services.History = history

	return services, nil
}

// Server wraps the services in the HTTP server.
func (s *Services) Server(cfg *config.Config) *server.Server {
	return server.New(server.Config{
		Addr:           cfg.Server.Addr,
		StaticDir:      cfg.Server.StaticDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
	}, s.Summarizer, s.Drafter, s.Fetcher, s.History)
}

func (s *Services) Close() {
	if s.History != nil {
		s.History.Close()
	}
}
