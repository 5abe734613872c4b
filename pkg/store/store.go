// Package store keeps the history of generated summaries and drafts.
package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xhad/polisum/internal/models"
	"github.com/xhad/polisum/internal/types"
)

const (
	DefaultSearchLimit = 5
	DefaultMaxEntries  = 500
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QueryEmbedder turns text into a vector. It is satisfied by langchaingo's
// embeddings.Embedder.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type StoreConfig struct {
	ConnString  string
	TableName   string
	VectorDim   int
	MaxEntries  int // memory store only; 0 keeps everything
	SearchLimit int
}

// New opens a Postgres store when a connection string is configured and an
// in-memory store otherwise. embedder may be nil.
func New(ctx context.Context, config StoreConfig, embedder QueryEmbedder) (types.HistoryStore, error) {
	if config.ConnString == "" {
		return NewMemory(config), nil
	}
	return NewPostgres(ctx, config, embedder)
}

// prepare fills in the id and timestamp of a new entry.
func prepare(entry models.HistoryEntry) (models.HistoryEntry, error) {
	if entry.Kind != models.KindSummary && entry.Kind != models.KindDraft {
		return entry, fmt.Errorf("unknown history kind %q", entry.Kind)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.Content = strings.ToValidUTF8(entry.Content, "")
	entry.Scenario = strings.ToValidUTF8(entry.Scenario, "")
	return entry, nil
}

func searchLimit(limit, fallback int) int {
	if limit > 0 {
		return limit
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultSearchLimit
}
