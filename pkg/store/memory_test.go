package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/polisum/internal/models"
	"github.com/xhad/polisum/pkg/store"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory(store.StoreConfig{})
	defer s.Close()

	require.NoError(t, s.Append(ctx, models.HistoryEntry{Kind: models.KindSummary, Content: "Agencies publish open datasets."}))
	require.NoError(t, s.Append(ctx, models.HistoryEntry{Kind: models.KindDraft, Scenario: "Research Universities", Content: "Scenario Draft: Research Universities"}))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.KindSummary, entries[0].Kind)
	assert.Equal(t, models.KindDraft, entries[1].Kind)
	for _, e := range entries {
		assert.Len(t, e.ID, 36)
		assert.WithinDuration(t, time.Now(), e.CreatedAt, time.Minute)
	}

	// List returns a copy.
	entries[0].Content = "changed"
	again, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Agencies publish open datasets.", again[0].Content)

	require.NoError(t, s.Clear(ctx))
	entries, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryStoreRejectsUnknownKind(t *testing.T) {
	s := store.NewMemory(store.StoreConfig{})
	err := s.Append(context.Background(), models.HistoryEntry{Kind: "note", Content: "x"})
	assert.EqualError(t, err, `unknown history kind "note"`)
}

func TestMemoryStoreSearch(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory(store.StoreConfig{SearchLimit: 2})

	for _, content := range []string{"open data policy", "privacy rules", "Open licensing", "OPEN access"} {
		require.NoError(t, s.Append(ctx, models.HistoryEntry{Kind: models.KindSummary, Content: content}))
	}

	got, err := s.Search(ctx, "open", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "OPEN access", got[0].Content)
	assert.Equal(t, "Open licensing", got[1].Content)

	got, err = s.Search(ctx, "open", 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = s.Search(ctx, "retention", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryStoreSearchIsLiteral(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory(store.StoreConfig{})
	require.NoError(t, s.Append(ctx, models.HistoryEntry{Kind: models.KindSummary, Content: "Retention is five years"}))
	require.NoError(t, s.Append(ctx, models.HistoryEntry{Kind: models.KindSummary, Content: "100% of data_sets are public"}))

	for _, q := range []string{"%", "_", "data_sets"} {
		got, err := s.Search(ctx, q, 5)
		require.NoError(t, err)
		require.Len(t, got, 1, q)
		assert.Equal(t, "100% of data_sets are public", got[0].Content, q)
	}

	got, err := s.Search(ctx, "five_years", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreMaxEntries(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory(store.StoreConfig{MaxEntries: 2})

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, s.Append(ctx, models.HistoryEntry{Kind: models.KindSummary, Content: content}))
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "two", entries[0].Content)
	assert.Equal(t, "three", entries[1].Content)
}

func TestNewWithoutDatabaseIsMemory(t *testing.T) {
	s, err := store.New(context.Background(), store.StoreConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, s)
}
