package store

import (
	"context"
	"strings"
	"sync"

	"github.com/xhad/polisum/internal/models"
)

// Memory is a process-local history. Search is a case-insensitive substring
// match, newest first.
type Memory struct {
	mu      sync.RWMutex
	config  StoreConfig
	entries []models.HistoryEntry
}

func NewMemory(config StoreConfig) *Memory {
	return &Memory{config: config}
}

func (m *Memory) Append(_ context.Context, entry models.HistoryEntry) error {
	entry, err := prepare(entry)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	if n := m.config.MaxEntries; n > 0 && len(m.entries) > n {
		m.entries = append([]models.HistoryEntry(nil), m.entries[len(m.entries)-n:]...)
	}
	return nil
}

func (m *Memory) List(_ context.Context) ([]models.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.HistoryEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *Memory) Search(_ context.Context, query string, limit int) ([]models.HistoryEntry, error) {
	limit = searchLimit(limit, m.config.SearchLimit)
	query = strings.ToLower(strings.TrimSpace(query))

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.HistoryEntry{}
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.entries[i]
		if strings.Contains(strings.ToLower(e.Content), query) || strings.Contains(strings.ToLower(e.Scenario), query) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = nil
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() {}
