package models

import "time"

// SourceURL marks documents fetched from a policy page.
const SourceURL = "url"

type Document struct {
	ID       string
	Source   string
	Name     string
	Content  string
	Metadata map[string]interface{}
}

// ChunkSummary is the result of summarizing one chunk. Summary is empty when
// the chunk was skipped or the summarizer failed.
type ChunkSummary struct {
	Index   int
	Summary string
	Skipped bool
	Failed  bool
}

// Progress is emitted by the summarization pipeline after each chunk.
type Progress struct {
	Index   int  `json:"index"`
	Total   int  `json:"total"`
	Skipped bool `json:"skipped,omitempty"`
	Failed  bool `json:"failed,omitempty"`
}

// History entry kinds.
const (
	KindSummary = "summary"
	KindDraft   = "draft"
)

type HistoryEntry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Scenario  string    `json:"scenario,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
