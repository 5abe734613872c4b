package types

import (
	"context"

	"github.com/xhad/polisum/internal/models"
)

// Core interfaces
type Summarizer interface {
	SummarizeCleaned(ctx context.Context, cleaned string, onProgress func(models.Progress)) (string, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (models.Document, error)
}

type Drafter interface {
	Draft(ctx context.Context, summary, scenario string) (string, error)
}

type HistoryStore interface {
	Append(ctx context.Context, entry models.HistoryEntry) error
	List(ctx context.Context) ([]models.HistoryEntry, error)
	Search(ctx context.Context, query string, limit int) ([]models.HistoryEntry, error)
	Clear(ctx context.Context) error
	Close()
}

// Wire payloads for the HTTP API.
type SummarizeRequest struct {
	PolicyText string `json:"policy_text"`
	PolicyURL  string `json:"policy_url,omitempty"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

type GenerateRequest struct {
	Summary  string `json:"summary"`
	Scenario string `json:"scenario"`
}

type GenerateResponse struct {
	Draft string `json:"draft"`
}

type HistoryResponse struct {
	Entries []models.HistoryEntry `json:"entries"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Message is the websocket envelope in both directions.
type Message struct {
	Type     string      `json:"type"`
	Content  string      `json:"content"`
	Scenario string      `json:"scenario,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// Websocket message types.
const (
	MessageSummarize = "summarize"
	MessageGenerate  = "generate"
	MessageProgress  = "progress"
	MessageSummary   = "summary"
	MessageDraft     = "draft"
	MessageError     = "error"
)
