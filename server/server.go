// Package server exposes the summarizer and drafter over HTTP and
// websockets, and serves the frontend build.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xhad/polisum/internal/models"
	"github.com/xhad/polisum/internal/types"
)

type Config struct {
	Addr           string
	StaticDir      string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server holds the service objects built at startup. They are shared by
// every request and never mutated after New.
type Server struct {
	config     Config
	summarizer types.Summarizer
	drafter    types.Drafter
	fetcher    types.Fetcher
	history    types.HistoryStore
}

// New wires the handlers. fetcher and history may be nil, which disables
// policy_url requests and history recording.
func New(config Config, summarizer types.Summarizer, drafter types.Drafter, fetcher types.Fetcher, history types.HistoryStore) *Server {
	if config.Addr == "" {
		config.Addr = ":5000"
	}
	if config.MaxUploadBytes == 0 {
		config.MaxUploadBytes = 20 << 20
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"*"}
	}

	return &Server{
		config:     config,
		summarizer: summarizer,
		drafter:    drafter,
		fetcher:    fetcher,
		history:    history,
	}
}

// Handler returns the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /summarize", s.handleSummarize)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("GET /history", s.handleListHistory)
	mux.HandleFunc("DELETE /history", s.handleClearHistory)
	mux.HandleFunc("GET /history/search", s.handleSearchHistory)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /", s.staticHandler())

	return requestLogger(cors(s.config.AllowedOrigins)(mux))
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.config.Addr).Msg("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}

// record appends to history when it is enabled. Failures only log.
func (s *Server) record(ctx context.Context, kind, scenario, content string) {
	if s.history == nil {
		return
	}
	err := s.history.Append(ctx, models.HistoryEntry{Kind: kind, Scenario: scenario, Content: content})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("kind", kind).Msg("Failed to record history")
	}
}
