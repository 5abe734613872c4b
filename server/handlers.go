package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xhad/polisum/internal/models"
	"github.com/xhad/polisum/internal/types"
	"github.com/xhad/polisum/pkg/extract"
	"github.com/xhad/polisum/pkg/processor"
)

// Fixed validation messages.
const (
	msgInvalidPDF      = "Invalid PDF"
	msgNoText          = "No text provided"
	msgMissingSummary  = "Missing summary"
	msgMissingScenario = "Missing scenario type"
	msgMissingQuery    = "Missing query"
	msgInvalidLimit    = "Invalid limit"
)

// errValidation carries a fixed message for a 400 response.
type errValidation struct{ msg string }

func (e errValidation) Error() string { return e.msg }

func summaryBody(msg string) any { return types.SummarizeResponse{Summary: msg} }
func draftBody(msg string) any   { return types.GenerateResponse{Draft: msg} }
func errorBody(msg string) any   { return types.ErrorResponse{Error: msg} }

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	defer recoverJSON(w, r, summaryBody)

	text, err := s.policyText(w, r)
	if err != nil {
		writeError(w, r, err, summaryBody)
		return
	}
	if text == "" {
		writeJSON(w, http.StatusBadRequest, summaryBody(msgNoText))
		return
	}

	summary, err := s.summarizer.SummarizeCleaned(r.Context(), text, nil)
	if err != nil {
		writeError(w, r, err, summaryBody)
		return
	}

	s.record(r.Context(), models.KindSummary, "", summary)
	writeJSON(w, http.StatusOK, types.SummarizeResponse{Summary: summary})
}

// policyText returns the cleaned text of a summarize request, from an
// uploaded PDF, pasted text or a fetched policy page.
func (s *Server) policyText(w http.ResponseWriter, r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.uploadedText(w, r)
	}

	var req types.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("invalid request body: %w", err)
	}

	text := processor.CleanText(req.PolicyText)
	if text == "" && strings.TrimSpace(req.PolicyURL) != "" {
		return s.fetchedText(r, req.PolicyURL)
	}
	return text, nil
}

func (s *Server) uploadedText(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		return "", fmt.Errorf("failed to parse upload: %w", err)
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		text := processor.CleanText(r.FormValue("policy_text"))
		if text == "" && strings.TrimSpace(r.FormValue("policy_url")) != "" {
			return s.fetchedText(r, r.FormValue("policy_url"))
		}
		return text, nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	if !extract.IsPDFName(header.Filename) {
		return "", errValidation{msgInvalidPDF}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	log.Ctx(r.Context()).Debug().Str("file", header.Filename).Int("bytes", len(data)).Msg("Extracting PDF")
	return extract.PDFBytes(data)
}

func (s *Server) fetchedText(r *http.Request, url string) (string, error) {
	if s.fetcher == nil {
		return "", errors.New("policy_url is not supported")
	}
	doc, err := s.fetcher.Fetch(r.Context(), url)
	if err != nil {
		return "", err
	}
	return processor.CleanText(doc.Content), nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	defer recoverJSON(w, r, draftBody)

	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, fmt.Errorf("invalid request body: %w", err), draftBody)
		return
	}

	if strings.TrimSpace(req.Summary) == "" {
		writeJSON(w, http.StatusBadRequest, draftBody(msgMissingSummary))
		return
	}
	if strings.TrimSpace(req.Scenario) == "" {
		writeJSON(w, http.StatusBadRequest, draftBody(msgMissingScenario))
		return
	}

	draft, err := s.drafter.Draft(r.Context(), req.Summary, req.Scenario)
	if err != nil {
		writeError(w, r, err, draftBody)
		return
	}

	s.record(r.Context(), models.KindDraft, strings.TrimSpace(req.Scenario), draft)
	writeJSON(w, http.StatusOK, types.GenerateResponse{Draft: draft})
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	defer recoverJSON(w, r, errorBody)

	entries := []models.HistoryEntry{}
	if s.history != nil {
		var err error
		if entries, err = s.history.List(r.Context()); err != nil {
			writeError(w, r, err, errorBody)
			return
		}
	}

	writeJSON(w, http.StatusOK, types.HistoryResponse{Entries: entries})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	defer recoverJSON(w, r, errorBody)

	if s.history != nil {
		if err := s.history.Clear(r.Context()); err != nil {
			writeError(w, r, err, errorBody)
			return
		}
	}

	writeJSON(w, http.StatusOK, types.HistoryResponse{Entries: []models.HistoryEntry{}})
}

func (s *Server) handleSearchHistory(w http.ResponseWriter, r *http.Request) {
	defer recoverJSON(w, r, errorBody)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(msgMissingQuery))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody(msgInvalidLimit))
			return
		}
		limit = n
	}

	entries := []models.HistoryEntry{}
	if s.history != nil {
		var err error
		if entries, err = s.history.Search(r.Context(), query, limit); err != nil {
			writeError(w, r, err, errorBody)
			return
		}
	}

	writeJSON(w, http.StatusOK, types.HistoryResponse{Entries: entries})
}
