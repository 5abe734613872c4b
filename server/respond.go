package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Int("status", code).Msg("Failed to encode JSON response")
	}
}

// writeError maps validation errors to 400 with their fixed message and
// everything else to 500 with "Error: <message>".
func writeError(w http.ResponseWriter, r *http.Request, err error, body func(string) any) {
	var verr errValidation
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, body(verr.msg))
		return
	}

	log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	writeJSON(w, http.StatusInternalServerError, body("Error: "+err.Error()))
}

// recoverJSON must be deferred directly by a handler.
func recoverJSON(w http.ResponseWriter, r *http.Request, body func(string) any) {
	if p := recover(); p != nil {
		if p == http.ErrAbortHandler {
			panic(p)
		}
		writeError(w, r, fmt.Errorf("%v", p), body)
	}
}
