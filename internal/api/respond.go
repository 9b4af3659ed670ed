// ABOUTME: JSON request decoding, response writing and error-to-status mapping
// ABOUTME: Errors are rendered as {"detail": "..."}
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/harper/confidant/internal/interpreter"
	"github.com/harper/confidant/internal/llm"
	"github.com/harper/confidant/internal/logging"
	"github.com/harper/confidant/internal/session"
	"github.com/harper/confidant/internal/storage"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeFailure maps err to a status code. prefix names the failed operation
// for server-side errors.
func writeFailure(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	var provErr *llm.ProviderError
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "User input cannot be empty")
	case errors.Is(err, session.ErrEmptyCategory):
		writeError(w, http.StatusBadRequest, "Category cannot be empty")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, llm.ErrNoProvider):
		writeError(w, http.StatusServiceUnavailable, "No language model is configured")
	case errors.As(err, &provErr), errors.Is(err, interpreter.ErrEmptyResponse):
		logging.FromContext(r.Context()).Error(prefix, "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("%s: %v", prefix, err))
	default:
		logging.FromContext(r.Context()).Error(prefix, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", prefix, err))
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
	return false
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || v <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return v, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	if v > max {
		v = max
	}
	return v, true
}
