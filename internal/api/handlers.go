// ABOUTME: Conversation endpoints: session turns, session end, coaching and transcription
// ABOUTME: Bodies carry user_input and an optional user_id defaulting to the server's default user
package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/harper/confidant/internal/logging"
	"github.com/harper/confidant/internal/models"
)

type sessionRequest struct {
	UserInput string `json:"user_input"`
	UserID    string `json:"user_id"`
}

type sessionResponse struct {
	Response       string               `json:"response"`
	MemoriesStored int                  `json:"memories_stored"`
	Unlocked       []models.Achievement `json:"unlocked"`
}

type textResponse struct {
	Response string `json:"response"`
}

func (s *Server) userKey(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.defaultUser
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		writeError(w, http.StatusBadRequest, "User input cannot be empty")
		return
	}

	result, err := s.sessions.ProcessInput(r.Context(), s.userKey(req.UserID), req.UserInput)
	if err != nil {
		writeFailure(w, r, "Processing error", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Response:       result.Response,
		MemoriesStored: result.MemoriesStored,
		Unlocked:       result.Unlocked,
	})
}

func (s *Server) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := s.sessions.EndSession(r.Context(), s.userKey(req.UserID))
	if err != nil {
		writeFailure(w, r, "Summary generation error", err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Response: summary})
}

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := s.sessions.ProcessCoachInput(r.Context(), s.userKey(req.UserID), req.UserInput)
	if err != nil {
		writeFailure(w, r, "Coach error", err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Response: response})
}

var audioExtensions = map[string]string{
	"audio/webm":  ".webm",
	"audio/wav":   ".wav",
	"audio/wave":  ".wav",
	"audio/x-wav": ".wav",
	"audio/mp3":   ".mp3",
	"audio/mpeg":  ".mp3",
	"audio/mp4":   ".mp4",
	"audio/m4a":   ".m4a",
	"audio/ogg":   ".ogg",
	"audio/flac":  ".flac",
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Audio file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Missing audio file")
		return
	}
	defer func() { _ = file.Close() }()

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !strings.HasPrefix(contentType, "audio/") {
		writeError(w, http.StatusBadRequest, "Invalid audio format. Supported: webm, wav, mp3, mp4, m4a, ogg, flac")
		return
	}

	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "Transcription is not configured. Set OPENAI_API_KEY.")
		return
	}

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read audio file")
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "Empty audio file")
		return
	}
	if len(audio) > maxAudioBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Audio file too large")
		return
	}

	ext, ok := audioExtensions[contentType]
	if !ok {
		ext = ".webm"
	}
	name := "audio" + ext
	if base := filepath.Base(header.Filename); filepath.Ext(base) != "" {
		name = base
	}

	result, err := s.transcriber.Transcribe(r.Context(), name, bytes.NewReader(audio))
	if err != nil {
		logging.FromContext(r.Context()).Error("transcription failed", "error", err, "bytes", len(audio))
		writeError(w, http.StatusBadGateway, "Whisper API error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
