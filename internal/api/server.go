// ABOUTME: HTTP API server exposing sessions, coaching, transcription and dashboard reads
// ABOUTME: Routes on a net/http ServeMux wrapped in request-id, logging, CORS and recovery middleware
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/harper/confidant/internal/llm"
	"github.com/harper/confidant/internal/memory"
	"github.com/harper/confidant/internal/session"
)

// DefaultUserKey is used when a request names no user
const DefaultUserKey = "default_user"

const (
	maxJSONBody    = 1 << 20  // 1 MiB
	maxAudioBytes  = 25 << 20 // 25 MiB, the Whisper upload limit
	maxRequestBody = maxAudioBytes + maxJSONBody
)

// Options configure a Server
type Options struct {
	Addr        string
	DefaultUser string
	// Transcriber may be nil; the transcribe endpoint then answers 503
	Transcriber llm.Transcriber
	Now         func() time.Time
}

// Server serves the JSON API
type Server struct {
	sessions    *session.Service
	memory      *memory.Service
	transcriber llm.Transcriber
	defaultUser string
	now         func() time.Time

	server *http.Server
}

// New creates a server over the session service
func New(sessions *session.Service, opts Options) *Server {
	s := &Server{
		sessions:    sessions,
		memory:      sessions.Memory(),
		transcriber: opts.Transcriber,
		defaultUser: opts.DefaultUser,
		now:         opts.Now,
	}
	if s.defaultUser == "" {
		s.defaultUser = DefaultUserKey
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      3 * time.Minute,
	}
	return s
}

// Handler returns the fully wrapped router
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHealth)

	mux.HandleFunc("POST /api/session", s.handleSession)
	mux.HandleFunc("POST /api/session/end", s.handleSessionEnd)
	mux.HandleFunc("POST /api/coach", s.handleCoach)
	mux.HandleFunc("POST /api/transcribe", s.handleTranscribe)

	mux.HandleFunc("GET /api/users/{id}/memories", s.handleMemories)
	mux.HandleFunc("GET /api/users/{id}/memories/category/{category}", s.handleMemoriesByCategory)
	mux.HandleFunc("GET /api/users/{id}/memories/identity", s.handleIdentityMemories)
	mux.HandleFunc("GET /api/users/{id}/memories/breakthroughs", s.handleBreakthroughMemories)
	mux.HandleFunc("GET /api/users/{id}/patterns", s.handlePatterns)
	mux.HandleFunc("POST /api/users/{id}/patterns/{category}/interpret", s.handleInterpretPattern)
	mux.HandleFunc("GET /api/users/{id}/people", s.handlePeople)
	mux.HandleFunc("GET /api/users/{id}/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/users/{id}/stats", s.handleStats)
	mux.HandleFunc("GET /api/users/{id}/relationship", s.handleRelationship)
	mux.HandleFunc("GET /api/users/{id}/streak-status", s.handleStreakStatus)
	mux.HandleFunc("GET /api/users/{id}/areas-to-work-on", s.handleAreasToWorkOn)
	mux.HandleFunc("GET /api/users/{id}/achievements", s.handleAchievements)
	mux.HandleFunc("GET /api/users/{id}/achievements/uncelebrated", s.handleUncelebrated)
	mux.HandleFunc("POST /api/users/{id}/achievements/check", s.handleCheckAchievements)
	mux.HandleFunc("POST /api/users/{id}/achievements/{achievement_id}/celebrate", s.handleCelebrate)
	mux.HandleFunc("GET /api/users/{id}/export", s.handleExport)

	mux.HandleFunc("POST /api/memories/{memory_id}/significant", s.handleMarkSignificant)
	mux.HandleFunc("POST /api/memories/{memory_id}/decay", s.handleDecay)

	var h http.Handler = mux
	h = limitBody(maxRequestBody, h)
	h = recoverPanics(h)
	h = cors(h)
	h = accessLog(h)
	h = requestID(h)
	return h
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("api listen %s: %w", s.server.Addr, err)
	}
	slog.Info("API server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("API server shutting down")
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "active", "service": "confidant"})
}
