// ABOUTME: Dashboard endpoints reading memories, stats, achievements and patterns per user
// ABOUTME: Memory-level mutations (significance, decay) live here too
package api

import (
	"net/http"
	"strings"

	"github.com/harper/confidant/internal/models"
	"github.com/harper/confidant/internal/relationship"
)

const (
	dashboardMemoryLimit = 100
	flaggedMemoryLimit   = 1000
	defaultSessionLimit  = 10
	maxSessionLimit      = 100
	dashboardAreaLimit   = 5
)

// achievementView adds catalog metadata to an unlocked achievement
type achievementView struct {
	models.Achievement
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`
}

func achievementViews(list []models.Achievement) []achievementView {
	views := make([]achievementView, 0, len(list))
	for _, a := range list {
		v := achievementView{Achievement: a}
		if def, ok := relationship.Lookup(a.Key); ok {
			v.Title, v.Description, v.Group = def.Title, def.Description, def.Group
		}
		views = append(views, v)
	}
	return views
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

func (s *Server) user(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u, err := s.memory.User(r.Context(), s.userKey(r.PathValue("id")))
	if err != nil {
		writeFailure(w, r, "Failed to resolve user", err)
		return nil, false
	}
	return u, true
}

func (s *Server) handleMemories(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	memories, err := s.memory.Store().RecentMemories(r.Context(), u.ID, dashboardMemoryLimit, "")
	if err != nil {
		writeFailure(w, r, "Failed to fetch memories", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(memories))
}

func (s *Server) handleMemoriesByCategory(w http.ResponseWriter, r *http.Request) {
	memories, err := s.memory.PatternHistory(r.Context(), s.userKey(r.PathValue("id")), r.PathValue("category"))
	if err != nil {
		writeFailure(w, r, "Failed to fetch memories", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(memories))
}

func (s *Server) handleIdentityMemories(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	memories, err := s.memory.Store().IdentityStatements(r.Context(), u.ID, flaggedMemoryLimit)
	if err != nil {
		writeFailure(w, r, "Failed to fetch identity memories", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(memories))
}

func (s *Server) handleBreakthroughMemories(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	memories, err := s.memory.Store().BreakthroughMoments(r.Context(), u.ID, flaggedMemoryLimit)
	if err != nil {
		writeFailure(w, r, "Failed to fetch breakthrough memories", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(memories))
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	categories, err := s.memory.Categories(r.Context(), s.userKey(r.PathValue("id")))
	if err != nil {
		writeFailure(w, r, "Failed to fetch patterns", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(categories))
}

type interpretRequest struct {
	CurrentContext string `json:"current_context"`
}

type interpretResponse struct {
	Category       string `json:"category"`
	Interpretation string `json:"interpretation"`
}

func (s *Server) handleInterpretPattern(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category := r.PathValue("category")

	text, err := s.sessions.InterpretPattern(r.Context(), s.userKey(r.PathValue("id")), category, strings.TrimSpace(req.CurrentContext))
	if err != nil {
		writeFailure(w, r, "Failed to interpret pattern", err)
		return
	}
	writeJSON(w, http.StatusOK, interpretResponse{Category: category, Interpretation: text})
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.memory.PeopleMentioned(r.Context(), s.userKey(r.PathValue("id")))
	if err != nil {
		writeFailure(w, r, "Failed to fetch people mentioned", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(people))
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", defaultSessionLimit, maxSessionLimit)
	if !ok {
		return
	}
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	logs, err := s.memory.Store().RecentInteractions(r.Context(), u.ID, limit)
	if err != nil {
		writeFailure(w, r, "Failed to fetch sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(logs))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.memory.DashboardStats(r.Context(), s.userKey(r.PathValue("id")))
	if err != nil {
		writeFailure(w, r, "Failed to fetch stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRelationship(w http.ResponseWriter, r *http.Request) {
	stats, err := s.memory.RelationshipStats(r.Context(), s.userKey(r.PathValue("id")), s.now())
	if err != nil {
		writeFailure(w, r, "Failed to fetch relationship stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleStreakStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.memory.StreakStatus(r.Context(), s.userKey(r.PathValue("id")), s.now())
	if err != nil {
		writeFailure(w, r, "Failed to fetch streak status", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleAreasToWorkOn(w http.ResponseWriter, r *http.Request) {
	areas, err := s.memory.AreasToWorkOn(r.Context(), s.userKey(r.PathValue("id")), dashboardAreaLimit)
	if err != nil {
		writeFailure(w, r, "Failed to fetch areas to work on", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(areas))
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	list, err := s.memory.Store().ListAchievements(r.Context(), u.ID)
	if err != nil {
		writeFailure(w, r, "Failed to fetch achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, achievementViews(list))
}

func (s *Server) handleUncelebrated(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	list, err := s.memory.Store().UncelebratedAchievements(r.Context(), u.ID)
	if err != nil {
		writeFailure(w, r, "Failed to fetch uncelebrated achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, achievementViews(list))
}

func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	unlocked, err := s.memory.Store().CheckAndUnlockAchievements(r.Context(), u.ID, s.now())
	if err != nil {
		writeFailure(w, r, "Failed to check achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, achievementViews(unlocked))
}

func (s *Server) handleCelebrate(w http.ResponseWriter, r *http.Request) {
	achievementID, ok := pathInt(w, r, "achievement_id")
	if !ok {
		return
	}
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	a, err := s.memory.Store().MarkCelebrated(r.Context(), u.ID, achievementID)
	if err != nil {
		writeFailure(w, r, "Failed to celebrate achievement", err)
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "Achievement not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "celebrated": true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.memory.Store().Export(r.Context(), s.userKey(r.PathValue("id")))
	if err != nil {
		writeFailure(w, r, "Failed to export", err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

type decayRequest struct {
	Amount *int `json:"amount"`
}

func (s *Server) handleMarkSignificant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "memory_id")
	if !ok {
		return
	}
	m, err := s.memory.MarkSignificant(r.Context(), id)
	if err != nil {
		writeFailure(w, r, "Failed to update memory", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDecay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "memory_id")
	if !ok {
		return
	}
	var req decayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount := 1
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must be non-negative")
		return
	}

	m, err := s.memory.DecayRelevance(r.Context(), id, amount)
	if err != nil {
		writeFailure(w, r, "Failed to update memory", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
