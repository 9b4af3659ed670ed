// ABOUTME: Session service orchestrating one turn: context, reply, extraction, storage, stats
// ABOUTME: Also closes sessions, runs coach turns and pattern interpretations
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harper/confidant/internal/interpreter"
	"github.com/harper/confidant/internal/memory"
	"github.com/harper/confidant/internal/models"
)

// ErrEmptyInput is returned for blank user messages
var ErrEmptyInput = errors.New("user input cannot be empty")

// ErrEmptyCategory is returned when a pattern interpretation names no category
var ErrEmptyCategory = errors.New("category is required")

// Context window sizes per operation
const (
	turnRecentMemories      = 5
	turnRelevantMemories    = 5
	turnRecentExchanges     = 3
	summaryRecentMemories   = 10
	summaryRelevantMemories = 5
	summaryRecentExchanges  = 5
	coachAreas              = 3
)

// TurnResult is the outcome of one processed message
type TurnResult struct {
	Response       string               `json:"response"`
	MemoriesStored int                  `json:"memories_stored"`
	Unlocked       []models.Achievement `json:"unlocked"`
}

// Service coordinates memory and interpretation for a conversation
type Service struct {
	memory *memory.Service
	interp *interpreter.Interpreter
	now    func() time.Time
}

// NewService creates a session service
func NewService(mem *memory.Service, interp *interpreter.Interpreter) *Service {
	return &Service{memory: mem, interp: interp, now: time.Now}
}

// Memory exposes the memory service
func (s *Service) Memory() *memory.Service {
	return s.memory
}

// ProcessInput runs one friend-voice turn for userKey. Extraction and
// memory storage failures are logged and do not fail the turn.
func (s *Service) ProcessInput(ctx context.Context, userKey, input string) (*TurnResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}
	log := slog.With("user", userKey)

	mc, err := s.memory.BuildContext(ctx, userKey, turnRecentMemories, turnRelevantMemories)
	if err != nil {
		return nil, err
	}
	exchanges, err := s.memory.RecentInteractionContext(ctx, userKey, turnRecentExchanges)
	if err != nil {
		return nil, err
	}
	stats, err := s.memory.Store().RelationshipStats(ctx, mc.User.ID, s.now())
	if err != nil {
		return nil, err
	}

	reply, err := s.interp.GenerateResponse(ctx, input, mc.Recent, mc.Relevant, exchanges, &stats)
	if err != nil {
		return nil, err
	}
	result := &TurnResult{Response: reply.Text, Unlocked: []models.Achievement{}}

	observations, err := s.interp.ExtractMemories(ctx, input, reply.Text, interpreter.FormatHistory(exchanges))
	if err != nil {
		log.Warn("memory extraction failed", "error", err)
	} else if len(observations) > 0 {
		stored, err := s.memory.BatchStoreObservations(ctx, userKey, observations)
		if err != nil {
			log.Warn("storing memories failed", "error", err, "stored", len(stored))
		}
		result.MemoriesStored = len(stored)
	}

	if err := s.finishTurn(ctx, userKey, mc.User.ID, input, reply.Text, models.PersonaFriend); err != nil {
		return nil, err
	}

	unlocked, err := s.memory.Store().CheckAndUnlockAchievements(ctx, mc.User.ID, s.now())
	if err != nil {
		log.Warn("achievement check failed", "error", err)
	} else if len(unlocked) > 0 {
		result.Unlocked = unlocked
	}

	log.Info("turn processed", "memories_stored", result.MemoriesStored, "unlocked", len(result.Unlocked),
		"first", reply.First, "returning", reply.Returning)
	return result, nil
}

// EndSession produces the closing summary for userKey
func (s *Service) EndSession(ctx context.Context, userKey string) (string, error) {
	mc, err := s.memory.BuildContext(ctx, userKey, summaryRecentMemories, summaryRelevantMemories)
	if err != nil {
		return "", err
	}
	exchanges, err := s.memory.RecentInteractionContext(ctx, userKey, summaryRecentExchanges)
	if err != nil {
		return "", err
	}
	return s.interp.GenerateSessionSummary(ctx, mc.Recent, mc.Relevant, exchanges), nil
}

// ProcessCoachInput runs one coach-voice turn, steering toward recurring challenges
func (s *Service) ProcessCoachInput(ctx context.Context, userKey, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyInput
	}

	mc, err := s.memory.BuildContext(ctx, userKey, turnRecentMemories, turnRelevantMemories)
	if err != nil {
		return "", err
	}
	areas, err := s.memory.AreasToWorkOn(ctx, userKey, coachAreas)
	if err != nil {
		return "", err
	}

	response, err := s.interp.CoachResponse(ctx, input, interpreter.BuildCoachContext(mc.Recent, mc.Relevant, areas))
	if err != nil {
		return "", err
	}

	if err := s.finishTurn(ctx, userKey, mc.User.ID, input, response, models.PersonaCoach); err != nil {
		return "", err
	}
	slog.Info("coach turn processed", "user", userKey, "areas", len(areas))
	return response, nil
}

// InterpretPattern reads the user's history in category against the current situation
func (s *Service) InterpretPattern(ctx context.Context, userKey, category, current string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", ErrEmptyCategory
	}
	history, err := s.memory.PatternHistory(ctx, userKey, category)
	if err != nil {
		return "", err
	}
	return s.interp.InterpretPattern(ctx, category, history, current)
}

func (s *Service) finishTurn(ctx context.Context, userKey string, userID int64, input, response, persona string) error {
	if _, err := s.memory.LogInteraction(ctx, userKey, input, response, persona); err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	if _, err := s.memory.Store().UpdateUserStats(ctx, userID, s.now()); err != nil {
		return err
	}
	return nil
}
