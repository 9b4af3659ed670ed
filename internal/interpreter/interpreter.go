// ABOUTME: Interpreter drives the LLM calls behind a turn: reply, extraction, patterns, summaries
// ABOUTME: Each call picks a router tier and a persona voice
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harper/confidant/internal/llm"
	"github.com/harper/confidant/internal/models"
	"github.com/harper/confidant/internal/persona"
)

// ClosingFallback is returned when a session summary cannot be generated
const ClosingFallback = "Thanks for sharing today. Take care, and looking forward to our next conversation."

// Call parameters per operation
const (
	extractionTemperature = 0.3
	extractionMaxTokens   = 700
	patternTemperature    = 0.7
	patternMaxTokens      = 200
)

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("model returned an empty response")

// Completer is the routing surface the interpreter needs
type Completer interface {
	Complete(ctx context.Context, tier llm.Tier, req llm.Request) (*llm.Response, error)
}

// Interpreter builds prompts and calls the model
type Interpreter struct {
	llm      Completer
	personas *persona.Registry
	budget   *Budget
}

// New creates an interpreter. personas and budget may be nil for defaults.
func New(completer Completer, personas *persona.Registry, budget *Budget) *Interpreter {
	if personas == nil {
		personas = persona.Builtins()
	}
	return &Interpreter{llm: completer, personas: personas, budget: budget}
}

// Reply is the generated response to one message
type Reply struct {
	Text      string
	First     bool
	Returning bool
}

// GenerateResponse produces the friend-voice reply to input
func (in *Interpreter) GenerateResponse(ctx context.Context, input string, recent, relevant []models.Memory, exchanges []models.Exchange, stats *models.RelationshipStats) (*Reply, error) {
	first := len(recent) == 0 && len(relevant) == 0 && len(exchanges) == 0
	returning := !first && len(exchanges) > 0

	known := in.budget.Fit(BuildContextPrompt(recent, relevant, exchanges, stats))
	voice := in.personas.Get(persona.Friend)

	text, err := in.complete(ctx, llm.TierChat, llm.UserRequest(voice.SystemPrompt, BuildUserPrompt(input, known, first, returning)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}
	return &Reply{Text: text, First: first, Returning: returning}, nil
}

// ExtractMemories asks the light tier what is worth remembering from an
// exchange. Unparseable output yields no observations rather than an error.
func (in *Interpreter) ExtractMemories(ctx context.Context, input, reply, history string) ([]models.Observation, error) {
	req := llm.UserRequest(extractionSystemPrompt, buildExtractionPrompt(input, reply, history))
	req.Temperature = extractionTemperature
	req.MaxTokens = extractionMaxTokens

	resp, err := in.llm.Complete(ctx, llm.TierLight, req)
	if err != nil {
		return nil, fmt.Errorf("failed to extract memories: %w", err)
	}

	observations, err := ParseObservations(resp.Content)
	if err != nil {
		slog.Warn("memory extraction output unparseable", "error", err)
		return []models.Observation{}, nil
	}
	return observations, nil
}

// InterpretPattern reads meaning into a recurring category
func (in *Interpreter) InterpretPattern(ctx context.Context, category string, history []models.Memory, current string) (string, error) {
	req := llm.UserRequest(in.personas.Get(persona.Friend).SystemPrompt, buildPatternPrompt(category, history, current))
	req.Temperature = patternTemperature
	req.MaxTokens = patternMaxTokens

	text, err := in.complete(ctx, llm.TierAdvanced, req)
	if err != nil {
		return "", fmt.Errorf("failed to interpret pattern: %w", err)
	}
	return text, nil
}

// GenerateSessionSummary closes a session. Model failures fall back to a fixed closing line.
func (in *Interpreter) GenerateSessionSummary(ctx context.Context, recent, relevant []models.Memory, exchanges []models.Exchange) string {
	req := llm.UserRequest(in.personas.Get(persona.Friend).SystemPrompt, buildSummaryPrompt(relevant, exchanges))

	text, err := in.complete(ctx, llm.TierChat, req)
	if err != nil {
		slog.Warn("session summary failed, using closing fallback", "error", err, "recent_memories", len(recent))
		return ClosingFallback
	}
	return text
}

// CoachResponse produces the coach-voice reply given a prepared coach context
func (in *Interpreter) CoachResponse(ctx context.Context, input, coachContext string) (string, error) {
	voice := in.personas.Get(persona.Coach)
	prompt := buildCoachPrompt(input, in.budget.Fit(coachContext), voice.ResponseGuidance)

	text, err := in.complete(ctx, llm.TierChat, llm.UserRequest(voice.SystemPrompt, prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate coach response: %w", err)
	}
	return text, nil
}

func (in *Interpreter) complete(ctx context.Context, tier llm.Tier, req llm.Request) (string, error) {
	resp, err := in.llm.Complete(ctx, tier, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
