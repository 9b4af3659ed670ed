// ABOUTME: Provider interface, request/response types and the tier router
// ABOUTME: Callers pick a tier; the router resolves provider and model
package llm

import (
	"context"
	"io"
)

// Message is one chat message
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// Request holds parameters for a completion
type Request struct {
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// UserRequest builds a single-turn request
func UserRequest(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: "user", Content: prompt}},
	}
}

// Response is a completed generation
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	StopReason   string `json:"stop_reason"`
}

// Provider generates text completions
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Transcription is the result of speech-to-text
type Transcription struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcriber converts audio to text
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (*Transcription, error)
}

// Tier selects the quality/cost class of a call
type Tier int

const (
	TierChat     Tier = iota // conversational replies and summaries
	TierLight                // memory extraction
	TierAdvanced             // pattern interpretation
)

func (t Tier) String() string {
	switch t {
	case TierLight:
		return "light"
	case TierAdvanced:
		return "advanced"
	default:
		return "chat"
	}
}

// Route binds a tier to a provider and the model it should use
type Route struct {
	Provider Provider
	Model    string
}

// Router selects a provider by tier
type Router struct {
	routes map[Tier]Route
}

// NewRouter creates a router with the given tier mappings
func NewRouter(routes map[Tier]Route) *Router {
	return &Router{routes: routes}
}

// Complete routes req to the provider for tier, filling in the tier's model
// when req leaves it empty. Fallback chain: requested tier, chat, advanced, light.
func (r *Router) Complete(ctx context.Context, tier Tier, req Request) (*Response, error) {
	route, ok := r.resolve(tier)
	if !ok {
		return nil, ErrNoProvider
	}
	if req.Model == "" {
		req.Model = route.Model
	}
	return route.Provider.Complete(ctx, req)
}

// Has reports whether any provider can serve tier
func (r *Router) Has(tier Tier) bool {
	_, ok := r.resolve(tier)
	return ok
}

func (r *Router) resolve(tier Tier) (Route, bool) {
	if r == nil {
		return Route{}, false
	}
	if route, ok := r.routes[tier]; ok && route.Provider != nil {
		return route, true
	}
	for _, fallback := range []Tier{TierChat, TierAdvanced, TierLight} {
		if fallback == tier {
			continue
		}
		if route, ok := r.routes[fallback]; ok && route.Provider != nil {
			// The fallback provider keeps its own model
			return route, true
		}
	}
	return Route{}, false
}

// ErrNoProvider is returned when no provider is configured for the requested tier
var ErrNoProvider = &ProviderError{Message: "no provider configured for requested tier"}

// ProviderError represents an LLM provider failure
type ProviderError struct {
	Message    string
	StatusCode int
	Provider   string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Provider != "" {
		return e.Provider + ": " + e.Message
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
