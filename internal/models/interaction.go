// ABOUTME: InteractionLog records one user message and the reply it received
// ABOUTME: Rows are append-only and feed recent-exchange context
package models

import "time"

// Personas recorded on interaction rows
const (
	PersonaFriend = "friend"
	PersonaCoach  = "coach"
)

// InteractionLog is one completed exchange
type InteractionLog struct {
	ID            int64     `json:"id" yaml:"id"`
	UserID        int64     `json:"user_id" yaml:"user_id"`
	UserInput     string    `json:"user_input" yaml:"user_input"`
	AgentResponse string    `json:"agent_response" yaml:"agent_response"`
	Persona       string    `json:"persona" yaml:"persona"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// Exchange is the prompt-facing view of an interaction
type Exchange struct {
	UserInput     string    `json:"user_input"`
	AgentResponse string    `json:"agent_response"`
	Timestamp     time.Time `json:"timestamp"`
}
