// ABOUTME: User represents one journaling person and their relationship counters
// ABOUTME: Streak and depth fields are maintained by the relationship engine
package models

import "time"

// Depth bounds for the connection scale
const (
	MinConnectionDepth = 1
	MaxConnectionDepth = 5
)

// User is a person keyed by an external identifier
type User struct {
	ID                 int64      `json:"id" yaml:"id"`
	UserKey            string     `json:"user_id" yaml:"user_id"`
	CreatedAt          time.Time  `json:"created_at" yaml:"created_at"`
	FirstInteractionAt *time.Time `json:"first_interaction_at,omitempty" yaml:"first_interaction_at,omitempty"`
	LastInteractionAt  *time.Time `json:"last_interaction_at,omitempty" yaml:"last_interaction_at,omitempty"`
	TotalSessions      int        `json:"total_sessions" yaml:"total_sessions"`
	CurrentStreak      int        `json:"current_streak" yaml:"current_streak"`
	LongestStreak      int        `json:"longest_streak" yaml:"longest_streak"`
	ConnectionDepth    int        `json:"connection_depth" yaml:"connection_depth"`
}

// NewUser returns a user with zeroed counters and the minimum depth
func NewUser(key string) *User {
	return &User{
		UserKey:         key,
		CreatedAt:       time.Now(),
		ConnectionDepth: MinConnectionDepth,
	}
}

// HasInteracted reports whether the user has completed at least one turn
func (u *User) HasInteracted() bool {
	return u.LastInteractionAt != nil
}
