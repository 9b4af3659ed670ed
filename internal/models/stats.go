// ABOUTME: Read-model structs for relationship, streak and dashboard views
// ABOUTME: Computed from users, memories and interactions, never stored
package models

import "time"

// RelationshipStats summarises how long and how deeply a user has engaged
type RelationshipStats struct {
	DaysTogether         int    `json:"days_together"`
	TotalSessions        int    `json:"total_sessions"`
	CurrentStreak        int    `json:"current_streak"`
	LongestStreak        int    `json:"longest_streak"`
	ConnectionDepth      int    `json:"connection_depth"`
	ConnectionDepthLabel string `json:"connection_depth_label"`
}

// StreakStatus tells a client whether today's check-in is still pending
type StreakStatus struct {
	CurrentStreak      int  `json:"current_streak"`
	StreakAtRisk       bool `json:"streak_at_risk"`
	HasInteractedToday bool `json:"has_interacted_today"`
	LongestStreak      int  `json:"longest_streak"`
}

// DashboardStats backs the dashboard header
type DashboardStats struct {
	TotalSessions  int        `json:"total_sessions"`
	TotalMemories  int        `json:"total_memories"`
	ActivePatterns int        `json:"active_patterns"`
	LastSession    *time.Time `json:"last_session"`
}

// AreaToWorkOn is a struggle theme that keeps recurring
type AreaToWorkOn struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Frequency   int      `json:"frequency"`
	Examples    []string `json:"examples"`
}
