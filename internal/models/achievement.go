// ABOUTME: Achievement records a milestone a user unlocked
// ABOUTME: AchievementDef carries the display metadata for each key
package models

import "time"

// Achievement is an unlocked milestone; (UserID, Key) is unique
type Achievement struct {
	ID         int64     `json:"id" yaml:"id"`
	UserID     int64     `json:"user_id" yaml:"user_id"`
	Key        string    `json:"achievement_key" yaml:"achievement_key"`
	UnlockedAt time.Time `json:"unlocked_at" yaml:"unlocked_at"`
	Celebrated bool      `json:"celebrated" yaml:"celebrated"`
}

// AchievementDef describes an achievement for display
type AchievementDef struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Group       string `json:"group"`
}
