// ABOUTME: Achievement persistence with one row per (user, key)
// ABOUTME: Unlocking is idempotent through the unique constraint
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harper/confidant/internal/models"
)

const achievementColumns = `id, user_id, achievement_key, unlocked_at, celebrated`

// AchievementStore handles achievement persistence
type AchievementStore struct {
	db *DB
}

// NewAchievementStore creates a new AchievementStore
func NewAchievementStore(db *DB) *AchievementStore {
	return &AchievementStore{db: db}
}

// ListAchievements returns every unlocked achievement, newest first
func (s *AchievementStore) ListAchievements(ctx context.Context, userID int64) ([]models.Achievement, error) {
	return s.list(ctx, `SELECT `+achievementColumns+` FROM achievements
		WHERE user_id = ?
		ORDER BY unlocked_at DESC, id DESC`, userID)
}

// UncelebratedAchievements returns achievements not yet shown, oldest first
func (s *AchievementStore) UncelebratedAchievements(ctx context.Context, userID int64) ([]models.Achievement, error) {
	return s.list(ctx, `SELECT `+achievementColumns+` FROM achievements
		WHERE user_id = ? AND celebrated = ?
		ORDER BY unlocked_at ASC, id ASC`, userID, false)
}

// HasAchievement reports whether the user already holds key
func (s *AchievementStore) HasAchievement(ctx context.Context, userID int64, key string) (bool, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM achievements WHERE user_id = ? AND achievement_key = ?`,
		userID, key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check achievement: %w", err)
	}
	return n > 0, nil
}

// UnlockAchievement records key for the user. Returns nil when already held.
func (s *AchievementStore) UnlockAchievement(ctx context.Context, userID int64, key string, at time.Time) (*models.Achievement, error) {
	if at.IsZero() {
		at = time.Now()
	}
	a := models.Achievement{UserID: userID, Key: key, UnlockedAt: at.UTC()}

	err := s.db.QueryRow(ctx, `
		INSERT INTO achievements (user_id, achievement_key, unlocked_at, celebrated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, achievement_key) DO NOTHING
		RETURNING id
	`, userID, key, a.UnlockedAt, false).Scan(&a.ID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unlock achievement %s: %w", key, err)
	}
	return &a, nil
}

// MarkCelebrated flags an achievement as shown. Returns nil when the
// achievement is missing or belongs to another user.
func (s *AchievementStore) MarkCelebrated(ctx context.Context, userID, achievementID int64) (*models.Achievement, error) {
	result, err := s.db.Exec(ctx,
		`UPDATE achievements SET celebrated = ? WHERE id = ? AND user_id = ?`,
		true, achievementID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to celebrate achievement: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}

	found, err := s.list(ctx, `SELECT `+achievementColumns+` FROM achievements WHERE id = ?`, achievementID)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (s *AchievementStore) list(ctx context.Context, query string, args ...interface{}) ([]models.Achievement, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var achievements []models.Achievement
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.Key, &a.UnlockedAt, &a.Celebrated); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}
