// ABOUTME: User persistence: lookup by key, creation and counter updates
// ABOUTME: Creation is idempotent on the unique user_key
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harper/confidant/internal/models"
)

const userColumns = `id, user_key, created_at, first_interaction_at, last_interaction_at,
	total_sessions, current_streak, longest_streak, connection_depth`

// UserStore handles user persistence
type UserStore struct {
	db *DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// GetOrCreateUser returns the user for key, inserting a fresh row on first sight
func (s *UserStore) GetOrCreateUser(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, fmt.Errorf("user key cannot be empty")
	}

	user, err := s.GetUserByKey(ctx, key)
	if err != nil || user != nil {
		return user, err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO users (user_key, created_at, total_sessions, current_streak, longest_streak, connection_depth)
		VALUES (?, ?, 0, 0, 0, ?)
		ON CONFLICT (user_key) DO NOTHING
	`, key, time.Now().UTC(), models.MinConnectionDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err = s.GetUserByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %q missing after insert", key)
	}
	return user, nil
}

// GetUserByKey retrieves a user by external key, nil when unknown
func (s *UserStore) GetUserByKey(ctx context.Context, key string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_key = ?`, key)
	return scanUserRow(row)
}

// GetUser retrieves a user by id, nil when unknown
func (s *UserStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return getUser(ctx, s.db, id, "")
}

// SaveUserStats writes the relationship counters of u
func (s *UserStore) SaveUserStats(ctx context.Context, u *models.User) error {
	return saveUserStats(ctx, s.db, u)
}

func getUser(ctx context.Context, r runner, id int64, lock string) (*models.User, error) {
	row := r.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`+lock, id)
	return scanUserRow(row)
}

func saveUserStats(ctx context.Context, r runner, u *models.User) error {
	_, err := r.Exec(ctx, `
		UPDATE users SET
			first_interaction_at = ?,
			last_interaction_at = ?,
			total_sessions = ?,
			current_streak = ?,
			longest_streak = ?,
			connection_depth = ?
		WHERE id = ?
	`, toNullTime(u.FirstInteractionAt), toNullTime(u.LastInteractionAt),
		u.TotalSessions, u.CurrentStreak, u.LongestStreak, u.ConnectionDepth, u.ID)
	if err != nil {
		return fmt.Errorf("failed to save user stats: %w", err)
	}
	return nil
}

func scanUserRow(row *sql.Row) (*models.User, error) {
	var (
		u     models.User
		first sql.NullTime
		last  sql.NullTime
	)

	err := row.Scan(&u.ID, &u.UserKey, &u.CreatedAt, &first, &last,
		&u.TotalSessions, &u.CurrentStreak, &u.LongestStreak, &u.ConnectionDepth)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.FirstInteractionAt = nullTime(first)
	u.LastInteractionAt = nullTime(last)
	return &u, nil
}
