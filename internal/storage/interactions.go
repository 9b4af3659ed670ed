// ABOUTME: Interaction log persistence, append-only
// ABOUTME: Newest-first reads feed recent-exchange context and session history
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harper/confidant/internal/models"
)

const interactionColumns = `id, user_id, user_input, agent_response, persona, created_at`

// InteractionStore handles interaction persistence
type InteractionStore struct {
	db *DB
}

// NewInteractionStore creates a new InteractionStore
func NewInteractionStore(db *DB) *InteractionStore {
	return &InteractionStore{db: db}
}

// CreateInteraction appends one exchange and fills in its ID and CreatedAt
func (s *InteractionStore) CreateInteraction(ctx context.Context, log *models.InteractionLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	log.CreatedAt = log.CreatedAt.UTC()
	if log.Persona == "" {
		log.Persona = models.PersonaFriend
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO interactions (user_id, user_input, agent_response, persona, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, log.UserID, log.UserInput, log.AgentResponse, log.Persona, log.CreatedAt).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}
	return nil
}

// RecentInteractions returns up to limit exchanges, newest first
func (s *InteractionStore) RecentInteractions(ctx context.Context, userID int64, limit int) ([]models.InteractionLog, error) {
	query := `SELECT ` + interactionColumns + ` FROM interactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	return scanInteractions(rows)
}

// AllInteractions returns every exchange in chronological order
func (s *InteractionStore) AllInteractions(ctx context.Context, userID int64) ([]models.InteractionLog, error) {
	rows, err := s.db.Query(ctx, `SELECT `+interactionColumns+` FROM interactions
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	return scanInteractions(rows)
}

// CountInteractions counts a user's logged exchanges
func (s *InteractionStore) CountInteractions(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM interactions WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}
	return n, nil
}

// LastInteraction returns the newest exchange, nil when there is none
func (s *InteractionStore) LastInteraction(ctx context.Context, userID int64) (*models.InteractionLog, error) {
	logs, err := s.RecentInteractions(ctx, userID, 1)
	if err != nil || len(logs) == 0 {
		return nil, err
	}
	return &logs[0], nil
}

func scanInteractions(rows *sql.Rows) ([]models.InteractionLog, error) {
	defer func() { _ = rows.Close() }()

	var logs []models.InteractionLog
	for rows.Next() {
		var l models.InteractionLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.UserInput, &l.AgentResponse, &l.Persona, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
