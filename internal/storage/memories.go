// ABOUTME: Memory persistence and the filtered queries context assembly relies on
// ABOUTME: People lists are stored as JSON text and parsed leniently on read
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/harper/confidant/internal/models"
)

const memoryColumns = `id, user_id, observation, interpretation, category, relevance_score,
	follow_up_question, people_mentioned, is_identity_statement, is_breakthrough_moment, created_at`

// Flag selects one of the boolean memory markers
type Flag int

const (
	FlagIdentity Flag = iota
	FlagBreakthrough
)

func (f Flag) column() string {
	if f == FlagBreakthrough {
		return "is_breakthrough_moment"
	}
	return "is_identity_statement"
}

// MemoryStore handles memory persistence
type MemoryStore struct {
	db *DB
}

// NewMemoryStore creates a new MemoryStore
func NewMemoryStore(db *DB) *MemoryStore {
	return &MemoryStore{db: db}
}

// CreateMemory inserts m and fills in its ID and CreatedAt
func (s *MemoryStore) CreateMemory(ctx context.Context, m *models.Memory) error {
	if m.Observation == "" {
		return fmt.Errorf("memory observation cannot be empty")
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.CreatedAt = m.CreatedAt.UTC()
	m.RelevanceScore = models.ClampRelevance(m.RelevanceScore)

	people, err := encodePeople(m.PeopleMentioned)
	if err != nil {
		return err
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO memories (user_id, observation, interpretation, category, relevance_score,
			follow_up_question, people_mentioned, is_identity_statement, is_breakthrough_moment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, m.UserID, m.Observation, nullString(m.Interpretation), nullString(m.Category), m.RelevanceScore,
		nullString(m.FollowUpQuestion), people, m.IsIdentityStatement, m.IsBreakthroughMoment,
		m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to create memory: %w", err)
	}
	return nil
}

// GetMemory retrieves a memory by id, nil when missing
func (s *MemoryStore) GetMemory(ctx context.Context, id int64) (*models.Memory, error) {
	rows, err := s.db.Query(ctx, `SELECT `+memoryColumns+` FROM memories WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	memories, err := scanMemories(rows)
	if err != nil || len(memories) == 0 {
		return nil, err
	}
	return &memories[0], nil
}

// UpdateMemoryRelevance sets a memory's score, returning nil when the memory is missing
func (s *MemoryStore) UpdateMemoryRelevance(ctx context.Context, id int64, score int) (*models.Memory, error) {
	score = models.BoundRelevance(score)
	result, err := s.db.Exec(ctx, `UPDATE memories SET relevance_score = ? WHERE id = ?`, score, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update relevance: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return s.GetMemory(ctx, id)
}

// RecentMemories returns the newest memories, optionally limited to one category
func (s *MemoryStore) RecentMemories(ctx context.Context, userID int64, limit int, category string) ([]models.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM memories WHERE user_id = ?`
	args := []interface{}{userID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	return s.list(ctx, query, args, limit)
}

// RelevantMemories returns memories at or above minRelevance, most relevant first.
// Ties break by recency, then id.
func (s *MemoryStore) RelevantMemories(ctx context.Context, userID int64, minRelevance, limit int) ([]models.Memory, error) {
	return s.list(ctx, `SELECT `+memoryColumns+` FROM memories
		WHERE user_id = ? AND relevance_score >= ?
		ORDER BY relevance_score DESC, created_at DESC, id DESC`,
		[]interface{}{userID, minRelevance}, limit)
}

// MemoriesByCategory returns every memory of one category, newest first
func (s *MemoryStore) MemoriesByCategory(ctx context.Context, userID int64, category string) ([]models.Memory, error) {
	return s.RecentMemories(ctx, userID, 0, category)
}

// IdentityStatements returns memories flagged as statements about self
func (s *MemoryStore) IdentityStatements(ctx context.Context, userID int64, limit int) ([]models.Memory, error) {
	return s.list(ctx, `SELECT `+memoryColumns+` FROM memories
		WHERE user_id = ? AND is_identity_statement = ?
		ORDER BY created_at DESC, id DESC`,
		[]interface{}{userID, true}, limit)
}

// BreakthroughMoments returns flagged breakthroughs and memories categorised as one
func (s *MemoryStore) BreakthroughMoments(ctx context.Context, userID int64, limit int) ([]models.Memory, error) {
	return s.list(ctx, `SELECT `+memoryColumns+` FROM memories
		WHERE user_id = ? AND (is_breakthrough_moment = ? OR category = ?)
		ORDER BY created_at DESC, id DESC`,
		[]interface{}{userID, true, models.CategoryBreakthroughMoment}, limit)
}

// FollowUpOpportunities returns memories carrying a follow-up question
func (s *MemoryStore) FollowUpOpportunities(ctx context.Context, userID int64, limit int) ([]models.Memory, error) {
	return s.list(ctx, `SELECT `+memoryColumns+` FROM memories
		WHERE user_id = ? AND follow_up_question IS NOT NULL AND follow_up_question <> ''
		ORDER BY created_at DESC, id DESC`,
		[]interface{}{userID}, limit)
}

// AllMemories returns every memory for a user in creation order
func (s *MemoryStore) AllMemories(ctx context.Context, userID int64) ([]models.Memory, error) {
	return s.list(ctx, `SELECT `+memoryColumns+` FROM memories
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC`,
		[]interface{}{userID}, 0)
}

// CountMemories counts all memories for a user
func (s *MemoryStore) CountMemories(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM memories WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}
	return n, nil
}

// CountFlag counts memories with the given marker set
func (s *MemoryStore) CountFlag(ctx context.Context, userID int64, flag Flag) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM memories WHERE user_id = ? AND `+flag.column()+` = ?`,
		userID, true).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count flagged memories: %w", err)
	}
	return n, nil
}

// Categories returns the distinct non-empty categories a user has, sorted
func (s *MemoryStore) Categories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT category FROM memories
		WHERE user_id = ? AND category IS NOT NULL AND category <> ''
		ORDER BY category
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DistinctPeople returns every person mentioned across a user's memories, sorted
func (s *MemoryStore) DistinctPeople(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT people_mentioned FROM memories
		WHERE user_id = ? AND people_mentioned IS NOT NULL AND people_mentioned <> ''
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[string]bool)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, p := range models.ParsePeople(raw) {
			seen[p] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	people := make([]string, 0, len(seen))
	for p := range seen {
		people = append(people, p)
	}
	sort.Strings(people)
	return people, nil
}

func (s *MemoryStore) list(ctx context.Context, query string, args []interface{}, limit int) ([]models.Memory, error) {
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	return scanMemories(rows)
}

// scanMemories scans and closes rows
func scanMemories(rows *sql.Rows) ([]models.Memory, error) {
	defer func() { _ = rows.Close() }()

	var memories []models.Memory
	for rows.Next() {
		var (
			m              models.Memory
			interpretation sql.NullString
			category       sql.NullString
			followUp       sql.NullString
			people         sql.NullString
		)

		err := rows.Scan(&m.ID, &m.UserID, &m.Observation, &interpretation, &category,
			&m.RelevanceScore, &followUp, &people, &m.IsIdentityStatement,
			&m.IsBreakthroughMoment, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}

		m.Interpretation = interpretation.String
		m.Category = category.String
		m.FollowUpQuestion = followUp.String
		m.PeopleMentioned = models.ParsePeople(people.String)
		memories = append(memories, m)
	}

	return memories, rows.Err()
}

func encodePeople(people []string) (sql.NullString, error) {
	people = models.NormalizePeople(people)
	if len(people) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(people)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode people: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
