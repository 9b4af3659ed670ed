// ABOUTME: Unified Storage layer that wraps the per-entity stores
// ABOUTME: Hosts the compound operations that span users, memories and achievements
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/confidant/internal/models"
	"github.com/harper/confidant/internal/relationship"
)

// ErrNotFound is returned by callers that need a missing row to be an error
var ErrNotFound = errors.New("not found")

// Storage manages all persistent data. The embedded stores supply the
// per-entity operations.
type Storage struct {
	*UserStore
	*MemoryStore
	*InteractionStore
	*AchievementStore

	db *DB
}

// New opens dsn (Postgres URL or SQLite path) and initialises the schema
func New(dsn string) (*Storage, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewInMemory creates an in-memory storage (for testing)
func NewInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		UserStore:        NewUserStore(db),
		MemoryStore:      NewMemoryStore(db),
		InteractionStore: NewInteractionStore(db),
		AchievementStore: NewAchievementStore(db),
		db:               db,
	}
}

// DB exposes the underlying database
func (s *Storage) DB() *DB {
	return s.db
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// UpdateUserStats applies one completed turn at now to the user's counters,
// reading and writing inside a single transaction
func (s *Storage) UpdateUserStats(ctx context.Context, userID int64, now time.Time) (*models.User, error) {
	var updated *models.User

	err := s.db.InTx(ctx, func(tx *Tx) error {
		u, err := getUser(ctx, tx, userID, s.db.forUpdate())
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}

		relationship.ApplyTurn(u, now)
		if err := saveUserStats(ctx, tx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user stats: %w", err)
	}
	return updated, nil
}

// Progress gathers the counts achievement predicates are evaluated against
func (s *Storage) Progress(ctx context.Context, u *models.User) (relationship.Progress, error) {
	p := relationship.Progress{
		TotalSessions:   u.TotalSessions,
		CurrentStreak:   u.CurrentStreak,
		ConnectionDepth: u.ConnectionDepth,
	}

	var err error
	if p.MemoryCount, err = s.CountMemories(ctx, u.ID); err != nil {
		return p, err
	}
	if p.BreakthroughCount, err = s.CountFlag(ctx, u.ID, FlagBreakthrough); err != nil {
		return p, err
	}
	if p.IdentityCount, err = s.CountFlag(ctx, u.ID, FlagIdentity); err != nil {
		return p, err
	}
	people, err := s.DistinctPeople(ctx, u.ID)
	if err != nil {
		return p, err
	}
	p.DistinctPeople = len(people)
	return p, nil
}

// CheckAndUnlockAchievements unlocks every earned achievement the user does
// not hold yet, stamping them with now, and returns only the newly unlocked rows
func (s *Storage) CheckAndUnlockAchievements(ctx context.Context, userID int64, now time.Time) ([]models.Achievement, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}

	progress, err := s.Progress(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to gather progress: %w", err)
	}

	var unlocked []models.Achievement
	for _, key := range relationship.Earned(progress) {
		a, err := s.UnlockAchievement(ctx, userID, key, now)
		if err != nil {
			return unlocked, err
		}
		if a != nil {
			unlocked = append(unlocked, *a)
		}
	}
	return unlocked, nil
}

// RelationshipStats returns the relationship view, zero-valued for unknown users
func (s *Storage) RelationshipStats(ctx context.Context, userID int64, now time.Time) (models.RelationshipStats, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return models.RelationshipStats{}, err
	}
	return relationship.Stats(u, now), nil
}

// StreakStatus returns the streak view, zero-valued for unknown users
func (s *Storage) StreakStatus(ctx context.Context, userID int64, now time.Time) (models.StreakStatus, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return models.StreakStatus{}, err
	}
	return relationship.Streak(u, now), nil
}
