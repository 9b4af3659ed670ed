// ABOUTME: Memory service turning extracted observations into rows and assembling context
// ABOUTME: Wraps storage with user-key resolution and the dashboard read models
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/harper/confidant/internal/models"
	"github.com/harper/confidant/internal/storage"
)

// HighRelevance is the minimum score for a memory to count as relevant context
const HighRelevance = 7

// SignificantRelevance is the score a memory is promoted to when it proves important
const SignificantRelevance = 9

const (
	maxDashboardMemories = 1000
	areaExampleCount     = 2
	areaExampleRunes     = 100
	minAreaFrequency     = 3
)

// Context is the memory slice handed to the interpreter for one turn
type Context struct {
	User     *models.User
	Recent   []models.Memory
	Relevant []models.Memory
}

// Empty reports whether the user has no memories at all
func (c Context) Empty() bool {
	return len(c.Recent) == 0 && len(c.Relevant) == 0
}

// Service handles memory formation and retrieval for user keys
type Service struct {
	store *storage.Storage
}

// NewService creates a memory service over store
func NewService(store *storage.Storage) *Service {
	return &Service{store: store}
}

// Store exposes the underlying storage
func (s *Service) Store() *storage.Storage {
	return s.store
}

// User resolves a user key, creating the user on first sight
func (s *Service) User(ctx context.Context, userKey string) (*models.User, error) {
	u, err := s.store.GetOrCreateUser(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %q: %w", userKey, err)
	}
	return u, nil
}

// StoreObservation persists a single observation for the user
func (s *Service) StoreObservation(ctx context.Context, userKey string, obs models.Observation) (*models.Memory, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return nil, err
	}
	m := memoryFromObservation(u.ID, obs)
	if err := s.store.CreateMemory(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// BatchStoreObservations stores every observation that carries text and
// returns the rows created. Items without observation text are skipped.
func (s *Service) BatchStoreObservations(ctx context.Context, userKey string, observations []models.Observation) ([]models.Memory, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return nil, err
	}

	var created []models.Memory
	for _, obs := range observations {
		if strings.TrimSpace(obs.Observation) == "" {
			continue
		}
		m := memoryFromObservation(u.ID, obs)
		if err := s.store.CreateMemory(ctx, &m); err != nil {
			return created, err
		}
		created = append(created, m)
	}
	return created, nil
}

func memoryFromObservation(userID int64, obs models.Observation) models.Memory {
	return models.Memory{
		UserID:               userID,
		Observation:          strings.TrimSpace(obs.Observation),
		Interpretation:       strings.TrimSpace(obs.Interpretation),
		Category:             strings.TrimSpace(obs.Category),
		RelevanceScore:       models.ClampRelevance(obs.RelevanceScore),
		FollowUpQuestion:     strings.TrimSpace(obs.FollowUpQuestion),
		PeopleMentioned:      models.NormalizePeople(obs.PeopleMentioned),
		IsIdentityStatement:  obs.IsIdentityStatement,
		IsBreakthroughMoment: obs.IsBreakthroughMoment,
	}
}

// BuildContext gathers the newest memories and the high-relevance ones
func (s *Service) BuildContext(ctx context.Context, userKey string, includeRecent, includeRelevant int) (Context, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return Context{}, err
	}

	recent, err := s.store.RecentMemories(ctx, u.ID, includeRecent, "")
	if err != nil {
		return Context{}, fmt.Errorf("failed to load recent memories: %w", err)
	}
	relevant, err := s.store.RelevantMemories(ctx, u.ID, HighRelevance, includeRelevant)
	if err != nil {
		return Context{}, fmt.Errorf("failed to load relevant memories: %w", err)
	}

	return Context{User: u, Recent: recent, Relevant: relevant}, nil
}

// PatternHistory returns every memory in one category, newest first
func (s *Service) PatternHistory(ctx context.Context, userKey, category string) ([]models.Memory, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return nil, err
	}
	return s.store.MemoriesByCategory(ctx, u.ID, category)
}

// MarkSignificant promotes a memory to the significant score
func (s *Service) MarkSignificant(ctx context.Context, memoryID int64) (*models.Memory, error) {
	m, err := s.store.UpdateMemoryRelevance(ctx, memoryID, SignificantRelevance)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("memory %d: %w", memoryID, storage.ErrNotFound)
	}
	return m, nil
}

// DecayRelevance lowers a memory's score by amount, never below the minimum
func (s *Service) DecayRelevance(ctx context.Context, memoryID int64, amount int) (*models.Memory, error) {
	if amount < 0 {
		return nil, fmt.Errorf("decay amount must be non-negative, got %d", amount)
	}
	current, err := s.store.GetMemory(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("memory %d: %w", memoryID, storage.ErrNotFound)
	}

	score := current.RelevanceScore - amount
	if score < models.MinRelevance {
		score = models.MinRelevance
	}
	if score == current.RelevanceScore {
		return current, nil
	}

	m, err := s.store.UpdateMemoryRelevance(ctx, memoryID, score)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("memory %d: %w", memoryID, storage.ErrNotFound)
	}
	return m, nil
}

// LogInteraction records one exchange under persona
func (s *Service) LogInteraction(ctx context.Context, userKey, input, response, persona string) (*models.InteractionLog, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return nil, err
	}
	entry := &models.InteractionLog{
		UserID:        u.ID,
		UserInput:     input,
		AgentResponse: response,
		Persona:       persona,
	}
	if err := s.store.CreateInteraction(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RecentInteractionContext returns the latest exchanges, newest first.
// Rows with a blank side are dropped.
func (s *Service) RecentInteractionContext(ctx context.Context, userKey string, limit int) ([]models.Exchange, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.RecentInteractions(ctx, u.ID, limit)
	if err != nil {
		return nil, err
	}

	exchanges := make([]models.Exchange, 0, len(logs))
	for _, l := range logs {
		if strings.TrimSpace(l.UserInput) == "" || strings.TrimSpace(l.AgentResponse) == "" {
			continue
		}
		exchanges = append(exchanges, models.Exchange{
			UserInput:     l.UserInput,
			AgentResponse: l.AgentResponse,
			Timestamp:     l.CreatedAt,
		})
	}
	return exchanges, nil
}

// FormatMemories renders memories as prompt lines
func FormatMemories(memories []models.Memory) string {
	if len(memories) == 0 {
		return "No prior observations available."
	}

	lines := make([]string, 0, len(memories))
	for _, m := range memories {
		tag := "[observation]"
		if m.Category != "" {
			tag = "[" + m.Category + "]"
		}
		line := tag + " " + m.Observation
		if m.Interpretation != "" {
			line += " → " + m.Interpretation
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Categories returns the user's distinct memory categories, sorted
func (s *Service) Categories(ctx context.Context, userKey string) ([]string, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return nil, err
	}
	return s.store.Categories(ctx, u.ID)
}

// PeopleMentioned returns everyone the user has mentioned, sorted and deduplicated
func (s *Service) PeopleMentioned(ctx context.Context, userKey string) ([]string, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return nil, err
	}
	return s.store.DistinctPeople(ctx, u.ID)
}

// DashboardStats counts sessions, memories and active categories
func (s *Service) DashboardStats(ctx context.Context, userKey string) (models.DashboardStats, error) {
	var stats models.DashboardStats

	u, err := s.User(ctx, userKey)
	if err != nil {
		return stats, err
	}
	if stats.TotalSessions, err = s.store.CountInteractions(ctx, u.ID); err != nil {
		return stats, err
	}
	if stats.TotalMemories, err = s.store.CountMemories(ctx, u.ID); err != nil {
		return stats, err
	}
	categories, err := s.store.Categories(ctx, u.ID)
	if err != nil {
		return stats, err
	}
	stats.ActivePatterns = len(categories)

	last, err := s.store.LastInteraction(ctx, u.ID)
	if err != nil {
		return stats, err
	}
	if last != nil {
		t := last.CreatedAt
		stats.LastSession = &t
	}
	return stats, nil
}

// AreasToWorkOn returns struggle themes seen at least three times, most frequent first
func (s *Service) AreasToWorkOn(ctx context.Context, userKey string, limit int) ([]models.AreaToWorkOn, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return nil, err
	}
	memories, err := s.store.RecentMemories(ctx, u.ID, maxDashboardMemories, "")
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.Memory)
	for _, m := range memories {
		if models.IsStruggleCategory(m.Category) {
			grouped[m.Category] = append(grouped[m.Category], m)
		}
	}

	areas := make([]models.AreaToWorkOn, 0, len(grouped))
	for category, mems := range grouped {
		if len(mems) < minAreaFrequency {
			continue
		}
		examples := make([]string, 0, areaExampleCount)
		for i := 0; i < len(mems) && i < areaExampleCount; i++ {
			examples = append(examples, truncateRunes(mems[i].Observation, areaExampleRunes))
		}
		areas = append(areas, models.AreaToWorkOn{
			Title:       titleCase(category),
			Description: fmt.Sprintf("This theme has appeared %d times in your reflections", len(mems)),
			Category:    category,
			Frequency:   len(mems),
			Examples:    examples,
		})
	}

	sort.Slice(areas, func(i, j int) bool {
		if areas[i].Frequency != areas[j].Frequency {
			return areas[i].Frequency > areas[j].Frequency
		}
		return areas[i].Category < areas[j].Category
	})
	if limit > 0 && len(areas) > limit {
		areas = areas[:limit]
	}

	slog.Debug("areas to work on computed", "user", userKey, "areas", len(areas))
	return areas, nil
}

// RelationshipStats returns the relationship view for a user key
func (s *Service) RelationshipStats(ctx context.Context, userKey string, now time.Time) (models.RelationshipStats, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return models.RelationshipStats{}, err
	}
	return s.store.RelationshipStats(ctx, u.ID, now)
}

// StreakStatus returns the streak view for a user key
func (s *Service) StreakStatus(ctx context.Context, userKey string, now time.Time) (models.StreakStatus, error) {
	u, err := s.User(ctx, userKey)
	if err != nil {
		return models.StreakStatus{}, err
	}
	return s.store.StreakStatus(ctx, u.ID, now)
}

func titleCase(category string) string {
	words := strings.Fields(strings.ReplaceAll(category, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
