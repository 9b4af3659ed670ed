// ABOUTME: Tests for users, memories, interactions and achievements on in-memory SQLite
// ABOUTME: Covers ordering, idempotent unlocks, stats transactions and export
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harper/confidant/internal/models"
	"gopkg.in/yaml.v3"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Storage, key string) *models.User {
	t.Helper()
	u, err := s.GetOrCreateUser(context.Background(), key)
	if err != nil {
		t.Fatalf("GetOrCreateUser() error = %v", err)
	}
	return u
}

func addMemory(t *testing.T, s *Storage, m models.Memory) models.Memory {
	t.Helper()
	if err := s.CreateMemory(context.Background(), &m); err != nil {
		t.Fatalf("CreateMemory() error = %v", err)
	}
	return m
}

func TestGetOrCreateUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first := newTestUser(t, s, "alice")
	if first.ID == 0 {
		t.Fatal("expected user id to be set")
	}
	if first.ConnectionDepth != 1 || first.TotalSessions != 0 {
		t.Errorf("new user = %+v, want depth 1 and no sessions", first)
	}
	if first.LastInteractionAt != nil {
		t.Error("new user should have no last interaction")
	}

	again := newTestUser(t, s, "alice")
	if again.ID != first.ID {
		t.Errorf("second GetOrCreateUser() id = %d, want %d", again.ID, first.ID)
	}

	other := newTestUser(t, s, "bob")
	if other.ID == first.ID {
		t.Error("distinct keys should create distinct users")
	}

	missing, err := s.GetUser(ctx, 9999)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if missing != nil {
		t.Error("GetUser() for unknown id should be nil")
	}

	if _, err := s.GetOrCreateUser(ctx, ""); err == nil {
		t.Error("GetOrCreateUser(\"\") should fail")
	}
}

func TestCreateAndGetMemory(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")

	m := addMemory(t, s, models.Memory{
		UserID:              u.ID,
		Observation:         "Keeps overcommitting at work",
		Interpretation:      "People-pleasing",
		Category:            models.CategoryRecurringStruggle,
		RelevanceScore:      8,
		FollowUpQuestion:    "How's the workload?",
		PeopleMentioned:     []string{"boss", " boss ", "partner Alex"},
		IsIdentityStatement: true,
	})

	got, err := s.GetMemory(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMemory() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetMemory() returned nil")
	}
	if got.Observation != m.Observation || got.Interpretation != "People-pleasing" {
		t.Errorf("GetMemory() = %+v", got)
	}
	if len(got.PeopleMentioned) != 2 || got.PeopleMentioned[1] != "partner Alex" {
		t.Errorf("PeopleMentioned = %v, want [boss partner Alex]", got.PeopleMentioned)
	}
	if !got.IsIdentityStatement || got.IsBreakthroughMoment {
		t.Errorf("flags = identity %v breakthrough %v", got.IsIdentityStatement, got.IsBreakthroughMoment)
	}

	defaulted := addMemory(t, s, models.Memory{UserID: u.ID, Observation: "No score given"})
	if defaulted.RelevanceScore != models.DefaultRelevance {
		t.Errorf("RelevanceScore = %d, want default %d", defaulted.RelevanceScore, models.DefaultRelevance)
	}

	if err := s.CreateMemory(ctx, &models.Memory{UserID: u.ID}); err == nil {
		t.Error("CreateMemory() without observation should fail")
	}

	none, err := s.GetMemory(ctx, 4242)
	if err != nil || none != nil {
		t.Errorf("GetMemory(missing) = %v, %v; want nil, nil", none, err)
	}
}

func TestRecentMemoriesOrdering(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	oldest := addMemory(t, s, models.Memory{UserID: u.ID, Observation: "oldest", Category: "identity", CreatedAt: base})
	tieA := addMemory(t, s, models.Memory{UserID: u.ID, Observation: "tie a", Category: "fear_patterns", CreatedAt: base.Add(time.Hour)})
	tieB := addMemory(t, s, models.Memory{UserID: u.ID, Observation: "tie b", Category: "identity", CreatedAt: base.Add(time.Hour)})

	recent, err := s.RecentMemories(ctx, u.ID, 10, "")
	if err != nil {
		t.Fatalf("RecentMemories() error = %v", err)
	}
	wantIDs := []int64{tieB.ID, tieA.ID, oldest.ID}
	if len(recent) != len(wantIDs) {
		t.Fatalf("len(recent) = %d, want %d", len(recent), len(wantIDs))
	}
	for i, id := range wantIDs {
		if recent[i].ID != id {
			t.Errorf("recent[%d].ID = %d, want %d", i, recent[i].ID, id)
		}
	}

	limited, err := s.RecentMemories(ctx, u.ID, 1, "identity")
	if err != nil {
		t.Fatalf("RecentMemories(category) error = %v", err)
	}
	if len(limited) != 1 || limited[0].ID != tieB.ID {
		t.Errorf("RecentMemories(1, identity) = %+v", limited)
	}

	byCategory, err := s.MemoriesByCategory(ctx, u.ID, "identity")
	if err != nil {
		t.Fatalf("MemoriesByCategory() error = %v", err)
	}
	if len(byCategory) != 2 {
		t.Errorf("len(MemoriesByCategory) = %d, want 2", len(byCategory))
	}
}

func TestRelevantMemoriesOrdering(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	low := addMemory(t, s, models.Memory{UserID: u.ID, Observation: "low", RelevanceScore: 3, CreatedAt: base.Add(5 * time.Hour)})
	sevenOld := addMemory(t, s, models.Memory{UserID: u.ID, Observation: "seven old", RelevanceScore: 7, CreatedAt: base})
	sevenNew := addMemory(t, s, models.Memory{UserID: u.ID, Observation: "seven new", RelevanceScore: 7, CreatedAt: base.Add(2 * time.Hour)})
	nine := addMemory(t, s, models.Memory{UserID: u.ID, Observation: "nine", RelevanceScore: 9, CreatedAt: base.Add(-time.Hour)})
	sevenTie := addMemory(t, s, models.Memory{UserID: u.ID, Observation: "seven tie", RelevanceScore: 7, CreatedAt: base.Add(2 * time.Hour)})

	got, err := s.RelevantMemories(ctx, u.ID, 7, 10)
	if err != nil {
		t.Fatalf("RelevantMemories() error = %v", err)
	}

	want := []int64{nine.ID, sevenTie.ID, sevenNew.ID, sevenOld.ID}
	if len(got) != len(want) {
		t.Fatalf("len(RelevantMemories) = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("relevant[%d] = %q (id %d), want id %d", i, got[i].Observation, got[i].ID, id)
		}
	}
	for _, m := range got {
		if m.ID == low.ID {
			t.Error("low relevance memory should be excluded")
		}
	}
}

func TestMemoriesAreScopedToUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	addMemory(t, s, models.Memory{UserID: alice.ID, Observation: "alice thing", RelevanceScore: 9})
	addMemory(t, s, models.Memory{UserID: bob.ID, Observation: "bob thing", RelevanceScore: 9})

	got, err := s.RelevantMemories(ctx, alice.ID, 1, 10)
	if err != nil {
		t.Fatalf("RelevantMemories() error = %v", err)
	}
	if len(got) != 1 || got[0].Observation != "alice thing" {
		t.Errorf("RelevantMemories(alice) = %+v", got)
	}
}

func TestFlaggedQueries(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")

	addMemory(t, s, models.Memory{UserID: u.ID, Observation: "I'm a morning person", IsIdentityStatement: true})
	addMemory(t, s, models.Memory{UserID: u.ID, Observation: "Realized fear drives it", IsBreakthroughMoment: true})
	addMemory(t, s, models.Memory{UserID: u.ID, Observation: "Categorised realization", Category: models.CategoryBreakthroughMoment})
	addMemory(t, s, models.Memory{UserID: u.ID, Observation: "Has a follow up", FollowUpQuestion: "Did you call your sister?"})

	identity, err := s.IdentityStatements(ctx, u.ID, 10)
	if err != nil || len(identity) != 1 {
		t.Errorf("IdentityStatements() = %d items, err %v; want 1", len(identity), err)
	}

	breakthroughs, err := s.BreakthroughMoments(ctx, u.ID, 10)
	if err != nil || len(breakthroughs) != 2 {
		t.Errorf("BreakthroughMoments() = %d items, err %v; want 2", len(breakthroughs), err)
	}

	followUps, err := s.FollowUpOpportunities(ctx, u.ID, 5)
	if err != nil || len(followUps) != 1 {
		t.Errorf("FollowUpOpportunities() = %d items, err %v; want 1", len(followUps), err)
	}

	n, err := s.CountFlag(ctx, u.ID, FlagBreakthrough)
	if err != nil || n != 1 {
		t.Errorf("CountFlag(breakthrough) = %d, %v; want 1", n, err)
	}
	n, err = s.CountFlag(ctx, u.ID, FlagIdentity)
	if err != nil || n != 1 {
		t.Errorf("CountFlag(identity) = %d, %v; want 1", n, err)
	}
	total, err := s.CountMemories(ctx, u.ID)
	if err != nil || total != 4 {
		t.Errorf("CountMemories() = %d, %v; want 4", total, err)
	}
}

func TestCategoriesAndPeople(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")

	addMemory(t, s, models.Memory{UserID: u.ID, Observation: "a", Category: "identity", PeopleMentioned: []string{"Jordan", "mom"}})
	addMemory(t, s, models.Memory{UserID: u.ID, Observation: "b", Category: "fear_patterns", PeopleMentioned: []string{"mom"}})
	addMemory(t, s, models.Memory{UserID: u.ID, Observation: "c", Category: "identity"})
	addMemory(t, s, models.Memory{UserID: u.ID, Observation: "d"})

	// Legacy comma-separated row
	if _, err := s.DB().Exec(ctx, `UPDATE memories SET people_mentioned = ? WHERE observation = ?`, "boss, Alex", "d"); err != nil {
		t.Fatalf("legacy update error = %v", err)
	}

	categories, err := s.Categories(ctx, u.ID)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if strings.Join(categories, ",") != "fear_patterns,identity" {
		t.Errorf("Categories() = %v", categories)
	}

	people, err := s.DistinctPeople(ctx, u.ID)
	if err != nil {
		t.Fatalf("DistinctPeople() error = %v", err)
	}
	if strings.Join(people, ",") != "Alex,Jordan,boss,mom" {
		t.Errorf("DistinctPeople() = %v", people)
	}
}

func TestUpdateMemoryRelevance(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	m := addMemory(t, s, models.Memory{UserID: u.ID, Observation: "x", RelevanceScore: 4})

	updated, err := s.UpdateMemoryRelevance(ctx, m.ID, 9)
	if err != nil {
		t.Fatalf("UpdateMemoryRelevance() error = %v", err)
	}
	if updated == nil || updated.RelevanceScore != 9 {
		t.Errorf("UpdateMemoryRelevance() = %+v, want score 9", updated)
	}
	if updated.Observation != "x" {
		t.Error("UpdateMemoryRelevance() must not change other fields")
	}

	for _, tt := range []struct{ in, want int }{{0, 1}, {-3, 1}, {42, 10}} {
		got, err := s.UpdateMemoryRelevance(ctx, m.ID, tt.in)
		if err != nil {
			t.Fatalf("UpdateMemoryRelevance(%d) error = %v", tt.in, err)
		}
		if got.RelevanceScore != tt.want {
			t.Errorf("UpdateMemoryRelevance(%d) score = %d, want %d", tt.in, got.RelevanceScore, tt.want)
		}
	}

	missing, err := s.UpdateMemoryRelevance(ctx, 777, 9)
	if err != nil || missing != nil {
		t.Errorf("UpdateMemoryRelevance(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestInteractions(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	none, err := s.LastInteraction(ctx, u.ID)
	if err != nil || none != nil {
		t.Errorf("LastInteraction() with no rows = %v, %v", none, err)
	}

	for i, input := range []string{"first", "second", "third"} {
		log := &models.InteractionLog{
			UserID:        u.ID,
			UserInput:     input,
			AgentResponse: "reply to " + input,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.CreateInteraction(ctx, log); err != nil {
			t.Fatalf("CreateInteraction() error = %v", err)
		}
		if log.ID == 0 || log.Persona != models.PersonaFriend {
			t.Errorf("CreateInteraction() log = %+v", log)
		}
	}

	recent, err := s.RecentInteractions(ctx, u.ID, 2)
	if err != nil {
		t.Fatalf("RecentInteractions() error = %v", err)
	}
	if len(recent) != 2 || recent[0].UserInput != "third" || recent[1].UserInput != "second" {
		t.Errorf("RecentInteractions() = %+v", recent)
	}

	n, err := s.CountInteractions(ctx, u.ID)
	if err != nil || n != 3 {
		t.Errorf("CountInteractions() = %d, %v; want 3", n, err)
	}

	last, err := s.LastInteraction(ctx, u.ID)
	if err != nil || last == nil || last.UserInput != "third" {
		t.Errorf("LastInteraction() = %+v, %v", last, err)
	}
}

func TestUnlockAchievementIdempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")

	a, err := s.UnlockAchievement(ctx, u.ID, "first_step", time.Now())
	if err != nil {
		t.Fatalf("UnlockAchievement() error = %v", err)
	}
	if a == nil || a.ID == 0 || a.Celebrated {
		t.Fatalf("UnlockAchievement() = %+v", a)
	}

	again, err := s.UnlockAchievement(ctx, u.ID, "first_step", time.Now())
	if err != nil {
		t.Fatalf("second UnlockAchievement() error = %v", err)
	}
	if again != nil {
		t.Errorf("second UnlockAchievement() = %+v, want nil", again)
	}

	has, err := s.HasAchievement(ctx, u.ID, "first_step")
	if err != nil || !has {
		t.Errorf("HasAchievement() = %v, %v", has, err)
	}
	list, err := s.ListAchievements(ctx, u.ID)
	if err != nil || len(list) != 1 {
		t.Errorf("ListAchievements() = %d rows, %v; want 1", len(list), err)
	}
}

func TestMarkCelebrated(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, _ := s.UnlockAchievement(ctx, alice.ID, "first_step", base)
	second, _ := s.UnlockAchievement(ctx, alice.ID, "opening_up", base.Add(time.Minute))

	pending, err := s.UncelebratedAchievements(ctx, alice.ID)
	if err != nil {
		t.Fatalf("UncelebratedAchievements() error = %v", err)
	}
	if len(pending) != 2 || pending[0].ID != first.ID {
		t.Errorf("UncelebratedAchievements() = %+v, want oldest first", pending)
	}

	stolen, err := s.MarkCelebrated(ctx, bob.ID, first.ID)
	if err != nil || stolen != nil {
		t.Errorf("MarkCelebrated(other user) = %v, %v; want nil, nil", stolen, err)
	}

	done, err := s.MarkCelebrated(ctx, alice.ID, first.ID)
	if err != nil {
		t.Fatalf("MarkCelebrated() error = %v", err)
	}
	if done == nil || !done.Celebrated {
		t.Errorf("MarkCelebrated() = %+v, want celebrated", done)
	}

	pending, _ = s.UncelebratedAchievements(ctx, alice.ID)
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Errorf("UncelebratedAchievements() after celebrate = %+v", pending)
	}

	missing, err := s.MarkCelebrated(ctx, alice.ID, 9999)
	if err != nil || missing != nil {
		t.Errorf("MarkCelebrated(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestUpdateUserStats(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	updated, err := s.UpdateUserStats(ctx, u.ID, day1)
	if err != nil {
		t.Fatalf("UpdateUserStats() error = %v", err)
	}
	if updated.TotalSessions != 1 || updated.CurrentStreak != 1 {
		t.Errorf("after first turn = %+v", updated)
	}

	if _, err := s.UpdateUserStats(ctx, u.ID, day1.Add(2*time.Hour)); err != nil {
		t.Fatalf("UpdateUserStats() error = %v", err)
	}
	if _, err := s.UpdateUserStats(ctx, u.ID, day1.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("UpdateUserStats() error = %v", err)
	}

	stored, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if stored.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", stored.TotalSessions)
	}
	if stored.CurrentStreak != 2 || stored.LongestStreak != 2 {
		t.Errorf("streak = %d/%d, want 2/2", stored.CurrentStreak, stored.LongestStreak)
	}
	if stored.ConnectionDepth != 2 {
		t.Errorf("ConnectionDepth = %d, want 2", stored.ConnectionDepth)
	}
	if stored.FirstInteractionAt == nil || !stored.FirstInteractionAt.Equal(day1) {
		t.Errorf("FirstInteractionAt = %v, want %v", stored.FirstInteractionAt, day1)
	}

	_, err = s.UpdateUserStats(ctx, 9999, day1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUserStats(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateUserStatsConcurrentOnFile(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "concurrent.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	const turns = 25
	users := []*models.User{
		newTestUser(t, s, "alice"),
		newTestUser(t, s, "bob"),
		newTestUser(t, s, "carol"),
		newTestUser(t, s, "dave"),
	}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, len(users)*turns)
	for _, u := range users {
		for i := 0; i < turns; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				if _, err := s.UpdateUserStats(ctx, id, now); err != nil {
					errs <- err
				}
			}(u.ID)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("UpdateUserStats() error = %v", err)
	}
	for _, u := range users {
		stored, err := s.GetUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetUser() error = %v", err)
		}
		if stored.TotalSessions != turns {
			t.Errorf("%s TotalSessions = %d, want %d", stored.UserKey, stored.TotalSessions, turns)
		}
	}
}

func TestCheckAndUnlockAchievements(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	unlockAt := time.Date(2026, 3, 4, 18, 30, 0, 0, time.UTC)

	none, err := s.CheckAndUnlockAchievements(ctx, u.ID, unlockAt)
	if err != nil {
		t.Fatalf("CheckAndUnlockAchievements() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("fresh user unlocked %d achievements", len(none))
	}

	if _, err := s.UpdateUserStats(ctx, u.ID, time.Now()); err != nil {
		t.Fatalf("UpdateUserStats() error = %v", err)
	}
	people := []string{"a", "b", "c", "d", "e"}
	for i := 0; i < 5; i++ {
		addMemory(t, s, models.Memory{
			UserID:               u.ID,
			Observation:          "memory",
			PeopleMentioned:      []string{people[i]},
			IsBreakthroughMoment: i == 0,
		})
	}

	unlocked, err := s.CheckAndUnlockAchievements(ctx, u.ID, unlockAt)
	if err != nil {
		t.Fatalf("CheckAndUnlockAchievements() error = %v", err)
	}
	var keys []string
	for _, a := range unlocked {
		keys = append(keys, a.Key)
	}
	if got := strings.Join(keys, ","); got != "first_step,opening_up,first_insight,relationship_mapper" {
		t.Errorf("unlocked = %s", got)
	}
	for _, a := range unlocked {
		if !a.UnlockedAt.Equal(unlockAt) {
			t.Errorf("%s UnlockedAt = %v, want %v", a.Key, a.UnlockedAt, unlockAt)
		}
	}

	again, err := s.CheckAndUnlockAchievements(ctx, u.ID, unlockAt)
	if err != nil {
		t.Fatalf("second CheckAndUnlockAchievements() error = %v", err)
	}
	if len(again) != 0 {
		t.Errorf("re-check unlocked %d achievements, want 0", len(again))
	}

	missing, err := s.CheckAndUnlockAchievements(ctx, 9999, unlockAt)
	if err != nil || missing != nil {
		t.Errorf("CheckAndUnlockAchievements(missing) = %v, %v", missing, err)
	}
}

func TestRelationshipAndStreakViews(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	stats, err := s.RelationshipStats(ctx, 9999, now)
	if err != nil {
		t.Fatalf("RelationshipStats(missing) error = %v", err)
	}
	if stats.DaysTogether != 0 || stats.ConnectionDepth != 1 {
		t.Errorf("RelationshipStats(missing) = %+v", stats)
	}

	if _, err := s.UpdateUserStats(ctx, u.ID, now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("UpdateUserStats() error = %v", err)
	}

	stats, err = s.RelationshipStats(ctx, u.ID, now)
	if err != nil {
		t.Fatalf("RelationshipStats() error = %v", err)
	}
	if stats.DaysTogether != 2 || stats.TotalSessions != 1 {
		t.Errorf("RelationshipStats() = %+v", stats)
	}

	streak, err := s.StreakStatus(ctx, u.ID, now)
	if err != nil {
		t.Fatalf("StreakStatus() error = %v", err)
	}
	if !streak.StreakAtRisk || streak.HasInteractedToday {
		t.Errorf("StreakStatus() = %+v, want at risk", streak)
	}
}

func TestExport(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")

	addMemory(t, s, models.Memory{UserID: u.ID, Observation: "likes hiking", Category: "identity"})
	if err := s.CreateInteraction(ctx, &models.InteractionLog{UserID: u.ID, UserInput: "hi", AgentResponse: "hey"}); err != nil {
		t.Fatalf("CreateInteraction() error = %v", err)
	}
	if _, err := s.UnlockAchievement(ctx, u.ID, "first_step", time.Now()); err != nil {
		t.Fatalf("UnlockAchievement() error = %v", err)
	}

	data, err := s.Export(ctx, "alice")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if data.User.UserKey != "alice" || len(data.Memories) != 1 || len(data.Interactions) != 1 || len(data.Achievements) != 1 {
		t.Errorf("Export() = %+v", data)
	}

	if _, err := s.Export(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Export(unknown) error = %v, want ErrNotFound", err)
	}

	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "out", "journal.yaml")
	if err := WriteExport(yamlPath, data); err != nil {
		t.Fatalf("WriteExport(yaml) error = %v", err)
	}
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var fromYAML map[string]interface{}
	if err := yaml.Unmarshal(raw, &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if fromYAML["tool"] != "confidant" {
		t.Errorf("yaml tool = %v", fromYAML["tool"])
	}

	jsonPath := filepath.Join(dir, "journal.json")
	if err := WriteExport(jsonPath, data); err != nil {
		t.Fatalf("WriteExport(json) error = %v", err)
	}
	raw, err = os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var fromJSON ExportData
	if err := json.Unmarshal(raw, &fromJSON); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(fromJSON.Memories) != 1 || fromJSON.Memories[0].Observation != "likes hiking" {
		t.Errorf("json memories = %+v", fromJSON.Memories)
	}
}
