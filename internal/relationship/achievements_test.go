// ABOUTME: Tests for the achievement catalog predicates
// ABOUTME: Verifies thresholds and catalog ordering of earned keys
package relationship

import (
	"reflect"
	"testing"
)

func TestEarned(t *testing.T) {
	tests := []struct {
		name string
		p    Progress
		want []string
	}{
		{"nothing yet", Progress{ConnectionDepth: 1}, nil},
		{"first session", Progress{TotalSessions: 1, ConnectionDepth: 1}, []string{"first_step"}},
		{
			"onboarding and streak",
			Progress{TotalSessions: 3, MemoryCount: 5, CurrentStreak: 3, ConnectionDepth: 3},
			[]string{"first_step", "opening_up", "three_day", "trust_builder", "growing_closer"},
		},
		{
			"insight and identity",
			Progress{TotalSessions: 2, ConnectionDepth: 1, BreakthroughCount: 5, IdentityCount: 10, DistinctPeople: 5},
			[]string{"first_step", "first_insight", "insight_seeker", "self_explorer", "relationship_mapper"},
		},
		{
			"everything",
			Progress{TotalSessions: 60, MemoryCount: 99, CurrentStreak: 30, ConnectionDepth: 5, BreakthroughCount: 9, IdentityCount: 12, DistinctPeople: 8},
			[]string{
				"first_step", "opening_up", "three_day", "week_warrior", "month_master",
				"trust_builder", "growing_closer", "deep_bond", "truly_known",
				"first_insight", "insight_seeker", "self_explorer", "relationship_mapper",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Earned(tt.p)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Earned() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEarnedThresholdEdges(t *testing.T) {
	below := Progress{MemoryCount: 4, CurrentStreak: 6, BreakthroughCount: 4, IdentityCount: 9, DistinctPeople: 4}
	for _, key := range Earned(below) {
		switch key {
		case "opening_up", "week_warrior", "insight_seeker", "self_explorer", "relationship_mapper":
			t.Errorf("Earned() unexpectedly includes %s", key)
		}
	}
}

func TestCatalogKeysUnique(t *testing.T) {
	if len(Catalog) != 13 {
		t.Errorf("len(Catalog) = %d, want 13", len(Catalog))
	}
	seen := map[string]bool{}
	for _, rule := range Catalog {
		if seen[rule.Key] {
			t.Errorf("duplicate key %s", rule.Key)
		}
		seen[rule.Key] = true
		if rule.Title == "" || rule.Description == "" {
			t.Errorf("rule %s missing display metadata", rule.Key)
		}
	}
}

func TestLookup(t *testing.T) {
	def, ok := Lookup("week_warrior")
	if !ok {
		t.Fatal("Lookup(week_warrior) not found")
	}
	if def.Group != "streak" {
		t.Errorf("Group = %q, want streak", def.Group)
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) should not be found")
	}
}
