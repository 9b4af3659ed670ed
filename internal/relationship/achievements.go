// ABOUTME: Achievement catalog and the predicates that decide unlocks
// ABOUTME: Earned is pure; storage decides which keys are new
package relationship

import "github.com/harper/confidant/internal/models"

// Progress is the snapshot achievement predicates are evaluated against
type Progress struct {
	TotalSessions     int
	MemoryCount       int
	CurrentStreak     int
	ConnectionDepth   int
	BreakthroughCount int
	IdentityCount     int
	DistinctPeople    int
}

// Rule couples catalog metadata with its unlock predicate
type Rule struct {
	models.AchievementDef
	Earned func(Progress) bool
}

// Catalog is the fixed achievement table, in evaluation order
var Catalog = []Rule{
	{def("first_step", "First Step", "Had your first conversation", "onboarding"),
		func(p Progress) bool { return p.TotalSessions >= 1 }},
	{def("opening_up", "Opening Up", "Shared enough for five memories", "onboarding"),
		func(p Progress) bool { return p.MemoryCount >= 5 }},

	{def("three_day", "Three Day Streak", "Checked in three days in a row", "streak"),
		func(p Progress) bool { return p.CurrentStreak >= 3 }},
	{def("week_warrior", "Week Warrior", "Checked in seven days in a row", "streak"),
		func(p Progress) bool { return p.CurrentStreak >= 7 }},
	{def("month_master", "Month Master", "Checked in thirty days in a row", "streak"),
		func(p Progress) bool { return p.CurrentStreak >= 30 }},

	{def("trust_builder", "Trust Builder", "Reached connection depth 2", "depth"),
		func(p Progress) bool { return p.ConnectionDepth >= 2 }},
	{def("growing_closer", "Growing Closer", "Reached connection depth 3", "depth"),
		func(p Progress) bool { return p.ConnectionDepth >= 3 }},
	{def("deep_bond", "Deep Bond", "Reached connection depth 4", "depth"),
		func(p Progress) bool { return p.ConnectionDepth >= 4 }},
	{def("truly_known", "Truly Known", "Reached connection depth 5", "depth"),
		func(p Progress) bool { return p.ConnectionDepth >= 5 }},

	{def("first_insight", "First Insight", "Had a breakthrough moment", "breakthrough"),
		func(p Progress) bool { return p.BreakthroughCount >= 1 }},
	{def("insight_seeker", "Insight Seeker", "Had five breakthrough moments", "breakthrough"),
		func(p Progress) bool { return p.BreakthroughCount >= 5 }},

	{def("self_explorer", "Self Explorer", "Said ten things about who you are", "identity"),
		func(p Progress) bool { return p.IdentityCount >= 10 }},
	{def("relationship_mapper", "Relationship Mapper", "Talked about five different people", "identity"),
		func(p Progress) bool { return p.DistinctPeople >= 5 }},
}

func def(key, title, description, group string) models.AchievementDef {
	return models.AchievementDef{Key: key, Title: title, Description: description, Group: group}
}

// Earned returns every catalog key whose predicate holds, in catalog order
func Earned(p Progress) []string {
	var keys []string
	for _, rule := range Catalog {
		if rule.Earned(p) {
			keys = append(keys, rule.Key)
		}
	}
	return keys
}

// Lookup returns the definition for key
func Lookup(key string) (models.AchievementDef, bool) {
	for _, rule := range Catalog {
		if rule.Key == key {
			return rule.AchievementDef, true
		}
	}
	return models.AchievementDef{}, false
}
