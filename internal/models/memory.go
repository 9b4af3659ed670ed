// ABOUTME: Memory is one persisted observation about a user
// ABOUTME: Observation is the raw candidate the extraction call returns
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Relevance bounds and the default applied when extraction omits a score
const (
	MinRelevance     = 1
	MaxRelevance     = 10
	DefaultRelevance = 5
)

// Memory categories the extraction prompt asks for
const (
	CategoryRelationshipDynamics = "relationship_dynamics"
	CategorySelfWorth            = "self_worth"
	CategoryFearPatterns         = "fear_patterns"
	CategoryRecurringStruggle    = "recurring_struggle"
	CategoryIdentity             = "identity"
	CategoryBreakthroughMoment   = "breakthrough_moment"
	CategoryLifeTransition       = "life_transition"
	CategorySupportSystem        = "support_system"
	CategoryControlSeeking       = "control_seeking"
	CategoryShameDynamics        = "shame_dynamics"
	CategoryDefenseMechanisms    = "defense_mechanisms"
	CategorySelfWorthConflict    = "self_worth_conflict"
)

// ExtractionCategories lists the vocabulary offered to the extraction model
var ExtractionCategories = []string{
	CategoryRelationshipDynamics,
	CategorySelfWorth,
	CategoryFearPatterns,
	CategoryRecurringStruggle,
	CategoryIdentity,
	CategoryBreakthroughMoment,
	CategoryLifeTransition,
	CategorySupportSystem,
	CategoryControlSeeking,
	CategoryShameDynamics,
	CategoryDefenseMechanisms,
	CategorySelfWorthConflict,
}

// StruggleCategories are the themes surfaced as areas to work on
var StruggleCategories = []string{
	CategoryFearPatterns,
	CategoryRecurringStruggle,
	CategorySelfWorthConflict,
	CategoryShameDynamics,
	CategoryDefenseMechanisms,
	CategoryControlSeeking,
}

var categoryLabels = map[string]string{
	CategoryRelationshipDynamics: "Relationships",
	CategorySelfWorth:            "Self-worth stuff",
	CategoryFearPatterns:         "Fears/worries",
	CategoryRecurringStruggle:    "Ongoing challenges",
	CategoryIdentity:             "Identity",
	CategoryBreakthroughMoment:   "Realizations",
	CategoryLifeTransition:       "Life changes",
	CategorySupportSystem:        "Support system",
	"loss_aversion":              "Loss aversion",
	CategoryControlSeeking:       "Control issues",
	CategorySelfWorthConflict:    "Self-worth",
	"attachment_anxiety":         "Attachment stuff",
	CategoryDefenseMechanisms:    "Defense patterns",
	"repetition_compulsion":      "Repeating patterns",
	"authority_conflict":         "Authority issues",
	CategoryShameDynamics:        "Shame stuff",
}

// CategoryLabel returns the conversational label for a category.
// Unknown categories fall back to the raw name with underscores as spaces.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return strings.ReplaceAll(category, "_", " ")
}

// IsStruggleCategory reports whether category counts toward areas to work on
func IsStruggleCategory(category string) bool {
	for _, c := range StruggleCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Memory is a stored observation. Only RelevanceScore changes after creation.
type Memory struct {
	ID                   int64     `json:"id" yaml:"id"`
	UserID               int64     `json:"user_id" yaml:"user_id"`
	Observation          string    `json:"observation" yaml:"observation"`
	Interpretation       string    `json:"interpretation,omitempty" yaml:"interpretation,omitempty"`
	Category             string    `json:"category,omitempty" yaml:"category,omitempty"`
	RelevanceScore       int       `json:"relevance_score" yaml:"relevance_score"`
	FollowUpQuestion     string    `json:"follow_up_question,omitempty" yaml:"follow_up_question,omitempty"`
	PeopleMentioned      []string  `json:"people_mentioned,omitempty" yaml:"people_mentioned,omitempty"`
	IsIdentityStatement  bool      `json:"is_identity_statement" yaml:"is_identity_statement"`
	IsBreakthroughMoment bool      `json:"is_breakthrough_moment" yaml:"is_breakthrough_moment"`
	CreatedAt            time.Time `json:"created_at" yaml:"created_at"`
}

// Observation is a memory candidate as produced by the extraction call
type Observation struct {
	Observation          string   `json:"observation"`
	Interpretation       string   `json:"interpretation,omitempty"`
	Category             string   `json:"category,omitempty"`
	RelevanceScore       int      `json:"relevance_score,omitempty"`
	FollowUpQuestion     string   `json:"follow_up_question,omitempty"`
	PeopleMentioned      []string `json:"people_mentioned,omitempty"`
	IsIdentityStatement  bool     `json:"is_identity_statement,omitempty"`
	IsBreakthroughMoment bool     `json:"is_breakthrough_moment,omitempty"`
}

// ClampRelevance bounds a score to the valid range, substituting the
// default for zero (unset) values
func ClampRelevance(score int) int {
	if score == 0 {
		return DefaultRelevance
	}
	return BoundRelevance(score)
}

// BoundRelevance bounds an explicit score to [MinRelevance, MaxRelevance]
func BoundRelevance(score int) int {
	return min(max(score, MinRelevance), MaxRelevance)
}

// ParsePeople decodes a stored people list. Rows hold either a JSON array
// or a comma-separated string; entries are trimmed and empties dropped.
func ParsePeople(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parts []string
	var decoded []interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		for _, item := range decoded {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	var people []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			people = append(people, p)
		}
	}
	return people
}

// NormalizePeople trims and de-duplicates a people list, keeping first-seen order
func NormalizePeople(people []string) []string {
	seen := make(map[string]bool, len(people))
	var out []string
	for _, p := range people {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
