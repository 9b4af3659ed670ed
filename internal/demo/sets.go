// ABOUTME: Scripted conversation sets used to seed a user with realistic history
// ABOUTME: Each set names a default user key and the messages replayed in order
package demo

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ConversationSet is a scripted sequence of user messages
type ConversationSet struct {
	ID          string
	Name        string
	Description string
	// UserKey is used when the caller does not pick a user. When empty a
	// fresh key is generated per run.
	UserKey  string
	Messages []string
	// Delay is the pause between messages
	Delay time.Duration
}

var sets = map[string]ConversationSet{
	"journal": {
		ID:          "journal",
		Name:        "Journal",
		Description: "Ten entries from a trader working through hesitation, fear and self-sabotage",
		UserKey:     "demo_trader",
		Delay:       500 * time.Millisecond,
		Messages: []string{
			"I keep hesitating on trades even when my setup is perfect",
			"I took a loss today and now I'm feeling scared to enter my next trade",
			"I notice I get really anxious right before placing an order",
			"Today I waited too long and missed my entry. This happens a lot.",
			"I'm afraid of being wrong. It's like I need to be perfect.",
			"I think I'm more scared of missing out than losing money",
			"When I'm up on a trade, I close it too early because I'm worried it'll reverse",
			"I feel like I sabotage myself right when things are going well",
			"My dad always said I never finish what I start. Maybe that's why I cut winners early.",
			"I notice when I'm stressed about work, my trading gets worse",
		},
	},
	"quickstart": {
		ID:          "quickstart",
		Name:        "Quickstart",
		Description: "Five short entries for a brand new user, enough to light up the dashboard",
		Delay:       300 * time.Millisecond,
		Messages: []string{
			"I closed my winning trade too early again. Why do I keep doing this?",
			"Today I hesitated on a perfect setup and missed the entry. This fear is killing me.",
			"I notice I get anxious right before clicking the buy button",
			"When I'm up on a trade, I panic and take profits too soon",
			"I think I'm more afraid of success than failure",
		},
	},
}

// Sets returns every conversation set ordered by id
func Sets() []ConversationSet {
	out := make([]ConversationSet, 0, len(sets))
	for _, s := range sets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup returns the named conversation set
func Lookup(id string) (ConversationSet, bool) {
	s, ok := sets[id]
	return s, ok
}

// NewUserKey generates a unique user key for a set
func NewUserKey(setID string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s", setID, now.Format("20060102_150405"), uuid.New().String()[:8])
}
