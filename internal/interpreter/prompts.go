// ABOUTME: Prompt assembly for replies, extraction, pattern reads, summaries and coaching
// ABOUTME: Pure string builders over memories, exchanges and relationship stats
package interpreter

import (
	"fmt"
	"strings"

	"github.com/harper/confidant/internal/models"
)

const (
	maxContextPeople     = 5
	maxContextIdentity   = 3
	maxContextFollowUps  = 3
	maxContextPatterns   = 5
	maxContextExchanges  = 2
	contextExchangeRunes = 100
	summaryExchanges     = 3
	summaryExchangeRunes = 150
	summaryPatterns      = 5
	coachAreas           = 3
	coachPatterns        = 5
)

// NoHistory is the context used before anything has been remembered
const NoHistory = "First conversation. No history yet."

// BuildContextPrompt renders what is known about the user. exchanges are
// newest first; stats may be nil.
func BuildContextPrompt(recent, relevant []models.Memory, exchanges []models.Exchange, stats *models.RelationshipStats) string {
	var parts []string

	if stats != nil && stats.DaysTogether > 0 {
		parts = append(parts, "HISTORY:")
		if stats.DaysTogether == 1 {
			parts = append(parts, "  First day talking.")
		} else {
			parts = append(parts, fmt.Sprintf("  %d days, %d conversations.", stats.DaysTogether, stats.TotalSessions))
		}
		if stats.CurrentStreak > 1 {
			parts = append(parts, fmt.Sprintf("  %d day streak - they keep coming back.", stats.CurrentStreak))
		}
	}

	if people := mentionedPeople(append(append([]models.Memory{}, recent...), relevant...)); len(people) > 0 {
		parts = append(parts, "\nPEOPLE THEY'VE MENTIONED:")
		for i, p := range people {
			if i == maxContextPeople {
				break
			}
			parts = append(parts, "  - "+p)
		}
	}

	var identity []string
	for _, m := range relevant {
		if m.IsIdentityStatement && len(identity) < maxContextIdentity {
			identity = append(identity, "  - "+m.Observation)
		}
	}
	if len(identity) > 0 {
		parts = append(parts, "\nTHINGS THEY'VE SAID ABOUT THEMSELVES:")
		parts = append(parts, identity...)
	}

	var followUps []string
	for _, m := range recent {
		if m.FollowUpQuestion != "" && len(followUps) < maxContextFollowUps {
			followUps = append(followUps, "  - "+m.FollowUpQuestion)
		}
	}
	if len(followUps) > 0 {
		parts = append(parts, "\nCOULD FOLLOW UP ON:")
		parts = append(parts, followUps...)
	}

	if len(relevant) > 0 {
		parts = append(parts, "\nPATTERNS/THEMES:")
		for i, m := range relevant {
			if i == maxContextPatterns {
				break
			}
			label := ""
			if m.Category != "" {
				label = "[" + models.CategoryLabel(m.Category) + "] "
			}
			parts = append(parts, "  - "+label+m.Observation)
		}
	}

	if len(exchanges) > 0 {
		parts = append(parts, "\nRECENT CONTEXT:")
		n := len(exchanges)
		if n > maxContextExchanges {
			n = maxContextExchanges
		}
		// Oldest of the window first so the section reads chronologically
		for i := n - 1; i >= 0; i-- {
			parts = append(parts, "  - "+ellipsize(exchanges[i].UserInput, contextExchangeRunes))
		}
	}

	if len(parts) == 0 {
		return NoHistory
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt wraps the message with context and the per-state instructions
func BuildUserPrompt(input, context string, first, returning bool) string {
	if first {
		return fmt.Sprintf(`First conversation.

THEY SAID: %s

Respond naturally. Get curious about what's going on. Ask ONE question that shows genuine interest.

Keep it short (2-3 paragraphs). Be direct, not therapeutic.`, input)
	}

	if returning {
		return fmt.Sprintf(`CONTEXT:
%s

---

THEY SAID: %s

If past context is relevant, mention it naturally. Otherwise, just respond to what they said.

Short response. One question max.`, context, input)
	}

	return fmt.Sprintf(`CONTEXT:
%s

---

THEY SAID: %s

Respond directly to what they said. If you see patterns or connections to past stuff, mention them naturally. Ask ONE good question.

Keep it conversational and short.`, context, input)
}

// BuildCoachContext summarises recurring challenges and key patterns for the coach
func BuildCoachContext(recent, relevant []models.Memory, areas []models.AreaToWorkOn) string {
	var parts []string

	if len(areas) > 0 {
		parts = append(parts, "RECURRING CHALLENGES:")
		for i, a := range areas {
			if i == coachAreas {
				break
			}
			parts = append(parts, fmt.Sprintf("  - %s: %s", a.Title, a.Description))
		}
	}

	if len(relevant) > 0 {
		parts = append(parts, "\nKEY PATTERNS:")
		for i, m := range relevant {
			if i == coachPatterns {
				break
			}
			parts = append(parts, "  - "+m.Observation)
		}
	}

	if len(parts) == 0 {
		return "Starting fresh."
	}
	return strings.Join(parts, "\n")
}

func buildCoachPrompt(input, coachContext, guidance string) string {
	return fmt.Sprintf(`CONTEXT:
%s

---

USER: %s

%s`, coachContext, input, guidance)
}

const extractionSystemPrompt = "You are a relationship-building memory specialist. You remember things that help build deeper connections with people."

const extractionInstructions = `Based on the conversation, note what's worth remembering for future context.

Think like a friend who pays attention - what would you actually remember about this person?

Output a JSON array. Each item can have:
- "observation": What to remember (keep it brief)
- "interpretation": Why it might matter (optional)
- "category": One of: %s (optional)
- "relevance_score": 1-10 (how important?)
- "follow_up_question": Something to ask about later (optional)
- "people_mentioned": Names/relationships mentioned, e.g. ["partner Alex", "friend Jordan"] (optional)
- "is_identity_statement": true if they said something about who they are (optional)
- "is_breakthrough_moment": true if they had a realization (optional)

WORTH REMEMBERING:
- People they mention
- Patterns in their thoughts and behaviors
- How they see themselves
- What's stressing them out
- Insights or realizations they have
- Major life stuff happening

NOT WORTH REMEMBERING:
- Generic small talk
- Stuff without substance
- Things anyone would say

Example:
[
  {
    "observation": "Keeps overcommitting even though they know it leads to burnout",
    "interpretation": "Pattern of people-pleasing at own expense",
    "category": "recurring_struggle",
    "relevance_score": 8,
    "follow_up_question": "How's your workload been? Curious if that pattern showed up again"
  },
  {
    "observation": "Hasn't told their partner about the anxiety they've been feeling",
    "category": "relationship_dynamics",
    "relevance_score": 7,
    "people_mentioned": ["partner"]
  }
]

If nothing substantial came up, return empty array: []

Output JSON only:`

func buildExtractionPrompt(input, reply, history string) string {
	var sb strings.Builder
	sb.WriteString("THEY SAID:\n")
	sb.WriteString(input)
	sb.WriteString("\n\nYOUR RESPONSE:\n")
	sb.WriteString(reply)
	if history != "" {
		sb.WriteString("\n\nPRIOR CONTEXT:\n")
		sb.WriteString(history)
	}
	sb.WriteString("\n\n")

	quoted := make([]string, len(models.ExtractionCategories))
	for i, c := range models.ExtractionCategories {
		quoted[i] = `"` + c + `"`
	}
	sb.WriteString(fmt.Sprintf(extractionInstructions, strings.Join(quoted, ", ")))
	return sb.String()
}

// FormatHistory renders the latest exchanges as extraction context, oldest first
func FormatHistory(exchanges []models.Exchange) string {
	n := len(exchanges)
	if n > maxContextExchanges {
		n = maxContextExchanges
	}
	lines := make([]string, 0, n*2)
	for i := n - 1; i >= 0; i-- {
		lines = append(lines, "Them: "+exchanges[i].UserInput, "You: "+exchanges[i].AgentResponse)
	}
	return strings.Join(lines, "\n")
}

func buildPatternPrompt(category string, history []models.Memory, current string) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		line := "- " + m.Observation
		if m.Interpretation != "" {
			line += " → " + m.Interpretation
		}
		lines = append(lines, line)
	}

	return fmt.Sprintf(`You've noticed a recurring pattern in this person's life.

PATTERN TYPE: %s

HISTORICAL OBSERVATIONS:
%s

CURRENT SITUATION:
%s

Provide a brief meta-interpretation (2-3 sentences) about what this pattern might reveal about their deeper relationship with themselves and the people around them. Focus on the psychological dimension, not advice.`,
		category, strings.Join(lines, "\n"), current)
}

func buildSummaryPrompt(relevant []models.Memory, exchanges []models.Exchange) string {
	var parts []string

	if len(exchanges) > 0 {
		parts = append(parts, "TODAY'S CONVERSATION:")
		for i, e := range exchanges {
			if i == summaryExchanges {
				break
			}
			parts = append(parts,
				"You: "+truncate(e.UserInput, summaryExchangeRunes),
				"Me: "+truncate(e.AgentResponse, summaryExchangeRunes))
		}
	}

	if len(relevant) > 0 {
		parts = append(parts, "\nKEY PATTERNS:")
		for i, m := range relevant {
			if i == summaryPatterns {
				break
			}
			parts = append(parts, "  - "+m.Observation)
		}
	}

	context := "Brief check-in."
	if len(parts) > 0 {
		context = strings.Join(parts, "\n")
	}

	return `Based on our conversation today, provide a brief closing summary:

1. Key themes that came up
2. Any patterns or insights worth noting
3. One or two things to reflect on

Keep it concise and grounded. 2-3 paragraphs max.

End with a warm closing like: "Take care. Looking forward to our next conversation."

` + context + `

Generate the summary:`
}

// mentionedPeople collects people across memories in first-seen order
func mentionedPeople(memories []models.Memory) []string {
	var all []string
	for _, m := range memories {
		all = append(all, m.PeopleMentioned...)
	}
	return models.NormalizePeople(all)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func ellipsize(s string, n int) string {
	if t := truncate(s, n); t != s {
		return t + "..."
	}
	return s
}
