// ABOUTME: Streak, session and connection-depth bookkeeping for a user turn
// ABOUTME: Pure functions over models.User; callers persist the result
package relationship

import (
	"time"

	"github.com/harper/confidant/internal/models"
)

// Session thresholds that raise the base connection depth, indexed by depth-2
var depthSessionThresholds = []int{3, 10, 25, 50}

const (
	streakBonusAt   = 3
	tenureBonusDays = 30
)

var depthLabels = map[int]string{
	1: "Getting to know each other",
	2: "Building trust",
	3: "Growing closer",
	4: "Deep connection",
	5: "Truly understood",
}

// ApplyTurn records one completed turn at now. Streaks move at calendar-day
// granularity in now's location: same day leaves the streak alone, the next
// day extends it, and any longer gap (or no prior turn) restarts it at 1.
func ApplyTurn(u *models.User, now time.Time) {
	if u.FirstInteractionAt == nil {
		first := now
		u.FirstInteractionAt = &first
	}

	if u.LastInteractionAt == nil {
		u.CurrentStreak = 1
	} else {
		switch gap := CalendarDaysBetween(*u.LastInteractionAt, now); {
		case gap == 0:
		case gap == 1:
			u.CurrentStreak++
		default:
			u.CurrentStreak = 1
		}
	}

	if u.CurrentStreak > u.LongestStreak {
		u.LongestStreak = u.CurrentStreak
	}

	last := now
	u.LastInteractionAt = &last
	u.TotalSessions++
	u.ConnectionDepth = ConnectionDepth(u.TotalSessions, u.CurrentStreak, u.FirstInteractionAt, now)
}

// ConnectionDepth scores engagement on the 1-5 scale
func ConnectionDepth(totalSessions, currentStreak int, first *time.Time, now time.Time) int {
	depth := models.MinConnectionDepth
	for i, threshold := range depthSessionThresholds {
		if totalSessions >= threshold {
			depth = i + 2
		}
	}

	if currentStreak >= streakBonusAt {
		depth++
	}
	if first != nil && wholeDays(*first, now) >= tenureBonusDays {
		depth++
	}

	return clampDepth(depth)
}

// DepthLabel names a depth level for display
func DepthLabel(depth int) string {
	return depthLabels[clampDepth(depth)]
}

// Stats builds the relationship view of u at now
func Stats(u *models.User, now time.Time) models.RelationshipStats {
	if u == nil {
		return models.RelationshipStats{
			ConnectionDepth:      models.MinConnectionDepth,
			ConnectionDepthLabel: DepthLabel(models.MinConnectionDepth),
		}
	}

	days := 0
	if u.FirstInteractionAt != nil {
		days = wholeDays(*u.FirstInteractionAt, now) + 1
	}

	depth := clampDepth(u.ConnectionDepth)
	return models.RelationshipStats{
		DaysTogether:         days,
		TotalSessions:        u.TotalSessions,
		CurrentStreak:        u.CurrentStreak,
		LongestStreak:        u.LongestStreak,
		ConnectionDepth:      depth,
		ConnectionDepthLabel: DepthLabel(depth),
	}
}

// Streak reports whether the streak still needs today's check-in
func Streak(u *models.User, now time.Time) models.StreakStatus {
	if u == nil {
		return models.StreakStatus{}
	}

	status := models.StreakStatus{
		CurrentStreak: u.CurrentStreak,
		LongestStreak: u.LongestStreak,
	}
	if u.LastInteractionAt != nil {
		status.HasInteractedToday = CalendarDaysBetween(*u.LastInteractionAt, now) == 0
		status.StreakAtRisk = u.CurrentStreak > 0 && !status.HasInteractedToday
	}
	return status
}

// CalendarDaysBetween counts date boundaries from a to b, both viewed in b's location
func CalendarDaysBetween(a, b time.Time) int {
	loc := b.Location()
	a = a.In(loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	// Noon UTC keeps DST shifts out of the subtraction
	da := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func wholeDays(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}

func clampDepth(depth int) int {
	if depth < models.MinConnectionDepth {
		return models.MinConnectionDepth
	}
	if depth > models.MaxConnectionDepth {
		return models.MaxConnectionDepth
	}
	return depth
}
