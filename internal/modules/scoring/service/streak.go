package service

import (
	"sort"
	"time"

	"anoa.com/nawhoknow/internal/entity"
)

// StreakMilestones are celebrated once each, in ascending order.
var StreakMilestones = []int{3, 7, 14}

// CalculateStreak counts how many consecutive calendar days, ending with the
// most recent settlement, carry the same correctness as that settlement.
// Days are bucketed at local midnight in loc. No history means no streak.
func CalculateStreak(entries []entity.PointsHistory, loc *time.Location) int {
	if len(entries) == 0 {
		return 0
	}

	sorted := make([]entity.PointsHistory, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ResolvedAt.After(sorted[j].ResolvedAt)
	})

	streak := 1
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]

		prevDay := midnight(prev.ResolvedAt, loc)
		currDay := midnight(curr.ResolvedAt, loc)

		if isCorrect(prev) == isCorrect(curr) && prevDay.Sub(currDay) == 24*time.Hour {
			streak++
		} else {
			break
		}
	}
	return streak
}

// NextMilestone returns the highest milestone the streak has newly reached
// beyond alreadyReached, or 0 when there is nothing to celebrate.
func NextMilestone(streak, alreadyReached int) int {
	reached := 0
	for _, m := range StreakMilestones {
		if streak >= m && m > alreadyReached {
			reached = m
		}
	}
	return reached
}

func isCorrect(e entity.PointsHistory) bool {
	return e.Points > 0
}

func midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
