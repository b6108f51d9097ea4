package service

import commonDto "anoa.com/nawhoknow/pkg/dto"

const (
	BadgeRookiePoints = 100
	BadgeProPoints    = 500
	BadgeStreakerDays = 7
	BadgeLegendRank   = 3
)

// EvaluateBadges derives the badge set from points, streak and leaderboard
// rank. Badges are never stored; losing the qualifying stat loses the badge.
// A rank of 0 means the user is unranked.
func EvaluateBadges(points, streak, rank int) []commonDto.Badge {
	badges := []commonDto.Badge{}

	if points >= BadgeRookiePoints {
		badges = append(badges, commonDto.Badge{Name: "Rookie", Description: "Earned 100 points", Icon: "🏆"})
	}
	if points >= BadgeProPoints {
		badges = append(badges, commonDto.Badge{Name: "Pro", Description: "Earned 500 points", Icon: "🌟"})
	}
	if streak >= BadgeStreakerDays {
		badges = append(badges, commonDto.Badge{Name: "Streaker", Description: "7-day streak", Icon: "🔥"})
	}
	if rank > 0 && rank <= BadgeLegendRank {
		badges = append(badges, commonDto.Badge{Name: "Legend", Description: "Top 3 on leaderboard", Icon: "👑"})
	}

	return badges
}
