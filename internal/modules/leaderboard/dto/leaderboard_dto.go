package dto

import "github.com/google/uuid"

// LeaderboardEntry is one ranked line. IsCurrentUser marks the merged-in
// viewer row when they fall outside the top slice.
type LeaderboardEntry struct {
	Rank          int       `json:"rank"`
	UserID        uuid.UUID `json:"user_id"`
	Username      string    `json:"username"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	Points        int       `json:"points"`
	IsCurrentUser bool      `json:"is_current_user,omitempty"`
}

type LeaderboardResponse struct {
	Period   string             `json:"period"`
	Category string             `json:"category,omitempty"`
	Entries  []LeaderboardEntry `json:"entries"`
}

type LeaderboardFilter struct {
	Period   string `form:"period" binding:"omitempty,oneof=week month all"`
	Category string `form:"category"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
