package dto

import (
	"time"

	commonDto "anoa.com/nawhoknow/pkg/dto"
)

type UpdateProfileInput struct {
	Username *string `form:"username" json:"username"`
}

// ProfileResponse is the dashboard payload: identity plus every derived
// stat the profile page renders.
type ProfileResponse struct {
	Username       string            `json:"username"`
	Email          string            `json:"email,omitempty"`
	AvatarURL      *string           `json:"avatar_url"`
	Points         int               `json:"points"`
	HistoryTotal   int               `json:"history_total"`
	Rank           int               `json:"rank"`
	Streak         int               `json:"streak"`
	CorrectPercent float64           `json:"correct_percent"`
	TotalSettled   int               `json:"total_settled"`
	Badges         []commonDto.Badge `json:"badges"`
	MemberSince    time.Time         `json:"member_since"`
}

type ShareResponse struct {
	ShareText string `json:"share_text"`
	ShareURL  string `json:"share_url"`
}
