package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type AuthorResponse struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

type CategoryFilter struct {
	Search string `form:"search"`
}

// FeedFilter drives the prediction list pipeline. Tab selects active vs
// resolved, Sort picks the tie-break after priority ordering.
type FeedFilter struct {
	Tab      string `form:"tab" binding:"omitempty,oneof=active resolved"`
	Category string `form:"category"`
	Sort     string `form:"sort" binding:"omitempty,oneof=trending latest ending"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type PredictionResponse struct {
	ID        uuid.UUID      `json:"id"`
	Topic     string         `json:"topic"`
	Category  string         `json:"category"`
	Author    AuthorResponse `json:"author"`
	Status    string         `json:"status"`
	Result    *string        `json:"result"`
	Upvotes   int            `json:"upvotes"`
	Downvotes int            `json:"downvotes"`
	TimeLeft  string         `json:"time_left"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UserVote  *string        `json:"user_vote,omitempty"`
}

type PaginatedPredictionResponse struct {
	Data []PredictionResponse `json:"data"`
	Meta PaginationMeta       `json:"meta"`
}

type VoteTallies struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

type CategoryResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	PredictionCount int64     `json:"prediction_count"`
}

// Badge is a pure derived value; it carries no identity and is recomputed
// from points/streak/rank on every read.
type Badge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

type PaginatedCategoryResponse struct {
	Data []CategoryResponse `json:"data"`
	Meta PaginationMeta     `json:"meta"`
}
