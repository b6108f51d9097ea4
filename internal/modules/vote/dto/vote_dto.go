package dto

import (
	"time"

	"github.com/google/uuid"
)

type CastVoteRequest struct {
	Choice string `json:"choice" binding:"required,oneof=Yes No"`
}

// UserVoteResponse is one row of the "my votes" ledger view. IsCorrect and
// Points stay nil until the prediction settles.
type UserVoteResponse struct {
	PredictionID uuid.UUID `json:"prediction_id"`
	Topic        string    `json:"topic"`
	Category     string    `json:"category"`
	Choice       string    `json:"choice"`
	Status       string    `json:"status"`
	Result       *string   `json:"result"`
	IsCorrect    *bool     `json:"is_correct"`
	Points       *int      `json:"points"`
	CastAt       time.Time `json:"cast_at"`
}
