package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateRewardRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost" binding:"required,min=1"`
	RewardType  string `json:"reward_type" binding:"required,oneof=airtime data badge"`
	Stock       int    `json:"stock" binding:"required,min=0"`
}

type RedemptionResponse struct {
	ID          uuid.UUID `json:"id"`
	RewardName  string    `json:"reward_name"`
	PointsSpent int       `json:"points_spent"`
	Code        string    `json:"code"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}
