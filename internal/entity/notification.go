package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationVoteCast        = "vote_cast"
	NotificationSettled         = "prediction_settled"
	NotificationStreakMilestone = "streak_milestone"
	NotificationModeration      = "moderation"
	NotificationRedemption      = "reward_redeemed"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	EntityID  uuid.UUID `gorm:"type:uuid" json:"entity_id"` // prediction or reward the event refers to
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
