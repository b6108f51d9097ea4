package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RewardTypeAirtime = "airtime"
	RewardTypeData    = "data"
	RewardTypeBadge   = "badge"
)

type Reward struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	PointsCost  int       `gorm:"not null" json:"points_cost"`
	RewardType  string    `gorm:"size:20;not null" json:"reward_type"`
	Stock       int       `gorm:"default:0;not null" json:"stock"`
	Active      bool      `gorm:"default:true;not null" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

type Redemption struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RewardID    uuid.UUID `gorm:"type:uuid;not null" json:"reward_id"`
	Reward      Reward    `gorm:"constraint:OnDelete:CASCADE" json:"reward,omitempty"`
	PointsSpent int       `gorm:"not null" json:"points_spent"`
	Code        string    `gorm:"size:50" json:"code"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Redemption) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
