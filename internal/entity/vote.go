package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChoiceYes = "Yes"
	ChoiceNo  = "No"
)

// Vote is immutable once cast. The composite unique index enforces one vote
// per (user, prediction) at the database level; the service rejects a second
// attempt before ever reaching it.
type Vote struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_votes_unique,unique,priority:1" json:"user_id"`
	User         User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PredictionID uuid.UUID  `gorm:"type:uuid;not null;index:idx_votes_unique,unique,priority:2" json:"prediction_id"`
	Prediction   Prediction `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Choice       string     `gorm:"size:3;not null" json:"choice"`
	CastAt       time.Time  `gorm:"autoCreateTime;index" json:"cast_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}
