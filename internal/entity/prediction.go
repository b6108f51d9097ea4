package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prediction lifecycle: created as pending, moderated to approved or
// rejected, approved ones accept votes until ExpiresAt, then an admin
// resolves them with a result. Soft-deleted rows stay out of every view.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusResolved = "resolved"
)

const (
	ResultYes   = "Yes"
	ResultNo    = "No"
	ResultMaybe = "Maybe"
)

type Prediction struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Topic      string     `gorm:"type:text;not null" json:"topic"`
	CategoryID *uuid.UUID `gorm:"type:uuid" json:"category_id"`
	Category   Category   `gorm:"constraint:OnDelete:SET NULL" json:"category"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User       User       `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Status     string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	// Result is set iff Status == resolved.
	Result     *string        `gorm:"size:10" json:"result"`
	Upvotes    int            `gorm:"default:0;not null" json:"upvotes"`
	Downvotes  int            `gorm:"default:0;not null" json:"downvotes"`
	ExpiresAt  time.Time      `gorm:"not null;index" json:"expires_at"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

func (p *Prediction) IsResolved() bool {
	return p.Status == StatusResolved && p.Result != nil
}

func (p *Prediction) IsExpired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
