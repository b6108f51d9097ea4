package entity

import (
	"time"

	"github.com/google/uuid"
)

// PointsHistory is the append-only audit log of settlement. Exactly one row
// ever exists per (user, prediction); the unique index backs the dedup check
// the scoring engine performs before inserting.
type PointsHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_points_unique,unique,priority:1;index:idx_points_user_date,priority:1" json:"user_id"`
	User         User      `gorm:"foreignKey:UserID" json:"-"`
	PredictionID uuid.UUID `gorm:"type:uuid;not null;index:idx_points_unique,unique,priority:2" json:"prediction_id"`
	Topic        string    `gorm:"type:text;not null" json:"topic"`
	Category     string    `gorm:"size:100" json:"category"`
	Choice       string    `gorm:"size:3;not null" json:"choice"`
	Result       string    `gorm:"size:10;not null" json:"result"`
	Points       int       `gorm:"not null" json:"points"`
	ResolvedAt   time.Time `gorm:"not null" json:"resolved_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_points_user_date,priority:2" json:"created_at"`
}
