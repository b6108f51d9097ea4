package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category buckets predictions for the feed filter and the create form.
// The slug is the public identifier (the feed's ?category= param and
// prediction creation both use it), so it is unique and never regenerated
// once the category has predictions filed under it.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Predictions []Prediction `gorm:"foreignKey:CategoryID" json:"-"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
