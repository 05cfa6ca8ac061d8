package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the base model for all entities.
type Base struct {
	ID        string         `json:"id"       gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time      `json:"created"`
	UpdatedAt time.Time      `json:"modified"`
	DeletedAt gorm.DeletedAt `json:"-"        gorm:"index"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// ContentBase adds the fields shared by participant-visible content items
// (ideas, topics, debate subjects). Attachments is an explicit relation to
// uploaded files; attachment identity is never parsed out of rendered markup.
type ContentBase struct {
	Base
	CreatorID   string      `json:"creator_id"  gorm:"index"`
	Name        string      `json:"name"        gorm:"not null"`
	Description string      `json:"description" gorm:"type:longtext"`
	Attachments StringArray `json:"attachments" gorm:"type:longtext"`
}
