package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SearchHistory records storefront searches per user to drive recommendations.
type SearchHistory struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Query     string    `gorm:"column:query;not null"`
	Category  string    `gorm:"column:category;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate fills the id so inserts do not depend on a database default.
func (s *SearchHistory) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
