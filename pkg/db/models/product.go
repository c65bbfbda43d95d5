package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a mango variety in the catalog.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Description  string          `gorm:"column:description;not null;default:''"`
	Image        string          `gorm:"column:image;not null;default:''"`
	Origin       string          `gorm:"column:origin;not null;default:''"`
	Season       string          `gorm:"column:season;not null;default:''"`
	Category     string          `gorm:"column:category;not null;default:''"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	CountInStock int             `gorm:"column:count_in_stock;not null;default:0"`
	Rating       float64         `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	NumReviews   int             `gorm:"column:num_reviews;not null;default:0"`
	IsFeatured   bool            `gorm:"column:is_featured;not null;default:false"`
	Tags         pq.StringArray  `gorm:"column:tags;type:text[]"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate fills the id so inserts do not depend on a database default.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
