package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mangohub/mangostore-backend/pkg/db/models"
	"github.com/mangohub/mangostore-backend/pkg/pagination"
)

// Repository covers order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	List(ctx context.Context, params pagination.Params) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) (*models.Order, error)
}
