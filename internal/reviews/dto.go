package reviews

import (
	"github.com/google/uuid"

	"github.com/mangohub/mangostore-backend/pkg/enums"
)

// Actor identifies who is performing a review operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// CreateReviewInput is the payload for posting a review.
type CreateReviewInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment"`
}

// UpdateReviewInput carries a partial edit. Nil fields stay unchanged.
type UpdateReviewInput struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}
