package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mangohub/mangostore-backend/api/middleware"
	"github.com/mangohub/mangostore-backend/pkg/enums"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
)

// currentUser pulls the authenticated identity seeded by the auth middleware.
func currentUser(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok || userID == uuid.Nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	role, ok := middleware.RoleFromContext(r.Context())
	if !ok {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, role, nil
}
