package auth

import "github.com/mangohub/mangostore-backend/internal/users"

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the credential payload for sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the minted token plus the account's public view.
type AuthResponse struct {
	AccessToken string             `json:"access_token"`
	User        users.UserResponse `json:"user"`
}
