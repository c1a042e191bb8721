package auth

import (
	pkgauth "github.com/ratehub/ratehub-backend/pkg/auth"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
)

// SignupRequest is the public registration payload. The role is always forced
// to normal_user server-side.
type SignupRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Address  *string `json:"address,omitempty"`
}

// LoginRequest is the credential payload for both persisted users and the
// bootstrap admin.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest rotates the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// PrincipalDTO is the identity shape returned by auth endpoints.
type PrincipalDTO struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  enums.Role `json:"role"`
}

// AuthResult carries a freshly minted token and the identity behind it.
type AuthResult struct {
	Token string       `json:"token"`
	User  PrincipalDTO `json:"user"`
}

// PrincipalDTOFrom maps a resolved principal into the response shape.
func PrincipalDTOFrom(p pkgauth.Principal) PrincipalDTO {
	return PrincipalDTO{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
	}
}

func principalDTOFromUser(user *models.User) PrincipalDTO {
	return PrincipalDTOFrom(pkgauth.PrincipalFromUser(user))
}
