package users

import (
	"time"

	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
)

// UserDTO exposes safe user data in API responses.
type UserDTO struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Address   *string    `json:"address,omitempty"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// OwnedStoreDTO is the store a store_owner runs, with its live aggregate.
type OwnedStoreDTO struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Email         *string  `json:"email,omitempty"`
	Address       *string  `json:"address,omitempty"`
	AverageRating *float64 `json:"average_rating"`
	TotalRatings  int64    `json:"total_ratings"`
}

// UserDetailDTO is the admin view of a single user. Store is populated only
// for store owners with an assigned store.
type UserDetailDTO struct {
	UserDTO
	Store *OwnedStoreDTO `json:"store,omitempty"`
}

// CreateUserDTO holds creation-time data for a new user row. PasswordHash is
// already hashed by the caller.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Address      *string
	Role         enums.Role
}

// CreateUserInput captures an admin user-creation request before hashing.
// Role validity beyond presence is owned by the service.
type CreateUserInput struct {
	Name     string     `json:"name" validate:"required"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8"`
	Address  *string    `json:"address,omitempty"`
	Role     enums.Role `json:"role" validate:"required"`
}

// FromModel maps the persisted user into a DTO.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Address:   m.Address,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleNormalUser
	}
	return &models.User{
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Address:      c.Address,
		Role:         role,
	}
}

func ownedStoreDTO(store *models.Store, agg ratings.Aggregate) *OwnedStoreDTO {
	if store == nil {
		return nil
	}
	return &OwnedStoreDTO{
		ID:            store.ID,
		Name:          store.Name,
		Email:         store.Email,
		Address:       store.Address,
		AverageRating: agg.AverageRating,
		TotalRatings:  agg.TotalRatings,
	}
}
