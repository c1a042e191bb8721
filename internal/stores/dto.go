package stores

import (
	"time"

	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/internal/users"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
)

// StoreDTO exposes safe store data in API responses.
type StoreDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email,omitempty"`
	Description *string   `json:"description,omitempty"`
	Address     *string   `json:"address,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StoreListItemDTO is one row of the stores listing: the store, its owner and
// the live aggregate. UserRating carries the viewer's own rating when the
// listing is rendered for a normal user.
type StoreListItemDTO struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         *string   `json:"email,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Address       *string   `json:"address,omitempty"`
	OwnerName     *string   `json:"owner_name,omitempty"`
	OwnerEmail    *string   `json:"owner_email,omitempty"`
	AverageRating *float64  `json:"average_rating"`
	TotalRatings  int64     `json:"total_ratings"`
	UserRating    *int      `json:"user_rating,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateStoreInput captures an admin store-creation request. The owner account
// is created transactionally alongside the store.
type CreateStoreInput struct {
	Name              string  `json:"name" validate:"required"`
	Email             string  `json:"email" validate:"required,email"`
	Description       *string `json:"description,omitempty"`
	Address           *string `json:"address,omitempty"`
	OwnerName         string  `json:"owner_name" validate:"required"`
	OwnerEmail        string  `json:"owner_email" validate:"required,email"`
	TemporaryPassword string  `json:"temporary_password" validate:"required,min=8"`
}

// CreateStoreDTO holds creation-time data for a new store row.
type CreateStoreDTO struct {
	Name        string
	Email       *string
	Description *string
	Address     *string
	OwnerID     int64
}

// CreatedStoreDTO is the result of the transactional store + owner creation.
type CreatedStoreDTO struct {
	Store StoreDTO      `json:"store"`
	Owner users.UserDTO `json:"owner"`
}

// OwnerStoreDTO is the owner's view of their store with the live aggregate.
type OwnerStoreDTO struct {
	StoreDTO
	AverageRating *float64 `json:"average_rating"`
	TotalRatings  int64    `json:"total_ratings"`
}

// OwnerDashboardDTO bundles everything the owner dashboard renders.
type OwnerDashboardDTO struct {
	Store   StoreDTO                 `json:"store"`
	Stats   ratings.Aggregate        `json:"stats"`
	Ratings []ratings.StoreRatingDTO `json:"ratings"`
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Description: m.Description,
		Address:     m.Address,
		OwnerID:     m.OwnerID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateStoreDTO) ToModel() *models.Store {
	return &models.Store{
		Name:        c.Name,
		Email:       c.Email,
		Description: c.Description,
		Address:     c.Address,
		OwnerID:     c.OwnerID,
	}
}
