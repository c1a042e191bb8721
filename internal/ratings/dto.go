package ratings

import (
	"time"

	"github.com/ratehub/ratehub-backend/pkg/db/models"
)

// RatingDTO exposes a persisted rating in API responses.
type RatingDTO struct {
	ID        int64     `json:"id"`
	StoreID   int64     `json:"store_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRatingDTO is a rating as seen by its author, with the rated store
// attached.
type UserRatingDTO struct {
	ID           int64     `json:"id"`
	StoreID      int64     `json:"store_id"`
	StoreName    string    `json:"store_name"`
	StoreAddress *string   `json:"store_address,omitempty"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StoreRatingDTO is a rating as seen by the store's owner, with the author
// attached.
type StoreRatingDTO struct {
	ID        int64     `json:"rating_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminRatingDTO is a rating in the platform-wide listing, with both sides of
// the relationship named.
type AdminRatingDTO struct {
	ID        int64     `json:"id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	StoreID   int64     `json:"store_id"`
	StoreName string    `json:"store_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Aggregate is the per-store rating summary, always computed on read.
// AverageRating is nil when the store has no ratings.
type Aggregate struct {
	AverageRating *float64 `json:"average_rating"`
	TotalRatings  int64    `json:"total_ratings"`
}

// SubmitRatingInput carries a create-or-update rating request. Range
// validation is owned by the service so the caller gets field-level detail.
type SubmitRatingInput struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

// FromModel maps the persisted rating into a DTO.
func FromModel(m *models.Rating) *RatingDTO {
	if m == nil {
		return nil
	}
	return &RatingDTO{
		ID:        m.ID,
		StoreID:   m.StoreID,
		UserID:    m.UserID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
