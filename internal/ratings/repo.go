package ratings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ratehub/ratehub-backend/internal/listing"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"gorm.io/gorm"
)

// UniqueConstraintName is the composite constraint backing the
// one-rating-per-user-per-store invariant.
const UniqueConstraintName = "idx_ratings_user_store"

// ListDefinition is the allow-list for the platform-wide ratings listing.
var ListDefinition = listing.Definition{
	Filters: map[string]listing.Filter{
		"user_name":  {Column: "users.name", Match: listing.MatchSubstring},
		"store_name": {Column: "stores.name", Match: listing.MatchSubstring},
		"comment":    {Column: "ratings.comment", Match: listing.MatchSubstring},
		"rating":     {Column: "ratings.rating", Match: listing.MatchInteger},
	},
	Sorts: map[string]string{
		"id":         "ratings.id",
		"rating":     "ratings.rating",
		"created_at": "ratings.created_at",
	},
	DefaultSort: "ratings.created_at DESC",
}

// Repository handles rating persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to rating operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a rating by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).First(&rating, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

// FindByUserAndStore loads the single rating a user left for a store.
func (r *Repository) FindByUserAndStore(ctx context.Context, userID, storeID int64) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&rating).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

// Create persists a new rating row.
func (r *Repository) Create(ctx context.Context, rating *models.Rating) error {
	if rating == nil {
		return fmt.Errorf("rating is required")
	}
	return r.db.WithContext(ctx).Create(rating).Error
}

// Update saves the provided rating.
func (r *Repository) Update(ctx context.Context, rating *models.Rating) error {
	if rating == nil {
		return fmt.Errorf("rating is required")
	}
	return r.db.WithContext(ctx).Save(rating).Error
}

// UpdateByUserAndStore rewrites the value and comment of an existing rating
// addressed by its natural key. Used when an insert loses the uniqueness race
// and the row id is held by the competing writer.
func (r *Repository) UpdateByUserAndStore(ctx context.Context, userID, storeID int64, value int, comment *string) (*models.Rating, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Updates(map[string]any{
			"rating":     value,
			"comment":    comment,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByUserAndStore(ctx, userID, storeID)
}

// Delete removes a rating row by primary key.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Rating{}, "id = ?", id).Error
}

type aggregateRow struct {
	Average sql.NullFloat64
	Total   int64
}

// Aggregate computes the raw average and count for a store's ratings.
func (r *Repository) Aggregate(ctx context.Context, storeID int64) (sql.NullFloat64, int64, error) {
	var row aggregateRow
	if err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("AVG(rating) AS average, COUNT(*) AS total").
		Where("store_id = ?", storeID).
		Scan(&row).Error; err != nil {
		return sql.NullFloat64{}, 0, err
	}
	return row.Average, row.Total, nil
}

// ListForUser returns the caller's ratings with the rated stores attached.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]UserRatingDTO, error) {
	var rows []UserRatingDTO
	if err := r.db.WithContext(ctx).
		Table("ratings").
		Select("ratings.id AS id, ratings.store_id AS store_id, stores.name AS store_name, stores.address AS store_address, ratings.rating AS rating, ratings.comment AS comment, ratings.created_at AS created_at, ratings.updated_at AS updated_at").
		Joins("LEFT JOIN stores ON stores.id = ratings.store_id").
		Where("ratings.user_id = ?", userID).
		Order("ratings.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListForStore returns every rating left on a store with the author attached.
func (r *Repository) ListForStore(ctx context.Context, storeID int64) ([]StoreRatingDTO, error) {
	var rows []StoreRatingDTO
	if err := r.db.WithContext(ctx).
		Table("ratings").
		Select("ratings.id AS id, ratings.rating AS rating, ratings.comment AS comment, users.id AS user_id, users.name AS user_name, users.email AS user_email, ratings.created_at AS created_at").
		Joins("LEFT JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id = ?", storeID).
		Order("ratings.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns the filtered platform-wide ratings listing.
func (r *Repository) ListAll(ctx context.Context, params listing.Params) ([]AdminRatingDTO, error) {
	if err := ListDefinition.Validate(params); err != nil {
		return nil, err
	}
	var rows []AdminRatingDTO
	if err := r.db.WithContext(ctx).
		Table("ratings").
		Select("ratings.id AS id, ratings.rating AS rating, ratings.comment AS comment, users.id AS user_id, users.name AS user_name, stores.id AS store_id, stores.name AS store_name, ratings.created_at AS created_at").
		Joins("LEFT JOIN users ON users.id = ratings.user_id").
		Joins("LEFT JOIN stores ON stores.id = ratings.store_id").
		Scopes(ListDefinition.Scope(params)).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the total number of ratings on the platform.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Rating{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
