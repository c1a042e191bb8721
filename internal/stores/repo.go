package stores

import (
	"context"
	"errors"

	"github.com/ratehub/ratehub-backend/internal/listing"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"gorm.io/gorm"
)

// ListDefinition is the allow-list for the stores listing. average_rating is
// an aggregated alias, so it is ordered by the alias rather than a column.
var ListDefinition = listing.Definition{
	Filters: map[string]listing.Filter{
		"name":    {Column: "stores.name", Match: listing.MatchSubstring},
		"email":   {Column: "stores.email", Match: listing.MatchSubstring},
		"address": {Column: "stores.address", Match: listing.MatchSubstring},
	},
	Sorts: map[string]string{
		"id":             "stores.id",
		"name":           "stores.name",
		"average_rating": "average_rating",
		"created_at":     "stores.created_at",
	},
	DefaultSort: "stores.created_at DESC",
}

const listSelect = "stores.id AS id, stores.name AS name, stores.email AS email, stores.description AS description, stores.address AS address, " +
	"owners.name AS owner_name, owners.email AS owner_email, " +
	"ROUND(AVG(ratings.rating), 2) AS average_rating, COUNT(ratings.id) AS total_ratings, stores.created_at AS created_at"

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx persists a new store row inside the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, dto CreateStoreDTO) (*models.Store, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	store := dto.ToModel()
	if err := tx.Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a store by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner loads the single store assigned to an owner.
func (r *Repository) FindByOwner(ctx context.Context, ownerID int64) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// Exists reports whether a store row exists.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Select("id").First(&store, "id = ?", id).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// List returns the filtered stores listing with owner and aggregate columns.
// A positive viewerID additionally attaches that user's own rating per store.
func (r *Repository) List(ctx context.Context, params listing.Params, viewerID int64) ([]StoreListItemDTO, error) {
	if err := ListDefinition.Validate(params); err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).Table("stores")

	if viewerID > 0 {
		q = q.Select(listSelect+", (SELECT viewer.rating FROM ratings viewer WHERE viewer.user_id = ? AND viewer.store_id = stores.id) AS user_rating", viewerID)
	} else {
		q = q.Select(listSelect)
	}

	var rows []StoreListItemDTO
	if err := q.
		Joins("LEFT JOIN users owners ON owners.id = stores.owner_id").
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Group("stores.id, owners.id").
		Scopes(ListDefinition.Scope(params)).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the total number of stores.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Store{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
