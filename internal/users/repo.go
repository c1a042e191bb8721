package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/ratehub/ratehub-backend/internal/listing"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"gorm.io/gorm"
)

// ListDefinition is the allow-list for the admin users listing.
var ListDefinition = listing.Definition{
	Filters: map[string]listing.Filter{
		"name":    {Column: "users.name", Match: listing.MatchSubstring},
		"email":   {Column: "users.email", Match: listing.MatchSubstring},
		"address": {Column: "users.address", Match: listing.MatchSubstring},
		"role":    {Column: "users.role", Match: listing.MatchExact},
	},
	Sorts: map[string]string{
		"id":         "users.id",
		"name":       "users.name",
		"email":      "users.email",
		"role":       "users.role",
		"created_at": "users.created_at",
	},
	DefaultSort: "users.created_at DESC",
}

// Repository handles user persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to user operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new user row.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateWithTx persists a new user row inside the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, dto CreateUserDTO) (*models.User, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	user := dto.ToModel()
	if err := tx.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads a user by email, matched case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePasswordHash replaces the stored hash for a user.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	if hash == "" {
		return fmt.Errorf("hash is required")
	}
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns the filtered users listing.
func (r *Repository) List(ctx context.Context, params listing.Params) ([]models.User, error) {
	if err := ListDefinition.Validate(params); err != nil {
		return nil, err
	}
	var users []models.User
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Scopes(ListDefinition.Scope(params)).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the total number of users.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
