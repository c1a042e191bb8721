package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ratehub/ratehub-backend/internal/listing"
	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/internal/users"
	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/security"
	"gorm.io/gorm"
)

const noStoreMessage = "no store found for this owner"

type storeRepository interface {
	CreateWithTx(tx *gorm.DB, dto CreateStoreDTO) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID int64) (*models.Store, error)
	List(ctx context.Context, params listing.Params, viewerID int64) ([]StoreListItemDTO, error)
	Count(ctx context.Context) (int64, error)
}

type ownerCreator interface {
	CreateWithTx(tx *gorm.DB, dto users.CreateUserDTO) (*models.User, error)
}

type ratingsReader interface {
	AggregateForStore(ctx context.Context, storeID int64) (ratings.Aggregate, error)
	ListForStore(ctx context.Context, storeID int64) ([]ratings.StoreRatingDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes store operations.
type Service interface {
	Browse(ctx context.Context, viewerID int64, params listing.Params) ([]StoreListItemDTO, error)
	AdminList(ctx context.Context, params listing.Params) ([]StoreListItemDTO, error)
	Create(ctx context.Context, input CreateStoreInput) (*CreatedStoreDTO, error)
	OwnerStore(ctx context.Context, ownerID int64) (*OwnerStoreDTO, error)
	OwnerDashboard(ctx context.Context, ownerID int64) (*OwnerDashboardDTO, error)
	OwnerRatings(ctx context.Context, ownerID int64) ([]ratings.StoreRatingDTO, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo        storeRepository
	owners      ownerCreator
	ratings     ratingsReader
	tx          txRunner
	passwordCfg config.PasswordConfig
}

// NewService builds a store service with the provided collaborators.
func NewService(repo storeRepository, owners ownerCreator, ratingsSvc ratingsReader, tx txRunner, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if owners == nil {
		return nil, fmt.Errorf("owner creator required")
	}
	if ratingsSvc == nil {
		return nil, fmt.Errorf("ratings reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		owners:      owners,
		ratings:     ratingsSvc,
		tx:          tx,
		passwordCfg: passwordCfg,
	}, nil
}

// Browse returns the stores listing for a normal user, including their own
// rating per store.
func (s *service) Browse(ctx context.Context, viewerID int64, params listing.Params) ([]StoreListItemDTO, error) {
	rows, err := s.repo.List(ctx, params, viewerID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	return rows, nil
}

// AdminList returns the stores listing without a viewer perspective.
func (s *service) AdminList(ctx context.Context, params listing.Params) ([]StoreListItemDTO, error) {
	rows, err := s.repo.List(ctx, params, 0)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	return rows, nil
}

// Create persists the store and its owner account in one transaction. A
// failure at either step rolls back both writes.
func (s *service) Create(ctx context.Context, input CreateStoreInput) (*CreatedStoreDTO, error) {
	hash, err := security.HashPassword(input.TemporaryPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash temporary password")
	}

	var (
		owner *models.User
		store *models.Store
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		owner, err = s.owners.CreateWithTx(tx, users.CreateUserDTO{
			Name:         strings.TrimSpace(input.OwnerName),
			Email:        strings.ToLower(strings.TrimSpace(input.OwnerEmail)),
			PasswordHash: hash,
			Role:         enums.RoleStoreOwner,
		})
		if err != nil {
			return err
		}

		storeEmail := strings.ToLower(strings.TrimSpace(input.Email))
		store, err = s.repo.CreateWithTx(tx, CreateStoreDTO{
			Name:        strings.TrimSpace(input.Name),
			Email:       &storeEmail,
			Description: input.Description,
			Address:     input.Address,
			OwnerID:     owner.ID,
		})
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "owner email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}

	return &CreatedStoreDTO{
		Store: *FromModel(store),
		Owner: *users.FromModel(owner),
	}, nil
}

// OwnerStore returns the caller's store with its live aggregate.
func (s *service) OwnerStore(ctx context.Context, ownerID int64) (*OwnerStoreDTO, error) {
	store, err := s.findOwnerStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	agg, err := s.ratings.AggregateForStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	return &OwnerStoreDTO{
		StoreDTO:      *FromModel(store),
		AverageRating: agg.AverageRating,
		TotalRatings:  agg.TotalRatings,
	}, nil
}

// OwnerDashboard bundles the store, its aggregate and the raters.
func (s *service) OwnerDashboard(ctx context.Context, ownerID int64) (*OwnerDashboardDTO, error) {
	store, err := s.findOwnerStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	agg, err := s.ratings.AggregateForStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	raters, err := s.ratings.ListForStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	return &OwnerDashboardDTO{
		Store:   *FromModel(store),
		Stats:   agg,
		Ratings: raters,
	}, nil
}

// OwnerRatings lists every rating left on the caller's store.
func (s *service) OwnerRatings(ctx context.Context, ownerID int64) ([]ratings.StoreRatingDTO, error) {
	store, err := s.findOwnerStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.ratings.ListForStore(ctx, store.ID)
}

// Count returns the total number of stores.
func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stores")
	}
	return count, nil
}

func (s *service) findOwnerStore(ctx context.Context, ownerID int64) (*models.Store, error) {
	store, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, noStoreMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owned store")
	}
	return store, nil
}
