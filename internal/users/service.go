package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ratehub/ratehub-backend/internal/listing"
	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/security"
	"gorm.io/gorm"
)

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, params listing.Params) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type ownedStoreFinder interface {
	FindByOwner(ctx context.Context, ownerID int64) (*models.Store, error)
}

type ratingAggregator interface {
	AggregateForStore(ctx context.Context, storeID int64) (ratings.Aggregate, error)
}

// Service exposes admin user management.
type Service interface {
	List(ctx context.Context, params listing.Params) ([]UserDTO, error)
	GetByID(ctx context.Context, id int64) (*UserDetailDTO, error)
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo        userRepository
	stores      ownedStoreFinder
	aggregates  ratingAggregator
	passwordCfg config.PasswordConfig
}

// NewService builds a user service with the provided collaborators.
func NewService(repo userRepository, stores ownedStoreFinder, aggregates ratingAggregator, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store finder required")
	}
	if aggregates == nil {
		return nil, fmt.Errorf("rating aggregator required")
	}
	return &service{
		repo:        repo,
		stores:      stores,
		aggregates:  aggregates,
		passwordCfg: passwordCfg,
	}, nil
}

// List returns the filtered users listing.
func (s *service) List(ctx context.Context, params listing.Params) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	dtos := make([]UserDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

// GetByID returns a single user. Store owners carry their store and its live
// aggregate; an owner without a store is a valid state and carries none.
func (s *service) GetByID(ctx context.Context, id int64) (*UserDetailDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	detail := &UserDetailDTO{UserDTO: *FromModel(user)}
	if user.Role != enums.RoleStoreOwner {
		return detail, nil
	}

	store, err := s.stores.FindByOwner(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owned store")
	}

	agg, err := s.aggregates.AggregateForStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	detail.Store = ownedStoreDTO(store, agg)
	return detail, nil
}

// Create persists a new user with an explicit role. Used by the admin path;
// signup goes through the auth service and forces normal_user.
func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
			WithDetails(map[string]string{"role": "must be one of admin, store_owner, normal_user"})
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Address:      input.Address,
		Role:         input.Role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), nil
}

// Count returns the total number of users.
func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	return count, nil
}
