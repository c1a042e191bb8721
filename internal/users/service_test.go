package users

import (
	"context"
	"strings"
	"testing"

	"github.com/ratehub/ratehub-backend/internal/listing"
	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	create   func(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	findByID func(ctx context.Context, id int64) (*models.User, error)
	list     func(ctx context.Context, params listing.Params) ([]models.User, error)
}

func (s *stubUserRepo) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	return s.create(ctx, dto)
}

func (s *stubUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findByID(ctx, id)
}

func (s *stubUserRepo) List(ctx context.Context, params listing.Params) ([]models.User, error) {
	return s.list(ctx, params)
}

func (s *stubUserRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

type stubStoreFinder struct {
	store *models.Store
	err   error
}

func (s *stubStoreFinder) FindByOwner(ctx context.Context, ownerID int64) (*models.Store, error) {
	return s.store, s.err
}

type stubAggregator struct {
	agg ratings.Aggregate
}

func (s *stubAggregator) AggregateForStore(ctx context.Context, storeID int64) (ratings.Aggregate, error) {
	return s.agg, nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newTestService(t *testing.T, repo *stubUserRepo, stores *stubStoreFinder, aggs *stubAggregator) Service {
	t.Helper()
	svc, err := NewService(repo, stores, aggs, testPasswordConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateRejectsInvalidRole(t *testing.T) {
	repo := &stubUserRepo{
		create: func(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
			t.Fatal("invalid role must not reach the repository")
			return nil, nil
		},
	}
	svc := newTestService(t, repo, &stubStoreFinder{}, &stubAggregator{})

	_, err := svc.Create(context.Background(), CreateUserInput{
		Name:     "Some User",
		Email:    "user@example.com",
		Password: "Secret#123",
		Role:     enums.Role("superuser"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateHashesPasswordAndNormalizesEmail(t *testing.T) {
	var got CreateUserDTO
	repo := &stubUserRepo{
		create: func(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
			got = dto
			return dto.ToModel(), nil
		},
	}
	svc := newTestService(t, repo, &stubStoreFinder{}, &stubAggregator{})

	_, err := svc.Create(context.Background(), CreateUserInput{
		Name:     "  Some User ",
		Email:    " User@Example.COM ",
		Password: "Secret#123",
		Role:     enums.RoleNormalUser,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Email != "user@example.com" {
		t.Fatalf("expected normalized email, got %q", got.Email)
	}
	if got.Name != "Some User" {
		t.Fatalf("expected trimmed name, got %q", got.Name)
	}
	if got.PasswordHash == "Secret#123" || !strings.HasPrefix(got.PasswordHash, "$argon2id$") {
		t.Fatalf("expected argon2id hash, got %q", got.PasswordHash)
	}
}

func TestCreateDuplicateEmailConflict(t *testing.T) {
	repo := &stubUserRepo{
		create: func(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
			return nil, &duplicateErr{}
		},
	}
	svc := newTestService(t, repo, &stubStoreFinder{}, &stubAggregator{})

	_, err := svc.Create(context.Background(), CreateUserInput{
		Name:     "Some User",
		Email:    "user@example.com",
		Password: "Secret#123",
		Role:     enums.RoleNormalUser,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

type duplicateErr struct{}

func (e *duplicateErr) Error() string {
	return `duplicate key value violates unique constraint "users_email_key"`
}

func TestGetByIDMissingUser(t *testing.T) {
	repo := &stubUserRepo{
		findByID: func(ctx context.Context, id int64) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(t, repo, &stubStoreFinder{}, &stubAggregator{})

	_, err := svc.GetByID(context.Background(), 9)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetByIDAttachesStoreForOwner(t *testing.T) {
	repo := &stubUserRepo{
		findByID: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Name: "Owner", Role: enums.RoleStoreOwner}, nil
		},
	}
	avg := 4.25
	svc := newTestService(t, repo,
		&stubStoreFinder{store: &models.Store{ID: 3, Name: "Corner Cafe", OwnerID: 9}},
		&stubAggregator{agg: ratings.Aggregate{AverageRating: &avg, TotalRatings: 8}},
	)

	detail, err := svc.GetByID(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if detail.Store == nil {
		t.Fatal("expected owned store attached")
	}
	if detail.Store.Name != "Corner Cafe" || detail.Store.TotalRatings != 8 {
		t.Fatalf("unexpected store %+v", detail.Store)
	}
	if detail.Store.AverageRating == nil || *detail.Store.AverageRating != 4.25 {
		t.Fatalf("unexpected average %v", detail.Store.AverageRating)
	}
}

func TestGetByIDOwnerWithoutStore(t *testing.T) {
	repo := &stubUserRepo{
		findByID: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Role: enums.RoleStoreOwner}, nil
		},
	}
	svc := newTestService(t, repo, &stubStoreFinder{err: gorm.ErrRecordNotFound}, &stubAggregator{})

	detail, err := svc.GetByID(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if detail.Store != nil {
		t.Fatalf("expected no store for unassigned owner, got %+v", detail.Store)
	}
}

func TestGetByIDNormalUserSkipsStoreLookup(t *testing.T) {
	repo := &stubUserRepo{
		findByID: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Role: enums.RoleNormalUser}, nil
		},
	}
	finder := &stubStoreFinder{err: gorm.ErrInvalidDB}
	svc := newTestService(t, repo, finder, &stubAggregator{})

	detail, err := svc.GetByID(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if detail.Store != nil {
		t.Fatal("normal users must not carry a store")
	}
}
