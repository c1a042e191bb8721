package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ratehub/ratehub-backend/internal/listing"
	"github.com/ratehub/ratehub-backend/pkg/db"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ratingMin = 1
	ratingMax = 5

	outcomeCreated = "created"
	outcomeUpdated = "updated"
)

type ratingRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Rating, error)
	FindByUserAndStore(ctx context.Context, userID, storeID int64) (*models.Rating, error)
	Create(ctx context.Context, rating *models.Rating) error
	Update(ctx context.Context, rating *models.Rating) error
	UpdateByUserAndStore(ctx context.Context, userID, storeID int64, value int, comment *string) (*models.Rating, error)
	Delete(ctx context.Context, id int64) error
	Aggregate(ctx context.Context, storeID int64) (sql.NullFloat64, int64, error)
	ListForUser(ctx context.Context, userID int64) ([]UserRatingDTO, error)
	ListForStore(ctx context.Context, storeID int64) ([]StoreRatingDTO, error)
	ListAll(ctx context.Context, params listing.Params) ([]AdminRatingDTO, error)
	Count(ctx context.Context) (int64, error)
}

type storeChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Service exposes rating operations.
type Service interface {
	Submit(ctx context.Context, userID, storeID int64, input SubmitRatingInput) (*RatingDTO, error)
	Delete(ctx context.Context, userID, ratingID int64) error
	MyRatings(ctx context.Context, userID int64) ([]UserRatingDTO, error)
	ListForStore(ctx context.Context, storeID int64) ([]StoreRatingDTO, error)
	ListAll(ctx context.Context, params listing.Params) ([]AdminRatingDTO, error)
	AggregateForStore(ctx context.Context, storeID int64) (Aggregate, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo    ratingRepository
	stores  storeChecker
	metrics *metrics.DomainMetrics
}

// NewService builds a rating service with the provided collaborators.
func NewService(repo ratingRepository, stores storeChecker, domainMetrics *metrics.DomainMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rating repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store checker required")
	}
	return &service{
		repo:    repo,
		stores:  stores,
		metrics: domainMetrics,
	}, nil
}

// Submit creates the caller's rating for a store or updates it in place. The
// storage unique constraint is the concurrency backstop: an insert losing the
// race is retried once as an update before surfacing a conflict.
func (s *service) Submit(ctx context.Context, userID, storeID int64, input SubmitRatingInput) (*RatingDTO, error) {
	if input.Rating < ratingMin || input.Rating > ratingMax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5").
			WithDetails(map[string]string{"rating": fmt.Sprintf("must be an integer between %d and %d", ratingMin, ratingMax)})
	}

	exists, err := s.stores.Exists(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	existing, err := s.repo.FindByUserAndStore(ctx, userID, storeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rating")
	}

	if existing != nil {
		existing.Rating = input.Rating
		existing.Comment = input.Comment
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rating")
		}
		s.metrics.IncRatingSubmission(outcomeUpdated)
		return FromModel(existing), nil
	}

	rating := &models.Rating{
		StoreID: storeID,
		UserID:  userID,
		Rating:  input.Rating,
		Comment: input.Comment,
	}
	err = s.repo.Create(ctx, rating)
	if err == nil {
		s.metrics.IncRatingSubmission(outcomeCreated)
		return FromModel(rating), nil
	}
	if !db.IsUniqueViolation(err, UniqueConstraintName) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rating")
	}

	// Lost the insert race to a concurrent submit for the same (user, store).
	// The winning row already exists, so convert this write into an update.
	s.metrics.IncUpsertRetry()
	updated, retryErr := s.repo.UpdateByUserAndStore(ctx, userID, storeID, input.Rating, input.Comment)
	if retryErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, retryErr, "rating already submitted")
	}
	s.metrics.IncRatingSubmission(outcomeUpdated)
	return FromModel(updated), nil
}

// Delete removes the caller's rating, enforcing existence and ownership.
func (s *service) Delete(ctx context.Context, userID, ratingID int64) error {
	rating, err := s.repo.FindByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "rating not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rating")
	}
	if rating.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "rating belongs to another user")
	}
	if err := s.repo.Delete(ctx, ratingID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete rating")
	}
	return nil
}

// MyRatings lists the caller's ratings with store details.
func (s *service) MyRatings(ctx context.Context, userID int64) ([]UserRatingDTO, error) {
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ratings")
	}
	return rows, nil
}

// ListForStore lists every rating on a store with the author attached.
func (s *service) ListForStore(ctx context.Context, storeID int64) ([]StoreRatingDTO, error) {
	rows, err := s.repo.ListForStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store ratings")
	}
	return rows, nil
}

// ListAll returns the filtered platform-wide ratings listing.
func (s *service) ListAll(ctx context.Context, params listing.Params) ([]AdminRatingDTO, error) {
	rows, err := s.repo.ListAll(ctx, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ratings")
	}
	return rows, nil
}

// AggregateForStore computes the store's rating summary at read time. The
// average is the mean rounded to two decimals, nil when no ratings exist.
func (s *service) AggregateForStore(ctx context.Context, storeID int64) (Aggregate, error) {
	avg, total, err := s.repo.Aggregate(ctx, storeID)
	if err != nil {
		return Aggregate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
	}
	if total == 0 || !avg.Valid {
		return Aggregate{TotalRatings: 0}, nil
	}
	rounded, _ := decimal.NewFromFloat(avg.Float64).Round(2).Float64()
	return Aggregate{
		AverageRating: &rounded,
		TotalRatings:  total,
	}, nil
}

// Count returns the total number of ratings on the platform.
func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count ratings")
	}
	return count, nil
}
