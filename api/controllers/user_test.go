package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ratehub/ratehub-backend/api/middleware"
	"github.com/ratehub/ratehub-backend/internal/listing"
	"github.com/ratehub/ratehub-backend/internal/ratings"
	pkgauth "github.com/ratehub/ratehub-backend/pkg/auth"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	"github.com/ratehub/ratehub-backend/pkg/logger"
)

type stubRatingsService struct {
	submitFn func(ctx context.Context, userID, storeID int64, input ratings.SubmitRatingInput) (*ratings.RatingDTO, error)
	deleteFn func(ctx context.Context, userID, ratingID int64) error
}

func (s stubRatingsService) Submit(ctx context.Context, userID, storeID int64, input ratings.SubmitRatingInput) (*ratings.RatingDTO, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, userID, storeID, input)
	}
	return &ratings.RatingDTO{}, nil
}

func (s stubRatingsService) Delete(ctx context.Context, userID, ratingID int64) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, userID, ratingID)
	}
	return nil
}

func (stubRatingsService) MyRatings(ctx context.Context, userID int64) ([]ratings.UserRatingDTO, error) {
	return []ratings.UserRatingDTO{}, nil
}

func (stubRatingsService) ListForStore(ctx context.Context, storeID int64) ([]ratings.StoreRatingDTO, error) {
	return []ratings.StoreRatingDTO{}, nil
}

func (stubRatingsService) ListAll(ctx context.Context, params listing.Params) ([]ratings.AdminRatingDTO, error) {
	return []ratings.AdminRatingDTO{}, nil
}

func (stubRatingsService) AggregateForStore(ctx context.Context, storeID int64) (ratings.Aggregate, error) {
	return ratings.Aggregate{}, nil
}

func (stubRatingsService) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test-controllers", Output: io.Discard})
}

func requestWithPrincipal(method, target string, body []byte, principal pkgauth.Principal, params map[string]string) *http.Request {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}

	ctx := middleware.WithPrincipal(req.Context(), principal)
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

func TestUserRateStoreSubmitsForCaller(t *testing.T) {
	var gotUserID, gotStoreID int64
	var gotInput ratings.SubmitRatingInput

	svc := stubRatingsService{
		submitFn: func(ctx context.Context, userID, storeID int64, input ratings.SubmitRatingInput) (*ratings.RatingDTO, error) {
			gotUserID, gotStoreID, gotInput = userID, storeID, input
			return &ratings.RatingDTO{ID: 31, UserID: userID, StoreID: storeID, Rating: input.Rating}, nil
		},
	}

	principal := pkgauth.Principal{ID: 7, Role: enums.RoleNormalUser}
	req := requestWithPrincipal(http.MethodPost, "/api/user/stores/12/rate",
		[]byte(`{"rating":4,"comment":"solid"}`), principal, map[string]string{"storeId": "12"})
	resp := httptest.NewRecorder()

	UserRateStore(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if gotUserID != 7 || gotStoreID != 12 {
		t.Fatalf("expected submit for user 7 store 12 got user %d store %d", gotUserID, gotStoreID)
	}
	if gotInput.Rating != 4 || gotInput.Comment == nil || *gotInput.Comment != "solid" {
		t.Fatalf("unexpected input %+v", gotInput)
	}

	var envelope struct {
		Success bool               `json:"success"`
		Data    ratings.RatingDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success || envelope.Data.ID != 31 {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestUserRateStoreRejectsUnknownBodyFields(t *testing.T) {
	called := false
	svc := stubRatingsService{
		submitFn: func(ctx context.Context, userID, storeID int64, input ratings.SubmitRatingInput) (*ratings.RatingDTO, error) {
			called = true
			return nil, nil
		},
	}

	principal := pkgauth.Principal{ID: 7, Role: enums.RoleNormalUser}
	req := requestWithPrincipal(http.MethodPost, "/api/user/stores/12/rate",
		[]byte(`{"rating":4,"user_id":99}`), principal, map[string]string{"storeId": "12"})
	resp := httptest.NewRecorder()

	UserRateStore(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatal("service should not run for invalid body")
	}
}

func TestUserRateStoreRejectsBadStoreParam(t *testing.T) {
	principal := pkgauth.Principal{ID: 7, Role: enums.RoleNormalUser}
	req := requestWithPrincipal(http.MethodPost, "/api/user/stores/abc/rate",
		[]byte(`{"rating":4}`), principal, map[string]string{"storeId": "abc"})
	resp := httptest.NewRecorder()

	UserRateStore(stubRatingsService{}, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUserDeleteRatingPassesCallerID(t *testing.T) {
	var gotUserID, gotRatingID int64
	svc := stubRatingsService{
		deleteFn: func(ctx context.Context, userID, ratingID int64) error {
			gotUserID, gotRatingID = userID, ratingID
			return nil
		},
	}

	principal := pkgauth.Principal{ID: 7, Role: enums.RoleNormalUser}
	req := requestWithPrincipal(http.MethodDelete, "/api/user/ratings/31", nil, principal, map[string]string{"ratingId": "31"})
	resp := httptest.NewRecorder()

	UserDeleteRating(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if gotUserID != 7 || gotRatingID != 31 {
		t.Fatalf("expected delete for user 7 rating 31 got user %d rating %d", gotUserID, gotRatingID)
	}
}
