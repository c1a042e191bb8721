package controllers

import (
	"net/http"

	"github.com/ratehub/ratehub-backend/api/responses"
	"github.com/ratehub/ratehub-backend/api/validators"
	"github.com/ratehub/ratehub-backend/internal/listing"
	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/internal/stores"
	"github.com/ratehub/ratehub-backend/internal/users"
	"github.com/ratehub/ratehub-backend/pkg/logger"
)

// AdminDashboard returns platform-wide totals.
func AdminDashboard(usersSvc users.Service, storesSvc stores.Service, ratingsSvc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totalUsers, err := usersSvc.Count(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totalStores, err := storesSvc.Count(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totalRatings, err := ratingsSvc.Count(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{
			"total_users":   totalUsers,
			"total_stores":  totalStores,
			"total_ratings": totalRatings,
		})
	}
}

// AdminListUsers returns the filtered users listing.
func AdminListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), listing.ParamsFromQuery(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"count": len(rows),
			"users": rows,
		})
	}
}

// AdminGetUser returns one user; store owners carry their store and its
// aggregate.
func AdminGetUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminCreateUser persists a new user with an explicit role.
func AdminCreateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body users.CreateUserInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AdminListStores returns the filtered stores listing.
func AdminListStores(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.AdminList(r.Context(), listing.ParamsFromQuery(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"count":  len(rows),
			"stores": rows,
		})
	}
}

// AdminCreateStore creates a store and its owner account in one transaction.
func AdminCreateStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body stores.CreateStoreInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AdminListRatings returns the filtered platform-wide ratings listing.
func AdminListRatings(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListAll(r.Context(), listing.ParamsFromQuery(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"count":   len(rows),
			"ratings": rows,
		})
	}
}
