package controllers

import (
	"net/http"

	"github.com/ratehub/ratehub-backend/api/middleware"
	"github.com/ratehub/ratehub-backend/api/responses"
	"github.com/ratehub/ratehub-backend/api/validators"
	"github.com/ratehub/ratehub-backend/internal/listing"
	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/internal/stores"
	pkgauth "github.com/ratehub/ratehub-backend/pkg/auth"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/logger"
)

func requirePrincipal(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (pkgauth.Principal, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
	}
	return principal, ok
}

// UserStores lists stores for a normal user, including their own rating.
func UserStores(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logg)
		if !ok {
			return
		}

		rows, err := svc.Browse(r.Context(), principal.ID, listing.ParamsFromQuery(r.URL.Query()))
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

// UserRateStore submits or updates the caller's rating for a store.
func UserRateStore(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logg)
		if !ok {
			return
		}

		storeID, err := validators.ParseIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body ratings.SubmitRatingInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Submit(r.Context(), principal.ID, storeID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// UserMyRatings lists the caller's own ratings.
func UserMyRatings(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logg)
		if !ok {
			return
		}

		rows, err := svc.MyRatings(r.Context(), principal.ID)
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

// UserDeleteRating removes one of the caller's ratings.
func UserDeleteRating(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logg)
		if !ok {
			return
		}

		ratingID, err := validators.ParseIDParam(r, "ratingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), principal.ID, ratingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "rating deleted"})
	}
}
