package controllers

import (
	"net/http"

	"github.com/ratehub/ratehub-backend/api/responses"
	"github.com/ratehub/ratehub-backend/internal/stores"
	"github.com/ratehub/ratehub-backend/pkg/logger"
)

// OwnerDashboard bundles the caller's store, its aggregate, and the raters.
func OwnerDashboard(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logg)
		if !ok {
			return
		}

		dash, err := svc.OwnerDashboard(r.Context(), principal.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dash)
	}
}

// OwnerStore returns the caller's store with its live aggregate.
func OwnerStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logg)
		if !ok {
			return
		}

		store, err := svc.OwnerStore(r.Context(), principal.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// OwnerRatings lists every rating left on the caller's store.
func OwnerRatings(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logg)
		if !ok {
			return
		}

		rows, err := svc.OwnerRatings(r.Context(), principal.ID)
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
