package middleware

import (
	"fmt"
	"net/http"

	"github.com/ratehub/ratehub-backend/api/responses"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/logger"
)

// RequireRoles rejects any principal whose role is not in the allowed set.
// Exact membership, no hierarchy: admin does not implicitly pass a
// normal_user gate. The 403 names the caller's actual role.
func RequireRoles(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	allowed := make(map[enums.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, authRequiredMessage))
				return
			}
			if _, ok := allowed[principal.Role]; !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("insufficient role: %s", principal.Role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
