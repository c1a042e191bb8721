package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ratehub/ratehub-backend/api/responses"
	pkgauth "github.com/ratehub/ratehub-backend/pkg/auth"
	"github.com/ratehub/ratehub-backend/pkg/auth/session"
	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"github.com/ratehub/ratehub-backend/pkg/metrics"
	"gorm.io/gorm"
)

// Every rejection uses the same message so responses never explain which
// check failed.
const authRequiredMessage = "authentication required"

type userFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Auth validates a bearer token and seeds the request context with the
// resolved principal. Sentinel claims synthesize the bootstrap admin without a
// user lookup; every other subject must still exist in the users table.
func Auth(cfg config.JWTConfig, adminCfg config.AdminConfig, users userFinder, sessions session.AccessSessionChecker, domainMetrics *metrics.DomainMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(stage string) {
				domainMetrics.IncAuthFailure(stage)
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, authRequiredMessage))
			}

			token := bearerToken(r)
			if token == "" {
				reject("credentials")
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil || claims.ID == "" {
				reject("token")
				return
			}

			if sessions != nil {
				ok, err := sessions.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					reject("session")
					return
				}
			}

			var principal pkgauth.Principal
			if claims.IsAdminSentinel() {
				principal = pkgauth.AdminPrincipal(adminCfg)
			} else {
				userID, err := claims.UserID()
				if err != nil {
					reject("subject")
					return
				}
				user, err := users.FindByID(r.Context(), userID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						// Valid token for a since-deleted user.
						reject("subject")
						return
					}
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
					return
				}
				principal = pkgauth.PrincipalFromUser(user)
			}

			ctx := WithPrincipal(r.Context(), principal)
			ctx = WithAccessID(ctx, claims.ID)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    principal.Subject(),
					"actor_role": string(principal.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
