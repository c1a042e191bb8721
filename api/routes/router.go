package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ratehub/ratehub-backend/api/controllers"
	"github.com/ratehub/ratehub-backend/api/middleware"
	authsvc "github.com/ratehub/ratehub-backend/internal/auth"
	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/internal/stores"
	"github.com/ratehub/ratehub-backend/internal/users"
	"github.com/ratehub/ratehub-backend/pkg/auth/session"
	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"github.com/ratehub/ratehub-backend/pkg/metrics"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type userFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	Database       pinger
	Cache          pinger
	Users          userFinder
	Sessions       session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics
	DomainMetrics  *metrics.DomainMetrics
	MetricsHandler http.Handler

	AuthService    authsvc.Service
	UsersService   users.Service
	StoresService  stores.Service
	RatingsService ratings.Service
}

// NewRouter assembles the chi router with the full middleware stack and the
// role-partitioned route groups.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(p.HTTPMetrics),
	)

	authGate := middleware.Auth(cfg.JWT, cfg.Admin, p.Users, p.Sessions, p.DomainMetrics, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Database, p.Cache))
	})

	if p.MetricsHandler != nil {
		r.Handle("/metrics", p.MetricsHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", controllers.AuthSignup(p.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(p.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authGate)
			r.Get("/me", controllers.AuthMe(logg))
			r.Post("/logout", controllers.AuthLogout(p.AuthService, logg))
			r.Post("/change-password", controllers.AuthChangePassword(p.AuthService, logg))
		})
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(authGate)
		r.Use(middleware.RequireRoles(logg, enums.RoleNormalUser))

		r.Get("/stores", controllers.UserStores(p.StoresService, logg))
		r.Post("/stores/{storeId}/rate", controllers.UserRateStore(p.RatingsService, logg))
		r.Get("/my-ratings", controllers.UserMyRatings(p.RatingsService, logg))
		r.Delete("/ratings/{ratingId}", controllers.UserDeleteRating(p.RatingsService, logg))
	})

	r.Route("/api/owner", func(r chi.Router) {
		r.Use(authGate)
		r.Use(middleware.RequireRoles(logg, enums.RoleStoreOwner))

		r.Get("/dashboard", controllers.OwnerDashboard(p.StoresService, logg))
		r.Get("/store", controllers.OwnerStore(p.StoresService, logg))
		r.Get("/ratings", controllers.OwnerRatings(p.StoresService, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authGate)
		r.Use(middleware.RequireRoles(logg, enums.RoleAdmin))

		r.Get("/dashboard", controllers.AdminDashboard(p.UsersService, p.StoresService, p.RatingsService, logg))
		r.Get("/users", controllers.AdminListUsers(p.UsersService, logg))
		r.Get("/users/{id}", controllers.AdminGetUser(p.UsersService, logg))
		r.Post("/users", controllers.AdminCreateUser(p.UsersService, logg))
		r.Get("/stores", controllers.AdminListStores(p.StoresService, logg))
		r.Post("/stores", controllers.AdminCreateStore(p.StoresService, logg))
		r.Get("/ratings", controllers.AdminListRatings(p.RatingsService, logg))
	})

	return r
}
