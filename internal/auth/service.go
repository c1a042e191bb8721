package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ratehub/ratehub-backend/internal/users"
	pkgauth "github.com/ratehub/ratehub-backend/pkg/auth"
	"github.com/ratehub/ratehub-backend/pkg/auth/session"
	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/metrics"
	"github.com/ratehub/ratehub-backend/pkg/security"
	"gorm.io/gorm"
)

// Credential failures share one message so responses never reveal whether the
// email exists or which check failed.
const invalidCredentialsMessage = "invalid credentials"

type usersRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

type sessionRegistry interface {
	Open(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

// Service exposes authentication operations.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Logout(ctx context.Context, accessID string) error
	ChangePassword(ctx context.Context, principal pkgauth.Principal, req ChangePasswordRequest) error
}

// ServiceParams bundles the auth service dependencies.
type ServiceParams struct {
	UserRepo       usersRepository
	Sessions       sessionRegistry
	JWTConfig      config.JWTConfig
	AdminConfig    config.AdminConfig
	PasswordConfig config.PasswordConfig
	Metrics        *metrics.DomainMetrics
	Now            func() time.Time
}

type service struct {
	users       usersRepository
	sessions    sessionRegistry
	jwtCfg      config.JWTConfig
	adminCfg    config.AdminConfig
	passwordCfg config.PasswordConfig
	metrics     *metrics.DomainMetrics
	now         func() time.Time
}

// NewService builds an auth service from the provided params.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session registry required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if params.AdminConfig.Password == "" {
		return nil, fmt.Errorf("admin password required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:       params.UserRepo,
		sessions:    params.Sessions,
		jwtCfg:      params.JWTConfig,
		adminCfg:    params.AdminConfig,
		passwordCfg: params.PasswordConfig,
		metrics:     params.Metrics,
		now:         now,
	}, nil
}

// Signup registers a normal user and logs them in. The role is forced
// regardless of anything the client sent.
func (s *service) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Address:      req.Address,
		Role:         enums.RoleNormalUser,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.issueFor(ctx, pkgauth.PrincipalFromUser(user))
}

// Login verifies credentials and mints a token. The configured bootstrap
// credentials mint a sentinel admin token without touching the users table.
func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if s.isBootstrapAdmin(email, req.Password) {
		return s.issueFor(ctx, pkgauth.AdminPrincipal(s.adminCfg))
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.rejectLogin()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, s.rejectLogin()
	}

	return s.issueFor(ctx, pkgauth.PrincipalFromUser(user))
}

// Logout revokes the session behind the presented token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// ChangePassword rotates the caller's password after verifying the current
// one. The bootstrap admin has no stored hash to rotate.
func (s *service) ChangePassword(ctx context.Context, principal pkgauth.Principal, req ChangePasswordRequest) error {
	if principal.Sentinel {
		return pkgerrors.New(pkgerrors.CodeForbidden, "bootstrap admin credentials are managed via configuration")
	}

	user, err := s.users.FindByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "current password is incorrect").
			WithDetails(map[string]string{"current_password": "does not match"})
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func (s *service) isBootstrapAdmin(email, password string) bool {
	emailMatch := strings.EqualFold(email, s.adminCfg.Email)
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminCfg.Password)) == 1
	return emailMatch && passwordMatch
}

func (s *service) rejectLogin() error {
	s.metrics.IncAuthFailure("login")
	return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
}

func (s *service) issueFor(ctx context.Context, principal pkgauth.Principal) (*AuthResult, error) {
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		Subject: principal.Subject(),
		Role:    principal.Role,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	if err := s.sessions.Open(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}
	return &AuthResult{
		Token: token,
		User:  PrincipalDTOFrom(principal),
	}, nil
}
