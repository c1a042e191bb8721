package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ratehub/ratehub-backend/internal/users"
	pkgauth "github.com/ratehub/ratehub-backend/pkg/auth"
	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
	"github.com/ratehub/ratehub-backend/pkg/security"
	"gorm.io/gorm"
)

type stubUsersRepo struct {
	create      func(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	findByEmail func(ctx context.Context, email string) (*models.User, error)
	findByID    func(ctx context.Context, id int64) (*models.User, error)
	updateHash  func(ctx context.Context, id int64, hash string) error
}

func (s *stubUsersRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	return s.create(ctx, dto)
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findByEmail(ctx, email)
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findByID(ctx, id)
}

func (s *stubUsersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return s.updateHash(ctx, id, hash)
}

type fakeSessions struct {
	opened  []string
	revoked []string
}

func (f *fakeSessions) Open(ctx context.Context, accessID string) error {
	f.opened = append(f.opened, accessID)
	return nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "ratehub-test",
		ExpirationMinutes: 15,
	}
}

func testAdminConfig() config.AdminConfig {
	return config.AdminConfig{
		Email:    "admin@abc.com",
		Password: "Admin#Pass123",
		Name:     "Administrator",
	}
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

func newTestService(t *testing.T, repo *stubUsersRepo, sessions *fakeSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		Sessions:       sessions,
		JWTConfig:      testJWTConfig(),
		AdminConfig:    testAdminConfig(),
		PasswordConfig: testPasswordConfig(),
		Now:            func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return hash
}

func TestSignupForcesNormalUserRole(t *testing.T) {
	var got users.CreateUserDTO
	repo := &stubUsersRepo{
		create: func(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
			got = dto
			user := dto.ToModel()
			user.ID = 7
			return user, nil
		},
	}
	sessions := &fakeSessions{}
	svc := newTestService(t, repo, sessions)

	result, err := svc.Signup(context.Background(), SignupRequest{
		Name:     "New User",
		Email:    "New@Example.COM",
		Password: "Secret#123",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if got.Role != enums.RoleNormalUser {
		t.Fatalf("expected forced normal_user role, got %s", got.Role)
	}
	if got.Email != "new@example.com" {
		t.Fatalf("expected normalized email, got %q", got.Email)
	}
	if !strings.HasPrefix(got.PasswordHash, "$argon2id$") {
		t.Fatalf("expected hashed password, got %q", got.PasswordHash)
	}
	if result.Token == "" {
		t.Fatal("expected a minted token")
	}
	if len(sessions.opened) != 1 {
		t.Fatalf("expected one opened session, got %d", len(sessions.opened))
	}
	if result.User.ID != 7 || result.User.Role != enums.RoleNormalUser {
		t.Fatalf("unexpected user %+v", result.User)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := &stubUsersRepo{
		create: func(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
			return nil, &duplicateEmailErr{}
		},
	}
	svc := newTestService(t, repo, &fakeSessions{})

	_, err := svc.Signup(context.Background(), SignupRequest{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "Secret#123",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

type duplicateEmailErr struct{}

func (e *duplicateEmailErr) Error() string {
	return `duplicate key value violates unique constraint "users_email_key"`
}

func TestLoginBootstrapAdminSkipsUserLookup(t *testing.T) {
	repo := &stubUsersRepo{
		findByEmail: func(ctx context.Context, email string) (*models.User, error) {
			t.Fatal("bootstrap admin login must not hit the users table")
			return nil, nil
		},
	}
	sessions := &fakeSessions{}
	svc := newTestService(t, repo, sessions)

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Admin@ABC.com",
		Password: "Admin#Pass123",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.User.ID != 0 || result.User.Role != enums.RoleAdmin {
		t.Fatalf("unexpected admin identity %+v", result.User)
	}
	if result.User.Name != "Administrator" || result.User.Email != "admin@abc.com" {
		t.Fatalf("unexpected admin profile %+v", result.User)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if !claims.IsAdminSentinel() {
		t.Fatalf("expected sentinel claims, got subject %q role %q", claims.Subject, claims.Role)
	}
	if len(sessions.opened) != 1 || sessions.opened[0] != claims.ID {
		t.Fatalf("expected session opened for jti %q, got %v", claims.ID, sessions.opened)
	}
}

func TestLoginAdminEmailWithWrongPasswordFallsThrough(t *testing.T) {
	repo := &stubUsersRepo{
		findByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(t, repo, &fakeSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "admin@abc.com",
		Password: "wrong-password",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestLoginVerifiesStoredHash(t *testing.T) {
	hash := hashFor(t, "Secret#123")
	repo := &stubUsersRepo{
		findByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: 7, Email: email, PasswordHash: hash, Role: enums.RoleNormalUser}, nil
		},
	}
	sessions := &fakeSessions{}
	svc := newTestService(t, repo, sessions)

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "Secret#123",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 7 {
		t.Fatalf("expected subject 7, got %q (%v)", claims.Subject, err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "not-the-password",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("wrong password must get the generic message, got %q", typed.Message())
	}
}

func TestLoginUnknownEmailUsesGenericMessage(t *testing.T) {
	repo := &stubUsersRepo{
		findByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(t, repo, &fakeSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unknown email must get the generic message, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &fakeSessions{}
	svc := newTestService(t, &stubUsersRepo{}, sessions)

	if err := svc.Logout(context.Background(), "jti-123"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-123" {
		t.Fatalf("expected jti revoked, got %v", sessions.revoked)
	}
}

func TestChangePasswordRejectsSentinel(t *testing.T) {
	svc := newTestService(t, &stubUsersRepo{}, &fakeSessions{})

	err := svc.ChangePassword(context.Background(), pkgauth.AdminPrincipal(testAdminConfig()), ChangePasswordRequest{
		CurrentPassword: "Admin#Pass123",
		NewPassword:     "Another#Pass123",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for sentinel, got %v", err)
	}
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	hash := hashFor(t, "Secret#123")
	updated := ""
	repo := &stubUsersRepo{
		findByID: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, PasswordHash: hash, Role: enums.RoleNormalUser}, nil
		},
		updateHash: func(ctx context.Context, id int64, newHash string) error {
			updated = newHash
			return nil
		},
	}
	svc := newTestService(t, repo, &fakeSessions{})
	principal := pkgauth.Principal{ID: 7, Role: enums.RoleNormalUser}

	err := svc.ChangePassword(context.Background(), principal, ChangePasswordRequest{
		CurrentPassword: "not-the-password",
		NewPassword:     "Another#Pass123",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for wrong current password, got %v", err)
	}
	if updated != "" {
		t.Fatal("hash must not change when the current password is wrong")
	}

	if err := svc.ChangePassword(context.Background(), principal, ChangePasswordRequest{
		CurrentPassword: "Secret#123",
		NewPassword:     "Another#Pass123",
	}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if !strings.HasPrefix(updated, "$argon2id$") || updated == hash {
		t.Fatalf("expected a fresh hash, got %q", updated)
	}
	ok, err := security.VerifyPassword("Another#Pass123", updated)
	if err != nil || !ok {
		t.Fatalf("new hash must verify the new password (ok=%v err=%v)", ok, err)
	}
}
