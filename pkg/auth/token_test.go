package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "ratehub", ExpirationMinutes: 60}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		Subject: SubjectForUser(42),
		Role:    enums.RoleNormalUser,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("parse subject: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected subject 42 got %d", id)
	}
	if claims.Role != enums.RoleNormalUser {
		t.Fatalf("expected normal_user got %s", claims.Role)
	}
	if claims.IsAdminSentinel() {
		t.Fatal("regular user must not be admin sentinel")
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		Subject: SubjectForUser(7),
		Role:    enums.RoleStoreOwner,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)

	if _, err := ParseAccessToken(cfg, strings.Join(parts, ".")); err == nil {
		t.Fatal("expected parse error for tampered token")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		Subject: SubjectForUser(7),
		Role:    enums.RoleNormalUser,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	other := config.JWTConfig{Secret: "different", Issuer: "ratehub", ExpirationMinutes: 60}
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected parse error for wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		Subject: SubjectForUser(7),
		Role:    enums.RoleNormalUser,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected parse error for expired token")
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		Subject: SubjectForUser(7),
		Role:    enums.Role("superuser"),
	}); err == nil {
		t.Fatal("expected mint error for invalid role")
	}
}

func TestAdminSentinelClaims(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		Subject: AdminSubject,
		Role:    enums.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !claims.IsAdminSentinel() {
		t.Fatal("expected admin sentinel claims")
	}
	if _, err := claims.UserID(); err == nil {
		t.Fatal("sentinel subject must not parse as user id")
	}
}
