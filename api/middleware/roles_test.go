package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgauth "github.com/ratehub/ratehub-backend/pkg/auth"
	"github.com/ratehub/ratehub-backend/pkg/enums"
)

func runRequireRoles(t *testing.T, principal *pkgauth.Principal, allowed ...enums.Role) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	handler := RequireRoles(nil, allowed...)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	if principal != nil {
		req = req.WithContext(WithPrincipal(req.Context(), *principal))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, reached
}

func TestRequireRolesAllowsMember(t *testing.T) {
	rec, reached := runRequireRoles(t, &pkgauth.Principal{ID: 1, Role: enums.RoleAdmin}, enums.RoleAdmin)
	if rec.Code != http.StatusOK || !reached {
		t.Fatalf("expected pass-through, got %d reached=%v", rec.Code, reached)
	}
}

func TestRequireRolesRejectsWithActualRole(t *testing.T) {
	rec, reached := runRequireRoles(t, &pkgauth.Principal{ID: 1, Role: enums.RoleNormalUser}, enums.RoleAdmin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if reached {
		t.Fatal("handler must not run for a disallowed role")
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "normal_user") {
		t.Fatalf("403 must name the actual role, got %q", msg)
	}
}

func TestRequireRolesHasNoHierarchy(t *testing.T) {
	rec, reached := runRequireRoles(t, &pkgauth.Principal{ID: 0, Role: enums.RoleAdmin, Sentinel: true}, enums.RoleNormalUser)
	if rec.Code != http.StatusForbidden || reached {
		t.Fatalf("admin must not pass a normal_user-only gate, got %d reached=%v", rec.Code, reached)
	}
}

func TestRequireRolesMissingPrincipal(t *testing.T) {
	rec, reached := runRequireRoles(t, nil, enums.RoleAdmin)
	if rec.Code != http.StatusUnauthorized || reached {
		t.Fatalf("expected 401 without principal, got %d reached=%v", rec.Code, reached)
	}
}
