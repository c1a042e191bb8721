package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ratehub/ratehub-backend/pkg/enums"
)

// AdminSubject is the reserved JWT subject for the bootstrap admin identity.
// It never corresponds to a users row.
const AdminSubject = "admin"

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Subject string
	Role    enums.Role
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients. The subject is
// either a decimal user id or AdminSubject.
type AccessTokenClaims struct {
	Role enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// IsAdminSentinel reports whether the claims describe the synthetic admin.
func (c *AccessTokenClaims) IsAdminSentinel() bool {
	return c.Subject == AdminSubject && c.Role == enums.RoleAdmin
}

// UserID parses the subject as a persisted user id.
func (c *AccessTokenClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// SubjectForUser renders a persisted user id as a JWT subject.
func SubjectForUser(id int64) string {
	return strconv.FormatInt(id, 10)
}
