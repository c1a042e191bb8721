package auth

import (
	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
)

// Principal is the authenticated identity resolved for a request. It is either
// the synthetic bootstrap admin (Sentinel set, no backing users row) or a
// persisted user.
type Principal struct {
	ID       int64
	Name     string
	Email    string
	Role     enums.Role
	Sentinel bool
}

// AdminPrincipal synthesizes the fixed bootstrap admin identity from config.
func AdminPrincipal(cfg config.AdminConfig) Principal {
	return Principal{
		ID:       0,
		Name:     cfg.Name,
		Email:    cfg.Email,
		Role:     enums.RoleAdmin,
		Sentinel: true,
	}
}

// PrincipalFromUser builds a Principal for a persisted user row.
func PrincipalFromUser(user *models.User) Principal {
	if user == nil {
		return Principal{}
	}
	return Principal{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

// Subject renders the principal's JWT subject.
func (p Principal) Subject() string {
	if p.Sentinel {
		return AdminSubject
	}
	return SubjectForUser(p.ID)
}
