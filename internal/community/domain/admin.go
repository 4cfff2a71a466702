package domain

import "time"

// Role is the administrative role conferred by an AdminGrant. Accounts
// without a grant have RoleNone.
type Role string

const (
	RoleNone       Role = ""
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsAdmin reports whether the role carries any administrative privilege.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// AdminGrant assigns a role to an account. One grant per account; there is
// no admin<->superadmin transition, only revoke and re-grant.
type AdminGrant struct {
	ID        string
	AccountID string
	Role      Role
	CreatedAt time.Time
}
