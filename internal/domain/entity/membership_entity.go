package entity

import "time"

// Role is the authority a user holds on an account.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleMember
}

// Membership associates a user with an account under a single role.
// (UserID, AccountID) is unique; a user holds at most one role per account.
type Membership struct {
	UserID    string
	AccountID string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
