// Package policy holds the role matrix that gates every account operation.
// It is the application-side rendering of what the original deployment
// enforced with row-level security: each operation maps to the set of roles
// allowed to perform it, and the check runs before any read or mutation.
package policy

import (
	"errors"

	"github.com/saasbase-io/accounts/internal/domain/entity"
)

// ErrPermission is returned whenever a role check fails or a protected field
// is touched by a non-privileged actor. The guarded operation performs no
// mutation in that case.
var ErrPermission = errors.New("permission denied")

// Actor is the caller identity threaded explicitly through every service
// call. Privileged marks service-level callers that bypass the role matrix
// and may modify protected account fields.
type Actor struct {
	UserID     string
	Privileged bool
}

// Authenticated reports whether the actor carries a user identity.
func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

// Operation enumerates the guarded account and membership operations.
type Operation string

const (
	OpAccountRead      Operation = "account.read"
	OpAccountUpdate    Operation = "account.update"
	OpAccountDelete    Operation = "account.delete"
	OpMembersList      Operation = "members.list"
	OpMemberInsert     Operation = "member.insert"
	OpMemberUpdate     Operation = "member.update"
	OpMemberDelete     Operation = "member.delete"
	OpInvitationCreate Operation = "invitation.create"
	OpInvitationDelete Operation = "invitation.delete"
)

var matrix = map[Operation][]entity.Role{
	OpAccountRead:      {entity.RoleOwner, entity.RoleMember},
	OpAccountUpdate:    {entity.RoleOwner},
	OpAccountDelete:    {entity.RoleOwner},
	OpMembersList:      {entity.RoleOwner, entity.RoleMember},
	OpMemberInsert:     {entity.RoleOwner},
	OpMemberUpdate:     {entity.RoleOwner},
	OpMemberDelete:     {entity.RoleOwner},
	OpInvitationCreate: {entity.RoleOwner},
	OpInvitationDelete: {entity.RoleOwner},
}

// AllowedRoles returns the roles permitted to perform op.
func AllowedRoles(op Operation) []entity.Role {
	return matrix[op]
}

// Allows reports whether a holder of role may perform op.
func Allows(op Operation, role entity.Role) bool {
	for _, r := range matrix[op] {
		if r == role {
			return true
		}
	}
	return false
}
