package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saasbase-io/accounts/internal/domain/entity"
)

func TestMatrix(t *testing.T) {
	// members may only read
	memberAllowed := map[Operation]bool{
		OpAccountRead:      true,
		OpMembersList:      true,
		OpAccountUpdate:    false,
		OpAccountDelete:    false,
		OpMemberInsert:     false,
		OpMemberUpdate:     false,
		OpMemberDelete:     false,
		OpInvitationCreate: false,
		OpInvitationDelete: false,
	}
	for op, want := range memberAllowed {
		assert.Equal(t, want, Allows(op, entity.RoleMember), "member on %s", op)
		assert.True(t, Allows(op, entity.RoleOwner), "owner on %s", op)
	}
}

func TestAllowsUnknownRole(t *testing.T) {
	assert.False(t, Allows(OpAccountRead, entity.Role("admin")))
	assert.False(t, Allows(OpAccountRead, entity.Role("")))
}

func TestAllowedRoles(t *testing.T) {
	assert.ElementsMatch(t, []entity.Role{entity.RoleOwner, entity.RoleMember}, AllowedRoles(OpAccountRead))
	assert.ElementsMatch(t, []entity.Role{entity.RoleOwner}, AllowedRoles(OpMemberInsert))
}

func TestActorAuthenticated(t *testing.T) {
	assert.False(t, Actor{}.Authenticated())
	assert.True(t, Actor{UserID: "u1"}.Authenticated())
}
