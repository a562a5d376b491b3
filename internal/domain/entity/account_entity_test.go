package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNameFromEmail(t *testing.T) {
	assert.Equal(t, "alice", NameFromEmail("alice@example.com"))
	assert.Equal(t, "a.b+tag", NameFromEmail("a.b+tag@example.com"))
	assert.Equal(t, "noat", NameFromEmail("noat"))
	assert.Equal(t, "", NameFromEmail(""))
}

func TestSlugConsistent(t *testing.T) {
	personal := &Account{PersonalAccount: true}
	assert.True(t, personal.SlugConsistent())
	personal.Slug = "oops"
	assert.False(t, personal.SlugConsistent())

	team := &Account{Slug: "acme"}
	assert.True(t, team.SlugConsistent())
	team.Slug = ""
	assert.False(t, team.SlugConsistent())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleMember.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestInvitationActive(t *testing.T) {
	now := time.Now().UTC()
	inv := &Invitation{CreatedAt: now.Add(-23 * time.Hour)}
	assert.True(t, inv.Active(now))

	inv.CreatedAt = now.Add(-25 * time.Hour)
	assert.False(t, inv.Active(now))
}
