package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasbase-io/accounts/internal/domain/entity"
	"github.com/saasbase-io/accounts/internal/domain/policy"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
)

func TestOnUserRegistered(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	a, err := svc.lifecycle.OnUserRegistered(ctx, "u-1", "alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, "u-1", a.ID)
	assert.Equal(t, "alice", a.Name)
	assert.True(t, a.PersonalAccount)
	assert.Empty(t, a.Slug)
	assert.True(t, a.SlugConsistent())
	assert.Equal(t, "u-1", a.PrimaryOwnerUserID)
	assert.Equal(t, "u-1", a.CreatedBy)

	m, err := svc.store.Members().Get(ctx, a.ID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOwner, m.Role)
}

func TestOnUserRegisteredReplay(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	_, err := svc.lifecycle.OnUserRegistered(ctx, "u-1", "alice@example.com")
	require.NoError(t, err)

	_, err = svc.lifecycle.OnUserRegistered(ctx, "u-1", "alice@example.com")
	assert.ErrorIs(t, err, repo.ErrDuplicateAccount)

	members, err := svc.store.Members().ListByAccount(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestOnUserRegisteredWithoutEmail(t *testing.T) {
	svc := newServices()

	a, err := svc.lifecycle.OnUserRegistered(context.Background(), "u-2", "")
	require.NoError(t, err)
	assert.Empty(t, a.Name)
	assert.True(t, a.PersonalAccount)
}

func TestOnAccountCreatedSkipsForeignOwner(t *testing.T) {
	svc := newServices()

	a := &entity.Account{ID: "a-1", CreatedBy: "u-admin", PrimaryOwnerUserID: "u-1"}
	assert.Nil(t, svc.lifecycle.OnAccountCreated(a))

	a.CreatedBy = "u-1"
	m := svc.lifecycle.OnAccountCreated(a)
	require.NotNil(t, m)
	assert.Equal(t, "u-1", m.UserID)
	assert.Equal(t, "a-1", m.AccountID)
	assert.Equal(t, entity.RoleOwner, m.Role)
}

// End-to-end walk through the common lifecycle: two users register, one
// builds a team, invites the other, and access follows the membership.
func TestAccountLifecycle(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	u1 := policy.Actor{UserID: "u-1"}
	u2 := policy.Actor{UserID: "u-2"}

	_, err := svc.lifecycle.OnUserRegistered(ctx, u1.UserID, "alice@example.com")
	require.NoError(t, err)
	_, err = svc.lifecycle.OnUserRegistered(ctx, u2.UserID, "bob@example.com")
	require.NoError(t, err)

	team, err := svc.accounts.Create(ctx, u1, CreateAccountInput{Name: "Acme", Slug: "Acme Inc"})
	require.NoError(t, err)
	assert.Equal(t, "acme-inc", team.Slug)

	// u2 cannot see the team yet
	_, err = svc.accounts.Get(ctx, u2, team.ID)
	assert.ErrorIs(t, err, policy.ErrPermission)

	inv, err := svc.invitations.Create(ctx, u1, team.ID, CreateInvitationInput{Role: entity.RoleMember, InvitationType: entity.InvitationOneTime})
	require.NoError(t, err)

	m, err := svc.invitations.Accept(ctx, u2, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleMember, m.Role)

	// member reads but does not mutate
	_, err = svc.accounts.Get(ctx, u2, team.ID)
	require.NoError(t, err)
	name := "Evil Corp"
	_, err = svc.accounts.Update(ctx, u2, team.ID, UpdateAccountInput{Name: &name})
	assert.ErrorIs(t, err, policy.ErrPermission)

	// each user sees their personal account plus the shared team
	mine, err := svc.accounts.ListForUser(ctx, u2)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
