package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasbase-io/accounts/internal/domain/entity"
	"github.com/saasbase-io/accounts/internal/domain/policy"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
)

var (
	alice = policy.Actor{UserID: "u-alice"}
	bob   = policy.Actor{UserID: "u-bob"}
	admin = policy.Actor{UserID: "u-admin", Privileged: true}
)

func TestCreateAccount(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	a, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "Team A", Slug: "Team A!!"})
	require.NoError(t, err)

	assert.Equal(t, "team-a-", a.Slug)
	assert.False(t, a.PersonalAccount)
	assert.Equal(t, alice.UserID, a.PrimaryOwnerUserID)
	assert.Equal(t, alice.UserID, a.CreatedBy)
	assert.Equal(t, alice.UserID, a.UpdatedBy)
	assert.False(t, a.CreatedAt.IsZero())
	assert.True(t, a.SlugConsistent())

	// creator got the Owner membership in the same call
	members, err := svc.accounts.ListMembers(ctx, alice, a.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, alice.UserID, members[0].UserID)
	assert.Equal(t, entity.RoleOwner, members[0].Role)
}

func TestCreateAccountRequiresAuth(t *testing.T) {
	svc := newServices()

	_, err := svc.accounts.Create(context.Background(), policy.Actor{}, CreateAccountInput{Name: "x", Slug: "x"})
	assert.ErrorIs(t, err, policy.ErrPermission)
}

func TestCreateAccountRejectsEmptySlug(t *testing.T) {
	svc := newServices()

	_, err := svc.accounts.Create(context.Background(), alice, CreateAccountInput{Name: "x", Slug: ""})
	assert.ErrorIs(t, err, repo.ErrInvalidSlug)
}

func TestCreateAccountDuplicateSlug(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	_, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "a", Slug: "team"})
	require.NoError(t, err)

	// different raw input, same normalized slug
	_, err = svc.accounts.Create(ctx, bob, CreateAccountInput{Name: "b", Slug: "TEAM"})
	assert.ErrorIs(t, err, repo.ErrDuplicateSlug)
}

func TestConcurrentCreateSameSlug(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "racy", Slug: "Racy Team"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, repo.ErrDuplicateSlug)
		}
	}
	assert.Equal(t, 1, ok, "exactly one create should win")
}

func TestGetAccountPolicy(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	a, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "Team", Slug: "team"})
	require.NoError(t, err)

	// owner reads fine
	got, err := svc.accounts.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	// outsider is rejected without leaking existence
	_, err = svc.accounts.Get(ctx, bob, a.ID)
	assert.ErrorIs(t, err, policy.ErrPermission)

	// privileged bypasses the matrix
	_, err = svc.accounts.Get(ctx, admin, a.ID)
	require.NoError(t, err)

	// member can read after joining
	require.NoError(t, svc.store.Members().Insert(ctx, &entity.Membership{UserID: bob.UserID, AccountID: a.ID, Role: entity.RoleMember}))
	_, err = svc.accounts.Get(ctx, bob, a.ID)
	require.NoError(t, err)
}

func TestUpdateAccount(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	a, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "Team", Slug: "team"})
	require.NoError(t, err)

	name := "Renamed"
	slug := "New Slug"
	updated, err := svc.accounts.Update(ctx, alice, a.ID, UpdateAccountInput{Name: &name, Slug: &slug})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "new-slug", updated.Slug)
	assert.True(t, updated.UpdatedAt.After(a.UpdatedAt) || updated.UpdatedAt.Equal(a.UpdatedAt))
	assert.Equal(t, alice.UserID, updated.UpdatedBy)
}

func TestUpdateAccountByMemberDenied(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	a, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "Team", Slug: "team"})
	require.NoError(t, err)
	require.NoError(t, svc.store.Members().Insert(ctx, &entity.Membership{UserID: bob.UserID, AccountID: a.ID, Role: entity.RoleMember}))

	name := "hijacked"
	_, err = svc.accounts.Update(ctx, bob, a.ID, UpdateAccountInput{Name: &name})
	assert.ErrorIs(t, err, policy.ErrPermission)

	got, err := svc.accounts.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team", got.Name)
}

func TestUpdateProtectedFields(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	a, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "Team", Slug: "team"})
	require.NoError(t, err)

	// owner may not touch protected fields
	personal := true
	_, err = svc.accounts.Update(ctx, alice, a.ID, UpdateAccountInput{PersonalAccount: &personal})
	assert.ErrorIs(t, err, policy.ErrPermission)

	newOwner := bob.UserID
	_, err = svc.accounts.Update(ctx, alice, a.ID, UpdateAccountInput{PrimaryOwnerUserID: &newOwner})
	assert.ErrorIs(t, err, policy.ErrPermission)

	// row unchanged
	got, err := svc.accounts.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.False(t, got.PersonalAccount)
	assert.Equal(t, alice.UserID, got.PrimaryOwnerUserID)

	// privileged actor may reassign ownership
	_, err = svc.accounts.Update(ctx, admin, a.ID, UpdateAccountInput{PrimaryOwnerUserID: &newOwner})
	require.NoError(t, err)
	got, err = svc.accounts.Get(ctx, admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.UserID, got.PrimaryOwnerUserID)
}

func TestPersonalAccountSlugLocked(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	personal, err := svc.lifecycle.OnUserRegistered(ctx, alice.UserID, "alice@example.com")
	require.NoError(t, err)

	slug := "sneaky"
	_, err = svc.accounts.Update(ctx, alice, personal.ID, UpdateAccountInput{Slug: &slug})
	assert.ErrorIs(t, err, policy.ErrPermission)

	got, err := svc.accounts.Get(ctx, alice, personal.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Slug)
	assert.True(t, got.SlugConsistent())
}

func TestDeleteAccountCascades(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	a, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "Team", Slug: "team"})
	require.NoError(t, err)
	require.NoError(t, svc.store.Members().Insert(ctx, &entity.Membership{UserID: bob.UserID, AccountID: a.ID, Role: entity.RoleMember}))

	// member cannot delete
	err = svc.accounts.Delete(ctx, bob, a.ID)
	assert.ErrorIs(t, err, policy.ErrPermission)

	require.NoError(t, svc.accounts.Delete(ctx, alice, a.ID))

	_, err = svc.accounts.Get(ctx, admin, a.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	// memberships are gone with the account
	assert.False(t, svc.roles.HasRole(ctx, a.ID, alice.UserID, entity.RoleOwner, entity.RoleMember))
	assert.False(t, svc.roles.HasRole(ctx, a.ID, bob.UserID, entity.RoleOwner, entity.RoleMember))
}

func TestListForUser(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	_, err := svc.lifecycle.OnUserRegistered(ctx, alice.UserID, "alice@example.com")
	require.NoError(t, err)
	team, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "Team", Slug: "team"})
	require.NoError(t, err)

	accounts, err := svc.accounts.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	ids := []string{accounts[0].ID, accounts[1].ID}
	assert.Contains(t, ids, alice.UserID)
	assert.Contains(t, ids, team.ID)

	// bob belongs to nothing
	accounts, err = svc.accounts.ListForUser(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestMemberRoleManagement(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	a, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "Team", Slug: "team"})
	require.NoError(t, err)
	require.NoError(t, svc.store.Members().Insert(ctx, &entity.Membership{UserID: bob.UserID, AccountID: a.ID, Role: entity.RoleMember}))

	// member cannot promote themselves
	err = svc.accounts.UpdateMemberRole(ctx, bob, a.ID, bob.UserID, entity.RoleOwner)
	assert.ErrorIs(t, err, policy.ErrPermission)

	// owner promotes bob
	require.NoError(t, svc.accounts.UpdateMemberRole(ctx, alice, a.ID, bob.UserID, entity.RoleOwner))
	assert.True(t, svc.roles.HasRole(ctx, a.ID, bob.UserID, entity.RoleOwner))

	// invalid role rejected
	err = svc.accounts.UpdateMemberRole(ctx, alice, a.ID, bob.UserID, entity.Role("admin"))
	assert.ErrorIs(t, err, repo.ErrInvalidRole)

	// primary owner cannot be demoted or removed by a non-privileged owner
	err = svc.accounts.UpdateMemberRole(ctx, bob, a.ID, alice.UserID, entity.RoleMember)
	assert.ErrorIs(t, err, policy.ErrPermission)
	err = svc.accounts.RemoveMember(ctx, bob, a.ID, alice.UserID)
	assert.ErrorIs(t, err, policy.ErrPermission)

	// removing a regular member works and revokes access
	require.NoError(t, svc.accounts.RemoveMember(ctx, alice, a.ID, bob.UserID))
	assert.False(t, svc.roles.HasRole(ctx, a.ID, bob.UserID, entity.RoleOwner, entity.RoleMember))
}

func TestListMembersOrdered(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	a, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "Team", Slug: "team"})
	require.NoError(t, err)

	later := a.CreatedAt.Add(1)
	require.NoError(t, svc.store.Members().Insert(ctx, &entity.Membership{UserID: "u-zed", AccountID: a.ID, Role: entity.RoleMember, CreatedAt: later}))
	require.NoError(t, svc.store.Members().Insert(ctx, &entity.Membership{UserID: bob.UserID, AccountID: a.ID, Role: entity.RoleMember, CreatedAt: later}))

	members, err := svc.accounts.ListMembers(ctx, alice, a.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, alice.UserID, members[0].UserID)
	assert.Equal(t, bob.UserID, members[1].UserID)
	assert.Equal(t, "u-zed", members[2].UserID)
}

func TestHasRoleReflectsMembership(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	a, err := svc.accounts.Create(ctx, alice, CreateAccountInput{Name: "Team", Slug: "team"})
	require.NoError(t, err)

	// unknown account or user is a plain false, not an error
	assert.False(t, svc.roles.HasRole(ctx, "missing", alice.UserID, entity.RoleOwner, entity.RoleMember))
	assert.False(t, svc.roles.HasRole(ctx, a.ID, bob.UserID, entity.RoleOwner, entity.RoleMember))

	m := &entity.Membership{UserID: bob.UserID, AccountID: a.ID, Role: entity.RoleMember}
	require.NoError(t, svc.store.Members().Insert(ctx, m))
	assert.True(t, svc.roles.HasRole(ctx, a.ID, bob.UserID, entity.RoleOwner, entity.RoleMember))
	assert.False(t, svc.roles.HasRole(ctx, a.ID, bob.UserID, entity.RoleOwner))

	require.NoError(t, svc.store.Members().Delete(ctx, a.ID, bob.UserID))
	assert.False(t, svc.roles.HasRole(ctx, a.ID, bob.UserID, entity.RoleOwner, entity.RoleMember))
}
