// Package memory provides mutex-guarded in-memory implementations of the
// domain repositories. They enforce the same uniqueness and cascade semantics
// as the Postgres implementations and back the service tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/saasbase-io/accounts/internal/domain/entity"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
)

// Store holds all three repositories behind one lock so multi-row operations
// stay atomic, matching the transactional Postgres paths.
type Store struct {
	mu          sync.Mutex
	accounts    map[string]*entity.Account
	memberships map[string]map[string]*entity.Membership // accountID -> userID -> membership
	invitations map[string]*entity.Invitation            // token -> invitation
}

func NewStore() *Store {
	return &Store{
		accounts:    map[string]*entity.Account{},
		memberships: map[string]map[string]*entity.Membership{},
		invitations: map[string]*entity.Invitation{},
	}
}

func (s *Store) Accounts() repo.AccountRepository       { return (*accountRepo)(s) }
func (s *Store) Members() repo.MembershipRepository     { return (*membershipRepo)(s) }
func (s *Store) Invitations() repo.InvitationRepository { return (*invitationRepo)(s) }

func cloneAccount(a *entity.Account) *entity.Account {
	c := *a
	if a.PublicMetadata != nil {
		c.PublicMetadata = make(map[string]any, len(a.PublicMetadata))
		for k, v := range a.PublicMetadata {
			c.PublicMetadata[k] = v
		}
	}
	if a.PrivateMetadata != nil {
		c.PrivateMetadata = make(map[string]any, len(a.PrivateMetadata))
		for k, v := range a.PrivateMetadata {
			c.PrivateMetadata[k] = v
		}
	}
	return &c
}

func (s *Store) slugTaken(slug, exceptID string) bool {
	for _, a := range s.accounts {
		if a.Slug != "" && a.Slug == slug && a.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *Store) insertMembershipLocked(m *entity.Membership) error {
	byUser, ok := s.memberships[m.AccountID]
	if !ok {
		byUser = map[string]*entity.Membership{}
		s.memberships[m.AccountID] = byUser
	}
	if _, exists := byUser[m.UserID]; exists {
		return repo.ErrDuplicateMembership
	}
	c := *m
	byUser[m.UserID] = &c
	return nil
}

type accountRepo Store

func (r *accountRepo) CreateWithOwner(_ context.Context, a *entity.Account, owner *entity.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[a.ID]; exists {
		return repo.ErrDuplicateAccount
	}
	if a.Slug != "" && (*Store)(r).slugTaken(a.Slug, a.ID) {
		return repo.ErrDuplicateSlug
	}
	r.accounts[a.ID] = cloneAccount(a)
	if owner != nil {
		if err := (*Store)(r).insertMembershipLocked(owner); err != nil {
			delete(r.accounts, a.ID)
			return err
		}
	}
	return nil
}

func (r *accountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *accountRepo) GetBySlug(_ context.Context, slug string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Slug != "" && a.Slug == slug {
			return cloneAccount(a), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *accountRepo) ListForUser(_ context.Context, userID string) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Account
	for accountID, byUser := range r.memberships {
		if _, ok := byUser[userID]; !ok {
			continue
		}
		if a, ok := r.accounts[accountID]; ok {
			out = append(out, cloneAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *accountRepo) Update(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.ID]; !ok {
		return repo.ErrNotFound
	}
	if a.Slug != "" && (*Store)(r).slugTaken(a.Slug, a.ID) {
		return repo.ErrDuplicateSlug
	}
	r.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (r *accountRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.accounts, id)
	delete(r.memberships, id)
	for token, inv := range r.invitations {
		if inv.AccountID == id {
			delete(r.invitations, token)
		}
	}
	return nil
}

type membershipRepo Store

func (r *membershipRepo) Insert(_ context.Context, m *entity.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (*Store)(r).insertMembershipLocked(m)
}

func (r *membershipRepo) Get(_ context.Context, accountID, userID string) (*entity.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[accountID][userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (r *membershipRepo) ListByAccount(_ context.Context, accountID string) ([]*entity.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Membership
	for _, m := range r.memberships[accountID] {
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *membershipRepo) UpdateRole(_ context.Context, accountID, userID string, role entity.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[accountID][userID]
	if !ok {
		return repo.ErrNotFound
	}
	m.Role = role
	return nil
}

func (r *membershipRepo) Delete(_ context.Context, accountID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.memberships[accountID][userID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.memberships[accountID], userID)
	return nil
}

type invitationRepo Store

func (r *invitationRepo) Create(_ context.Context, inv *entity.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.invitations[inv.Token]; exists {
		return errors.New("invitation token collision")
	}
	c := *inv
	r.invitations[inv.Token] = &c
	return nil
}

func (r *invitationRepo) GetByToken(_ context.Context, token string) (*entity.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[token]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *inv
	return &c, nil
}

func (r *invitationRepo) Delete(_ context.Context, accountID, invitationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, inv := range r.invitations {
		if inv.AccountID == accountID && inv.ID == invitationID {
			delete(r.invitations, token)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *invitationRepo) Accept(_ context.Context, inv *entity.Invitation, m *entity.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.invitations[inv.Token]
	if !ok {
		return repo.ErrNotFound
	}
	if err := (*Store)(r).insertMembershipLocked(m); err != nil {
		return err
	}
	if stored.InvitationType == entity.InvitationOneTime {
		delete(r.invitations, inv.Token)
	}
	return nil
}
