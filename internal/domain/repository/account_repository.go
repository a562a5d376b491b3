package repository

import (
	"context"
	"errors"

	"github.com/saasbase-io/accounts/internal/domain/entity"
)

// Sentinel errors surfaced by every repository implementation. Services and
// handlers match on these with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateSlug       = errors.New("slug already taken")
	ErrDuplicateAccount    = errors.New("account already exists")
	ErrDuplicateMembership = errors.New("membership already exists")
	ErrInvalidSlug         = errors.New("invalid slug")
	ErrInvalidRole         = errors.New("invalid role")
)

// AccountRepository owns durable storage for accounts. Create and
// CreateWithOwner must enforce account-ID and slug uniqueness atomically so
// that of two racing inserts exactly one succeeds.
type AccountRepository interface {
	// CreateWithOwner inserts the account and, when owner is non-nil, its
	// first Owner membership in a single transaction. Either both rows
	// persist or neither does.
	CreateWithOwner(ctx context.Context, a *entity.Account, owner *entity.Membership) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Account, error)
	// ListForUser returns the accounts the user holds any membership on,
	// ordered by creation time.
	ListForUser(ctx context.Context, userID string) ([]*entity.Account, error)
	Update(ctx context.Context, a *entity.Account) error
	// Delete removes the account and cascades to its memberships and
	// invitations.
	Delete(ctx context.Context, id string) error
}

// MembershipRepository owns the (user, account, role) association rows.
type MembershipRepository interface {
	Insert(ctx context.Context, m *entity.Membership) error
	Get(ctx context.Context, accountID, userID string) (*entity.Membership, error)
	// ListByAccount returns memberships ordered by creation time, then user ID.
	ListByAccount(ctx context.Context, accountID string) ([]*entity.Membership, error)
	UpdateRole(ctx context.Context, accountID, userID string, role entity.Role) error
	Delete(ctx context.Context, accountID, userID string) error
}

// InvitationRepository owns invitation tokens.
type InvitationRepository interface {
	Create(ctx context.Context, inv *entity.Invitation) error
	GetByToken(ctx context.Context, token string) (*entity.Invitation, error)
	Delete(ctx context.Context, accountID, invitationID string) error
	// Accept inserts the membership and, for one-time invitations, deletes
	// the invitation in the same transaction.
	Accept(ctx context.Context, inv *entity.Invitation, m *entity.Membership) error
}
