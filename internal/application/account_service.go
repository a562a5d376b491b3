package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/saasbase-io/accounts/internal/domain/entity"
	"github.com/saasbase-io/accounts/internal/domain/policy"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
	"github.com/saasbase-io/accounts/pkg/helpers"
)

var ErrStorageUnavailable = errors.New("object storage not configured")

// AccountService fronts the account store. Every operation checks the policy
// matrix before touching storage; a failed check returns policy.ErrPermission
// and performs no mutation.
type AccountService struct {
	Accounts  repo.AccountRepository
	Members   repo.MembershipRepository
	Roles     *RoleService
	Lifecycle *LifecycleService
	Logger    *logrus.Logger
	GCS       *storage.Client
	GCSBucket string
	ES        *elasticsearch.Client
	ESIndex   string
}

func NewAccountService(accounts repo.AccountRepository, members repo.MembershipRepository, roles *RoleService, lifecycle *LifecycleService, logger *logrus.Logger, gcs *storage.Client, gcsBucket string, es *elasticsearch.Client, esIndex string) *AccountService {
	return &AccountService{
		Accounts:  accounts,
		Members:   members,
		Roles:     roles,
		Lifecycle: lifecycle,
		Logger:    logger,
		GCS:       gcs,
		GCSBucket: gcsBucket,
		ES:        es,
		ESIndex:   esIndex,
	}
}

// authorize resolves the actor's role on the account and checks it against
// the matrix. Privileged actors bypass the matrix entirely. A missing
// membership (or missing account) reads as no role and fails the check.
func (s *AccountService) authorize(ctx context.Context, actor policy.Actor, op policy.Operation, accountID string) error {
	if actor.Privileged {
		return nil
	}
	if !actor.Authenticated() {
		return policy.ErrPermission
	}
	role, ok := s.Roles.Lookup(ctx, accountID, actor.UserID)
	if !ok || !policy.Allows(op, role) {
		return policy.ErrPermission
	}
	return nil
}

type CreateAccountInput struct {
	Name            string
	Slug            string
	PublicMetadata  map[string]any
	PrivateMetadata map[string]any
	// PrimaryOwnerUserID is honored for privileged actors only; everyone
	// else owns the accounts they create.
	PrimaryOwnerUserID string
}

// Create inserts a team account. Any authenticated user may create one; the
// slug is normalized before the uniqueness check and the creator's Owner
// membership is written in the same transaction as the account row.
func (s *AccountService) Create(ctx context.Context, actor policy.Actor, in CreateAccountInput) (*entity.Account, error) {
	if !actor.Authenticated() && !actor.Privileged {
		return nil, policy.ErrPermission
	}
	slug := helpers.NormalizeSlug(in.Slug)
	if slug == "" {
		return nil, repo.ErrInvalidSlug
	}
	owner := actor.UserID
	if actor.Privileged && in.PrimaryOwnerUserID != "" {
		owner = in.PrimaryOwnerUserID
	}
	now := time.Now().UTC()
	a := &entity.Account{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Slug:               slug,
		PersonalAccount:    false,
		PrimaryOwnerUserID: owner,
		PublicMetadata:     in.PublicMetadata,
		PrivateMetadata:    in.PrivateMetadata,
		CreatedAt:          now,
		UpdatedAt:          now,
		CreatedBy:          actor.UserID,
		UpdatedBy:          actor.UserID,
	}
	if err := s.Accounts.CreateWithOwner(ctx, a, s.Lifecycle.OnAccountCreated(a)); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"account_id": a.ID, "slug": a.Slug, "created_by": actor.UserID}).Info("account created")
	}
	indexAccount(ctx, s.ES, s.ESIndex, s.Logger, a)
	return a, nil
}

// Get returns the account if the actor is an Owner or Member on it.
func (s *AccountService) Get(ctx context.Context, actor policy.Actor, id string) (*entity.Account, error) {
	if err := s.authorize(ctx, actor, policy.OpAccountRead, id); err != nil {
		return nil, err
	}
	return s.Accounts.GetByID(ctx, id)
}

// ListForUser returns every account the actor holds a membership on.
func (s *AccountService) ListForUser(ctx context.Context, actor policy.Actor) ([]*entity.Account, error) {
	if !actor.Authenticated() {
		return nil, policy.ErrPermission
	}
	return s.Accounts.ListForUser(ctx, actor.UserID)
}

type UpdateAccountInput struct {
	Name            *string
	Slug            *string
	PublicMetadata  map[string]any
	PrivateMetadata map[string]any
	// Protected fields; only privileged actors may set these.
	PersonalAccount    *bool
	PrimaryOwnerUserID *string
}

func (in UpdateAccountInput) touchesProtected() bool {
	return in.PersonalAccount != nil || in.PrimaryOwnerUserID != nil
}

// Update applies the patch as the acting user. Owners may change name, slug
// and metadata; the personal flag and primary owner are protected and only a
// privileged actor can touch them. Personal accounts never gain a slug.
func (s *AccountService) Update(ctx context.Context, actor policy.Actor, id string, in UpdateAccountInput) (*entity.Account, error) {
	if err := s.authorize(ctx, actor, policy.OpAccountUpdate, id); err != nil {
		return nil, err
	}
	a, err := s.Accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.touchesProtected() && !actor.Privileged {
		return nil, policy.ErrPermission
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Slug != nil {
		if a.PersonalAccount {
			return nil, policy.ErrPermission
		}
		slug := helpers.NormalizeSlug(*in.Slug)
		if slug == "" {
			return nil, repo.ErrInvalidSlug
		}
		a.Slug = slug
	}
	if in.PublicMetadata != nil {
		a.PublicMetadata = in.PublicMetadata
	}
	if in.PrivateMetadata != nil {
		a.PrivateMetadata = in.PrivateMetadata
	}
	if in.PersonalAccount != nil {
		a.PersonalAccount = *in.PersonalAccount
	}
	if in.PrimaryOwnerUserID != nil {
		a.PrimaryOwnerUserID = *in.PrimaryOwnerUserID
	}
	a.UpdatedAt = time.Now().UTC()
	a.UpdatedBy = actor.UserID
	if err := s.Accounts.Update(ctx, a); err != nil {
		return nil, err
	}
	indexAccount(ctx, s.ES, s.ESIndex, s.Logger, a)
	return a, nil
}

// Delete removes the account; memberships and invitations cascade.
func (s *AccountService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if err := s.authorize(ctx, actor, policy.OpAccountDelete, id); err != nil {
		return err
	}
	members, err := s.Members.ListByAccount(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Accounts.Delete(ctx, id); err != nil {
		return err
	}
	for _, m := range members {
		s.Roles.Invalidate(ctx, id, m.UserID)
	}
	deleteAccountIndex(ctx, s.ES, s.ESIndex, s.Logger, id)
	return nil
}

// ListMembers returns the account's memberships, ordered by join time.
func (s *AccountService) ListMembers(ctx context.Context, actor policy.Actor, accountID string) ([]*entity.Membership, error) {
	if err := s.authorize(ctx, actor, policy.OpMembersList, accountID); err != nil {
		return nil, err
	}
	return s.Members.ListByAccount(ctx, accountID)
}

// UpdateMemberRole changes a member's role. Owner only; the primary owner's
// membership cannot be demoted.
func (s *AccountService) UpdateMemberRole(ctx context.Context, actor policy.Actor, accountID, userID string, role entity.Role) error {
	if err := s.authorize(ctx, actor, policy.OpMemberUpdate, accountID); err != nil {
		return err
	}
	if !role.Valid() {
		return repo.ErrInvalidRole
	}
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if userID == a.PrimaryOwnerUserID && role != entity.RoleOwner && !actor.Privileged {
		return policy.ErrPermission
	}
	if err := s.Members.UpdateRole(ctx, accountID, userID, role); err != nil {
		return err
	}
	s.Roles.Invalidate(ctx, accountID, userID)
	return nil
}

// RemoveMember deletes a membership. Owner only; the primary owner's
// membership cannot be removed by a non-privileged actor.
func (s *AccountService) RemoveMember(ctx context.Context, actor policy.Actor, accountID, userID string) error {
	if err := s.authorize(ctx, actor, policy.OpMemberDelete, accountID); err != nil {
		return err
	}
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if userID == a.PrimaryOwnerUserID && !actor.Privileged {
		return policy.ErrPermission
	}
	if err := s.Members.Delete(ctx, accountID, userID); err != nil {
		return err
	}
	s.Roles.Invalidate(ctx, accountID, userID)
	return nil
}

// UploadLogo streams the file into GCS and records the public URL in the
// account's public metadata.
func (s *AccountService) UploadLogo(ctx context.Context, actor policy.Actor, accountID string, r io.Reader, filename, contentType string) (string, error) {
	if err := s.authorize(ctx, actor, policy.OpAccountUpdate, accountID); err != nil {
		return "", err
	}
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", ErrStorageUnavailable
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("logos", accountID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if a.PublicMetadata == nil {
		a.PublicMetadata = map[string]any{}
	}
	a.PublicMetadata["logo_url"] = url
	a.UpdatedAt = time.Now().UTC()
	a.UpdatedBy = actor.UserID
	if err := s.Accounts.Update(ctx, a); err != nil {
		return "", err
	}
	indexAccount(ctx, s.ES, s.ESIndex, s.Logger, a)
	return url, nil
}

// Search queries the Elasticsearch accounts index by name and slug.
func (s *AccountService) Search(ctx context.Context, actor policy.Actor, q string, size int) ([]map[string]any, error) {
	if !actor.Authenticated() && !actor.Privileged {
		return nil, policy.ErrPermission
	}
	return searchAccounts(ctx, s.ES, s.ESIndex, q, size)
}
