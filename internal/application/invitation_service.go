package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/saasbase-io/accounts/internal/domain/entity"
	"github.com/saasbase-io/accounts/internal/domain/policy"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
	"github.com/saasbase-io/accounts/pkg/helpers"
	"github.com/saasbase-io/accounts/pkg/mailer"
)

const inviteTokenLength = 30

// InvitationService issues and redeems membership invitations. Creating one
// optionally publishes an email job; accepting one inserts the membership
// with the invited role.
type InvitationService struct {
	Invitations repo.InvitationRepository
	Accounts    repo.AccountRepository
	Roles       *RoleService
	Rabbit      *helpers.RabbitPublisher
	Logger      *logrus.Logger
	AcceptURL   string
}

func NewInvitationService(invitations repo.InvitationRepository, accounts repo.AccountRepository, roles *RoleService, rabbit *helpers.RabbitPublisher, logger *logrus.Logger, acceptURL string) *InvitationService {
	return &InvitationService{
		Invitations: invitations,
		Accounts:    accounts,
		Roles:       roles,
		Rabbit:      rabbit,
		Logger:      logger,
		AcceptURL:   acceptURL,
	}
}

func (s *InvitationService) authorize(ctx context.Context, actor policy.Actor, op policy.Operation, accountID string) error {
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

type CreateInvitationInput struct {
	Role           entity.Role
	InvitationType entity.InvitationType
	Email          string
}

// Create issues an invitation for the account. Owner only.
func (s *InvitationService) Create(ctx context.Context, actor policy.Actor, accountID string, in CreateInvitationInput) (*entity.Invitation, error) {
	if err := s.authorize(ctx, actor, policy.OpInvitationCreate, accountID); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, repo.ErrInvalidRole
	}
	if !in.InvitationType.Valid() {
		in.InvitationType = entity.InvitationOneTime
	}
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	token, err := helpers.GenerateToken(inviteTokenLength)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	inv := &entity.Invitation{
		ID:              uuid.NewString(),
		AccountID:       a.ID,
		AccountName:     a.Name,
		Role:            in.Role,
		Token:           token,
		InvitationType:  in.InvitationType,
		InvitedByUserID: actor.UserID,
		Email:           in.Email,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Invitations.Create(ctx, inv); err != nil {
		return nil, err
	}
	s.publishInviteEmail(ctx, inv)
	return inv, nil
}

func (s *InvitationService) publishInviteEmail(ctx context.Context, inv *entity.Invitation) {
	if s.Rabbit == nil || inv.Email == "" {
		return
	}
	link := s.AcceptURL
	if link != "" {
		link = link + "?token=" + inv.Token
	}
	job := mailer.EmailJob{
		To:      inv.Email,
		Subject: fmt.Sprintf("You have been invited to %s", inv.AccountName),
		Text:    fmt.Sprintf("You have been invited to join %s as %s. Accept with token %s. %s", inv.AccountName, inv.Role, inv.Token, link),
	}
	if err := s.Rabbit.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("invitation_id", inv.ID).Warn("invite email publish failed")
	}
}

// LookupResult is what an invitee sees before accepting.
type LookupResult struct {
	AccountName string
	Active      bool
}

// Lookup resolves a token to the account it grants access to. A token past
// its window still resolves, with Active false; an unknown token is
// repo.ErrNotFound.
func (s *InvitationService) Lookup(ctx context.Context, actor policy.Actor, token string) (*LookupResult, error) {
	if !actor.Authenticated() && !actor.Privileged {
		return nil, policy.ErrPermission
	}
	inv, err := s.Invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &LookupResult{AccountName: inv.AccountName, Active: inv.Active(time.Now().UTC())}, nil
}

// Accept redeems the token for the acting user, inserting a membership with
// the invited role. One-time invitations are deleted in the same transaction.
// An expired token reads as repo.ErrNotFound; accepting on an account the
// user already belongs to is repo.ErrDuplicateMembership.
func (s *InvitationService) Accept(ctx context.Context, actor policy.Actor, token string) (*entity.Membership, error) {
	if !actor.Authenticated() {
		return nil, policy.ErrPermission
	}
	inv, err := s.Invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if !inv.Active(now) {
		return nil, repo.ErrNotFound
	}
	m := &entity.Membership{
		UserID:    actor.UserID,
		AccountID: inv.AccountID,
		Role:      inv.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Invitations.Accept(ctx, inv, m); err != nil {
		return nil, err
	}
	s.Roles.Invalidate(ctx, inv.AccountID, actor.UserID)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"account_id": inv.AccountID, "user_id": actor.UserID, "role": string(inv.Role)}).Info("invitation accepted")
	}
	return m, nil
}

// Delete revokes an invitation. Owner only.
func (s *InvitationService) Delete(ctx context.Context, actor policy.Actor, accountID, invitationID string) error {
	if err := s.authorize(ctx, actor, policy.OpInvitationDelete, accountID); err != nil {
		return err
	}
	return s.Invitations.Delete(ctx, accountID, invitationID)
}
