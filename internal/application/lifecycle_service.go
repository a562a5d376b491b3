package application

import (
	"context"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/saasbase-io/accounts/internal/domain/entity"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
)

// LifecycleService reacts to identity events. It owns the creation of
// personal accounts and the automatic Owner membership every new account
// starts with.
type LifecycleService struct {
	Accounts repo.AccountRepository
	Logger   *logrus.Logger
	ES       *elasticsearch.Client
	ESIndex  string
}

func NewLifecycleService(accounts repo.AccountRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *LifecycleService {
	return &LifecycleService{Accounts: accounts, Logger: logger, ES: es, ESIndex: esIndex}
}

// OnUserRegistered creates the user's personal account. The account ID equals
// the user ID, the name is the email local part (empty when no email was
// supplied), and the Owner membership is written in the same transaction as
// the account. Replaying the event for the same user yields
// repo.ErrDuplicateAccount with nothing persisted.
func (s *LifecycleService) OnUserRegistered(ctx context.Context, userID, email string) (*entity.Account, error) {
	now := time.Now().UTC()
	a := &entity.Account{
		ID:                 userID,
		Name:               entity.NameFromEmail(email),
		PersonalAccount:    true,
		PrimaryOwnerUserID: userID,
		CreatedAt:          now,
		UpdatedAt:          now,
		CreatedBy:          userID,
		UpdatedBy:          userID,
	}
	if err := s.Accounts.CreateWithOwner(ctx, a, s.OnAccountCreated(a)); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "account_id": a.ID}).Info("personal account created")
	}
	indexAccount(ctx, s.ES, s.ESIndex, s.Logger, a)
	return a, nil
}

// OnAccountCreated returns the Owner membership a freshly created account
// starts with, or nil when the creator is not the account's primary owner
// (a privileged caller creating an account on someone else's behalf still
// leaves the primary owner to claim it). The caller persists the returned
// membership together with the account.
func (s *LifecycleService) OnAccountCreated(a *entity.Account) *entity.Membership {
	if a.CreatedBy != a.PrimaryOwnerUserID {
		return nil
	}
	return &entity.Membership{
		UserID:    a.PrimaryOwnerUserID,
		AccountID: a.ID,
		Role:      entity.RoleOwner,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.CreatedAt,
	}
}
