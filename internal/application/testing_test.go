package application

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/saasbase-io/accounts/internal/infrastructure/memory"
)

// services bundles everything the application tests need, all backed by the
// in-memory store. Redis, GCS, ES and RabbitMQ are left nil; the services
// treat missing infrastructure as disabled.
type services struct {
	store       *memory.Store
	roles       *RoleService
	lifecycle   *LifecycleService
	accounts    *AccountService
	invitations *InvitationService
}

func newServices() *services {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	roles := NewRoleService(store.Members(), nil, logger)
	lifecycle := NewLifecycleService(store.Accounts(), logger, nil, "")
	accounts := NewAccountService(store.Accounts(), store.Members(), roles, lifecycle, logger, nil, "", nil, "")
	invitations := NewInvitationService(store.Invitations(), store.Accounts(), roles, nil, logger, "")

	return &services{
		store:       store,
		roles:       roles,
		lifecycle:   lifecycle,
		accounts:    accounts,
		invitations: invitations,
	}
}
