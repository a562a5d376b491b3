package router

import (
	"github.com/saasbase-io/accounts/internal/application"
	"github.com/saasbase-io/accounts/internal/container"
	pginfra "github.com/saasbase-io/accounts/internal/infrastructure/postgres"
	handlers "github.com/saasbase-io/accounts/internal/interface/http"
	accountmodule "github.com/saasbase-io/accounts/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()

	accountsRepo := pginfra.NewAccountRepository(pool)
	membersRepo := pginfra.NewMembershipRepository(pool)
	invitationsRepo := pginfra.NewInvitationRepository(pool)

	roles := application.NewRoleService(membersRepo, container.GetRedis(), logger)
	lifecycle := application.NewLifecycleService(accountsRepo, logger, container.GetES(), cfg.ESAccountsIndex)
	accounts := application.NewAccountService(
		accountsRepo,
		membersRepo,
		roles,
		lifecycle,
		logger,
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetES(),
		cfg.ESAccountsIndex,
	)
	invitations := application.NewInvitationService(
		invitationsRepo,
		accountsRepo,
		roles,
		container.GetRabbitPub(),
		logger,
		cfg.InviteAcceptURL,
	)

	accountHandler := handlers.NewAccountHandler(accounts, logger)
	invitationHandler := handlers.NewInvitationHandler(invitations, logger)

	r.Add(accountmodule.New(accountHandler, invitationHandler, container.GetJWT()))
}
