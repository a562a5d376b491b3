package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saasbase-io/accounts/internal/container"
	handlers "github.com/saasbase-io/accounts/internal/interface/http"
	"github.com/saasbase-io/accounts/internal/interface/middleware"
	"github.com/saasbase-io/accounts/pkg/helpers"
)

// Module wires the account and invitation handlers behind JWT auth.
// All routes are registered under the given RouterGroup (usually /api).
type Module struct {
	Accounts    *handlers.AccountHandler
	Invitations *handlers.InvitationHandler
	JWT         *helpers.JWTManager
}

func New(accounts *handlers.AccountHandler, invitations *handlers.InvitationHandler, jwt *helpers.JWTManager) *Module {
	return &Module{Accounts: accounts, Invitations: invitations, JWT: jwt}
}

func (m *Module) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/accounts", m.Accounts.Create)
		auth.GET("/accounts", m.Accounts.List)
		auth.GET("/accounts/search", m.Accounts.Search)
		auth.GET("/accounts/:id", m.Accounts.Get)
		auth.PUT("/accounts/:id", m.Accounts.Update)
		auth.DELETE("/accounts/:id", m.Accounts.Delete)
		auth.POST("/accounts/:id/logo", m.Accounts.UploadLogo)

		auth.GET("/accounts/:id/members", m.Accounts.ListMembers)
		auth.PUT("/accounts/:id/members/:userID", m.Accounts.UpdateMember)
		auth.DELETE("/accounts/:id/members/:userID", m.Accounts.RemoveMember)

		auth.POST("/accounts/:id/invitations", m.Invitations.Create)
		auth.DELETE("/accounts/:id/invitations/:invitationID", m.Invitations.Delete)
		auth.GET("/invitations/:token", m.Invitations.Lookup)
		auth.POST("/invitations/:token/accept", m.Invitations.Accept)
	}
}
