package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/saasbase-io/accounts/internal/application"
	"github.com/saasbase-io/accounts/internal/domain/entity"
	"github.com/saasbase-io/accounts/internal/interface/middleware"
	"github.com/saasbase-io/accounts/pkg/response"
	"github.com/saasbase-io/accounts/pkg/validation"
)

type InvitationHandler struct {
	Svc    *application.InvitationService
	Logger *logrus.Logger
}

func NewInvitationHandler(svc *application.InvitationService, logger *logrus.Logger) *InvitationHandler {
	return &InvitationHandler{Svc: svc, Logger: logger}
}

type createInvitationRequest struct {
	Role           string `json:"role" binding:"required,role"`
	InvitationType string `json:"invitation_type" binding:"omitempty,invitetype"`
	Email          string `json:"email" binding:"omitempty,email"`
}

func (h *InvitationHandler) Create(c *gin.Context) {
	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	inv, err := h.Svc.Create(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), application.CreateInvitationInput{
		Role:           entity.Role(req.Role),
		InvitationType: entity.InvitationType(req.InvitationType),
		Email:          req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":              inv.ID,
		"account_id":      inv.AccountID,
		"role":            inv.Role,
		"token":           inv.Token,
		"invitation_type": inv.InvitationType,
		"created_at":      inv.CreatedAt,
	}, "invitation created", nil)
}

func (h *InvitationHandler) Delete(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), c.Param("invitationID"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "invitation deleted", nil)
}

func (h *InvitationHandler) Lookup(c *gin.Context) {
	res, err := h.Svc.Lookup(c.Request.Context(), middleware.ActorFrom(c), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"account_name": res.AccountName, "active": res.Active}, "invitation", nil)
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	m, err := h.Svc.Accept(c.Request.Context(), middleware.ActorFrom(c), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, membershipJSON(m), "invitation accepted", nil)
}
