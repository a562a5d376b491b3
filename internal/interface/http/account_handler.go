package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/saasbase-io/accounts/internal/application"
	"github.com/saasbase-io/accounts/internal/domain/entity"
	"github.com/saasbase-io/accounts/internal/interface/middleware"
	"github.com/saasbase-io/accounts/pkg/response"
	"github.com/saasbase-io/accounts/pkg/validation"
)

type AccountHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

type createAccountRequest struct {
	Name            string         `json:"name" binding:"required"`
	Slug            string         `json:"slug" binding:"required,slug"`
	PublicMetadata  map[string]any `json:"public_metadata"`
	PrivateMetadata map[string]any `json:"private_metadata"`
	PrimaryOwnerID  string         `json:"primary_owner_user_id"`
}

type updateAccountRequest struct {
	Name            *string        `json:"name"`
	Slug            *string        `json:"slug"`
	PublicMetadata  map[string]any `json:"public_metadata"`
	PrivateMetadata map[string]any `json:"private_metadata"`
	PersonalAccount *bool          `json:"personal_account"`
	PrimaryOwnerID  *string        `json:"primary_owner_user_id"`
}

type updateMemberRequest struct {
	Role string `json:"role" binding:"required,role"`
}

func accountJSON(a *entity.Account) gin.H {
	return gin.H{
		"id":                    a.ID,
		"name":                  a.Name,
		"slug":                  a.Slug,
		"personal_account":      a.PersonalAccount,
		"primary_owner_user_id": a.PrimaryOwnerUserID,
		"public_metadata":       a.PublicMetadata,
		"created_at":            a.CreatedAt,
		"updated_at":            a.UpdatedAt,
	}
}

func membershipJSON(m *entity.Membership) gin.H {
	return gin.H{
		"user_id":    m.UserID,
		"account_id": m.AccountID,
		"role":       m.Role,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
	}
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), middleware.ActorFrom(c), application.CreateAccountInput{
		Name:               req.Name,
		Slug:               req.Slug,
		PublicMetadata:     req.PublicMetadata,
		PrivateMetadata:    req.PrivateMetadata,
		PrimaryOwnerUserID: req.PrimaryOwnerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, accountJSON(a), "account created", nil)
}

func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.Svc.ListForUser(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountJSON(a))
	}
	response.Success(c, http.StatusOK, out, "accounts", nil)
}

func (h *AccountHandler) Get(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, accountJSON(a), "account", nil)
}

func (h *AccountHandler) Update(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), application.UpdateAccountInput{
		Name:               req.Name,
		Slug:               req.Slug,
		PublicMetadata:     req.PublicMetadata,
		PrivateMetadata:    req.PrivateMetadata,
		PersonalAccount:    req.PersonalAccount,
		PrimaryOwnerUserID: req.PrimaryOwnerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, accountJSON(a), "account updated", nil)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "account deleted", nil)
}

func (h *AccountHandler) ListMembers(c *gin.Context) {
	members, err := h.Svc.ListMembers(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(members))
	for _, m := range members {
		out = append(out, membershipJSON(m))
	}
	response.Success(c, http.StatusOK, out, "members", nil)
}

func (h *AccountHandler) UpdateMember(c *gin.Context) {
	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Svc.UpdateMemberRole(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), c.Param("userID"), entity.Role(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"updated": true}, "member updated", nil)
}

func (h *AccountHandler) RemoveMember(c *gin.Context) {
	err := h.Svc.RemoveMember(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), c.Param("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"removed": true}, "member removed", nil)
}

func (h *AccountHandler) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing file", nil)
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadLogo(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), f, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logo_url": url}, "logo uploaded", nil)
}

func (h *AccountHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), middleware.ActorFrom(c), c.Query("q"), size)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}
