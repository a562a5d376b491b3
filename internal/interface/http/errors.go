package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saasbase-io/accounts/internal/domain/policy"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
	"github.com/saasbase-io/accounts/pkg/response"
)

// respondError maps domain errors onto HTTP statuses and writes the envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, policy.ErrPermission):
		response.Error[any](c, http.StatusForbidden, "permission denied", nil)
	case errors.Is(err, repo.ErrDuplicateSlug):
		response.Error[any](c, http.StatusConflict, "slug already taken", nil)
	case errors.Is(err, repo.ErrDuplicateAccount):
		response.Error[any](c, http.StatusConflict, "account already exists", nil)
	case errors.Is(err, repo.ErrDuplicateMembership):
		response.Error[any](c, http.StatusConflict, "already a member", nil)
	case errors.Is(err, repo.ErrInvalidSlug), errors.Is(err, repo.ErrInvalidRole):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
