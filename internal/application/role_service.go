package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/saasbase-io/accounts/internal/domain/entity"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
)

const roleCacheTTL = 5 * time.Minute

// RoleService resolves the role a user holds on an account. It is the single
// authorization primitive every gate check composes from: a pure read with no
// side effects beyond an optional Redis cache, safe to call concurrently.
type RoleService struct {
	Members repo.MembershipRepository
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewRoleService(members repo.MembershipRepository, rdb *redis.Client, logger *logrus.Logger) *RoleService {
	return &RoleService{Members: members, Redis: rdb, Logger: logger}
}

func roleCacheKey(accountID, userID string) string {
	return "account:role:" + accountID + ":" + userID
}

// Lookup returns the role the user holds on the account. The second return is
// false when no membership exists, including when the account itself does not
// exist; storage failures are logged and reported the same way so callers
// fail closed.
func (s *RoleService) Lookup(ctx context.Context, accountID, userID string) (entity.Role, bool) {
	if accountID == "" || userID == "" {
		return "", false
	}
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, roleCacheKey(accountID, userID)).Result(); err == nil {
			if r := entity.Role(cached); r.Valid() {
				return r, true
			}
		}
	}
	m, err := s.Members.Get(ctx, accountID, userID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) && s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"account_id": accountID,
				"user_id":    userID,
			}).Warn("role lookup failed")
		}
		return "", false
	}
	if s.Redis != nil {
		if err := s.Redis.Set(ctx, roleCacheKey(accountID, userID), string(m.Role), roleCacheTTL).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("role cache set failed")
		}
	}
	return m.Role, true
}

// HasRole reports whether the user holds one of the allowed roles on the
// account. It never returns an error; a missing membership is a valid false.
func (s *RoleService) HasRole(ctx context.Context, accountID, userID string, allowed ...entity.Role) bool {
	role, ok := s.Lookup(ctx, accountID, userID)
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Invalidate drops the cached role for (accountID, userID). Called after any
// membership mutation so Lookup observes the change immediately.
func (s *RoleService) Invalidate(ctx context.Context, accountID, userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, roleCacheKey(accountID, userID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("role cache invalidation failed")
	}
}
