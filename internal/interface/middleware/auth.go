package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/saasbase-io/accounts/internal/domain/policy"
	"github.com/saasbase-io/accounts/pkg/helpers"
	"github.com/saasbase-io/accounts/pkg/response"
)

const (
	CtxUserIDKey     = "userID"
	CtxPrivilegedKey = "privileged"
)

// Auth validates the access token and, for user tokens, checks the identity
// service's session hash in Redis. It sets userID and the privileged flag in
// the Gin context; service tokens skip the session check.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			// service callers send a bearer header instead of cookies
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}

		if !claims.Service && rdb != nil {
			key := "user:session:" + claims.UserID
			data, err := rdb.HGetAll(c.Request.Context(), key).Result()
			if err != nil || len(data) == 0 {
				response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				c.Abort()
				return
			}
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxPrivilegedKey, claims.Service)
		c.Next()
	}
}

// ActorFrom builds the policy actor for the current request.
func ActorFrom(c *gin.Context) policy.Actor {
	return policy.Actor{
		UserID:     c.GetString(CtxUserIDKey),
		Privileged: c.GetBool(CtxPrivilegedKey),
	}
}
