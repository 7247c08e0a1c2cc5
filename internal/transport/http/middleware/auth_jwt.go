package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"sweet-shop/internal/core/auth"
	"sweet-shop/internal/domain"
	resp "sweet-shop/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyEmail  = "email"
	KeyClaims = "claims"
)

// UserFinder 校验令牌对应的用户仍然存在
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthJWT 校验 Bearer 令牌（签名/issuer/过期）并确认用户存在；角色以库中为准
func AuthJWT(j *auth.JWTer, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")))
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		role := claims.Role
		if users != nil {
			u, err := users.FindByID(c.Request.Context(), claims.UID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				resp.Abort(c, resp.CodeUnauthorized, "user no longer exists")
				return
			case errors.Is(err, domain.ErrStorageUnavailable):
				resp.Abort(c, resp.CodeUnavailable, "storage unavailable")
				return
			case err != nil:
				_ = c.Error(err)
				resp.Abort(c, resp.CodeServerError, "")
				return
			}
			role = u.Role.String()
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyRole, role)
		c.Next()
	}
}

// RequireRole 需在 AuthJWT 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyUserID) == "" {
			resp.Abort(c, resp.CodeUnauthorized, "unauthorized")
			return
		}
		role := c.GetString(KeyRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		resp.Abort(c, resp.CodeForbidden, "admin access required")
	}
}
