package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
)

const CurrentUserKey = "current_user"

// IdentitySource resolves a verified principal into a role-bearing user.
// The bool is false when a newer resolution for the same principal has
// already been committed; the returned user is then that newer one.
type IdentitySource interface {
	Refresh(ctx context.Context, principalID, email string) (models.User, bool)
}

// Identity resolves the authenticated principal into a models.User.
// It must run after AuthMiddleware.
func Identity(source IdentitySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		principalID := c.GetString(UserIDKey)
		if principalID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id not found"})
			c.Abort()
			return
		}

		ctx := logger.WithUserID(c.Request.Context(), principalID)
		c.Request = c.Request.WithContext(ctx)

		email := c.GetString(EmailKey)
		user, fresh := source.Refresh(ctx, principalID, email)
		if !fresh {
			logger.Debug(ctx, "identity resolution superseded by a newer one")
			if user.ID == "" {
				user, _ = source.Refresh(ctx, principalID, email)
			}
		}
		if user.ID == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity not resolved, retry the request"})
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, exists := c.Get(CurrentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// RequireRole rejects users whose role is not one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not resolved"})
			c.Abort()
			return
		}
		if !slices.Contains(roles, user.Role) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "role " + string(user.Role) + " cannot access this resource",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
