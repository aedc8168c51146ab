package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/response"
)

// RequireRoles lets through actors holding one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}
		response.Error(c, appErrors.ErrForbidden)
	}
}

// RequireElevated admits ADMIN and BPH.
func RequireElevated() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleBPH)
}
