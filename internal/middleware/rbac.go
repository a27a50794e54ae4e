package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/campuskit/academic-api/internal/models"
	appErrors "github.com/campuskit/academic-api/pkg/errors"
	"github.com/campuskit/academic-api/pkg/response"
)

// RequireRoles gates a route to callers holding one of the listed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
