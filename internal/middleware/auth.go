package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mizuhara/project-management-api/internal/constants"
	apierrors "github.com/mizuhara/project-management-api/internal/errors"
	"github.com/mizuhara/project-management-api/internal/services"
)

// RequireAuth resolves the Authorization bearer token to a user id and
// aborts with 401 when the token is missing or revoked.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		userID, err := authService.Authenticate(token)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header, or "".
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(uint64)
	return id, ok
}
