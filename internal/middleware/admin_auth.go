package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the plain admin API key.
const AdminKeyHeader = "X-Admin-Key"

// AdminKeyAuth guards privileged routes with an API key compared against a
// bcrypt hash. An empty hash disables the routes entirely.
func AdminKeyAuth(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		if keyHash == "" {
			logger.Warn("Admin route called but no admin key is configured")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access is not configured"})
			return
		}

		key := c.GetHeader(AdminKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": AdminKeyHeader + " header required"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			logger.Warn("Admin key rejected")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid admin key"})
			return
		}

		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), adminKey, true))
		c.Next()
	}
}
