// internal/api/auth_middleware.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lovesim/lovesim/internal/services"
)

// 认证中间件写入gin上下文的键
const (
	ContextAccountID = "account_id"
	ContextUsername  = "username"
)

// AuthMiddleware provides JWT authentication for API endpoints.
// Requests without a valid bearer token are rejected.
func AuthMiddleware(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			unauthorized(c, "缺少登入憑證")
			return
		}

		claims, err := accounts.ParseToken(token)
		if err != nil {
			unauthorized(c, "登入憑證無效或已過期")
			return
		}

		c.Set(ContextAccountID, claims.Subject)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// extractToken reads the token from the Authorization header,
// falling back to the query string for WebSocket upgrades.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Query("token")
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:    ErrorUnauthorized,
			Message: message,
		},
		Timestamp: time.Now(),
	})
}
