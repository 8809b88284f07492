package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nextstep-backend/internal/shared/auth"
	"nextstep-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	usernameKey  = "username"
	userEmailKey = "userEmail"
	userRoleKey  = "userRole"
)

// Auth validates bearer JWTs when present and stores identity in context.
// Requests without a token continue anonymously; handlers that need an
// identity enforce it themselves.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := auth.VerifyJWT(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, claims.Subject)
		if claims.Username != "" {
			c.Set(usernameKey, claims.Username)
		}
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		if claims.Role != "" {
			c.Set(userRoleKey, claims.Role)
		}
		c.Next()
	}
}

// RequireUser aborts with 401 unless an authenticated identity is present.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserIDFromContext(c) == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Login required", nil)
			return
		}
		c.Next()
	}
}

// UserIDFromContext returns the authenticated user ID, or "" for anonymous.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// UsernameFromContext returns the authenticated username, or "" for anonymous.
func UsernameFromContext(c *gin.Context) string {
	return c.GetString(usernameKey)
}

// UserEmailFromContext returns the authenticated user's email, or "".
func UserEmailFromContext(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

// UserRoleFromContext returns the authenticated user's role, or "".
func UserRoleFromContext(c *gin.Context) string {
	return c.GetString(userRoleKey)
}
