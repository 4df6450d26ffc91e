package middleware

import (
	"net/http"
	"strings"

	"LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "current_user_id"
	ContextTokenKey  = "current_token"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// token subject (the external user id) under ContextUserIDKey.
func AuthMiddleware(auth services.TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header", "error": "unauthorized"})
			return
		}
		token, ok := BearerToken(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization header", "error": "unauthorized"})
			return
		}

		subject, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token", "error": "unauthorized"})
			return
		}

		c.Set(ContextUserIDKey, subject)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// CurrentUserID returns the authenticated external id, if any.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
