package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"deskwarrior-backend/internal/common/config"
)

// RequireAuth guards endpoints that need a validated Telegram user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
			return
		}

		c.Next()
	}
}

// CollaboratorAuth guards the event endpoints used by the bot and billing
// collaborators. They authenticate with a shared token header. An empty
// configured token disables the check (local development).
func CollaboratorAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := cfg.Telegram.CollaboratorToken
		if expected == "" {
			c.Next()
			return
		}

		got := c.GetHeader("X-Collaborator-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: invalid collaborator token"})
			return
		}

		c.Next()
	}
}
