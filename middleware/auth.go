package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthRequired gates the /auth group: a valid Bearer token or a live cookie
// session gets through, everything else is a 401.
func AuthRequired(c *gin.Context) {
	if _, err := authenticatedEmail(c); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}
