package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auction-analyzer/internal/auth"
)

// PrincipalKey is the gin context key holding the authenticated claims.
const PrincipalKey = "principal"

// Auth requires a valid Bearer token and stores its claims on the context.
func Auth(parser *auth.Parser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be a Bearer token"})
			return
		}

		claims, err := parser.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(PrincipalKey, claims)
		c.Next()
	}
}
