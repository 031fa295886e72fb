package middleware

import (
	"net/http"
	"strings"

	"waste-whirl-api/services"

	"github.com/gin-gonic/gin"
)

// RequireAuth guards the company admin routes with a bearer JWT.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := authService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("company_id", claims.CompanyID)
		c.Set("company_name", claims.CompanyName)
		c.Next()
	}
}
