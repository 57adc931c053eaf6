package middleware

import (
	"medicamp/internal/utils" // JWT utility functions
	"net/http"                // HTTP status codes
	"strings"                 // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys populated by JWTAuthMiddleware.
const (
	CtxUserID = "userID" // Authenticated user ID
	CtxEmail  = "email"  // Authenticated user email
	CtxRole   = "role"   // Authenticated user role
)

// JWTAuthMiddleware validates JWT tokens and extracts the identity tuple
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and parse it
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(CtxUserID, claims.UserID) // Store userID in context
		c.Set(CtxEmail, claims.Email)   // Store email in context
		c.Set(CtxRole, claims.Role)     // Store role in context
		c.Next()                        // Proceed to the next handler
	}
}
