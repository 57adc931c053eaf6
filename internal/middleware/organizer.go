package middleware

import (
	"medicamp/internal/domain" // Importing domain models
	"net/http"                 // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// OrganizerOnlyMiddleware re-checks the user's role from the database on each
// request, so a stale token issued before a role change cannot publish camps.
func OrganizerOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(CtxUserID) // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// If user not found or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Organizer access required"})
			return
		}
		// Check if user role is organizer
		if user.Role != domain.RoleOrganizer {
			// If not organizer, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Organizer access required"})
			return
		}
		// If organizer, proceed to the next handler
		c.Next()
	}
}
