package api

import (
	"context" // Context for Redis operations
	"medicamp/internal/domain" // Importing domain models
	"medicamp/internal/middleware"
	"medicamp/internal/utils" // Utility functions
	"net/http"                // HTTP status codes
	"strconv"                 // String conversion

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Request struct for creating or updating a camp
type CampRequest struct {
	Name                   string  `json:"name" binding:"required"`     // Camp name
	Description            string  `json:"description"`                 // Camp description
	Location               string  `json:"location" binding:"required"` // Venue
	DateTime               int64   `json:"dateTime"`                    // Scheduled date in milliseconds
	HealthcareProfessional string  `json:"healthcareProfessional"`      // Lead professional
	Fees                   float64 `json:"fees"`                        // Registration fee, non-negative
}

// ListCampsHandler returns all camps, cached in Redis
func ListCampsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()      // Context for Redis operations
		cacheKey := utils.CampListKey()  // Cache key for the camp list
		var camps []domain.Camp          // Slice to hold camps
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &camps)
		if err == nil && found {
			// Return cached camps
			c.JSON(http.StatusOK, gin.H{"camps": camps, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.Order("date_time asc").Find(&camps).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch camps"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, camps, utils.CacheTTL)  // Cache the camp list
		c.JSON(http.StatusOK, gin.H{"camps": camps, "cached": false}) // Return the camps
	}
}

// GetCampHandler returns a single camp by id, cached in Redis
func GetCampHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse camp id from path
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid camp id"})
			return
		}
		ctx := context.Background()          // Context for Redis operations
		cacheKey := utils.CampKey(uint(id))  // Cache key for the camp
		var camp domain.Camp                 // Camp struct to hold data
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &camp)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"camp": camp, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.First(&camp, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camp not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, camp, utils.CacheTTL) // Cache the camp
		c.JSON(http.StatusOK, gin.H{"camp": camp, "cached": false}) // Return the camp
	}
}

// CreateCampHandler publishes a new camp owned by the calling organizer
func CreateCampHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(middleware.CtxEmail) // Organizer email from context
		var req CampRequest                       // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.Fees < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Participant count starts at zero and is only ever moved by the
		// registration workflow's atomic increment
		camp := domain.Camp{
			Name:                   req.Name,
			Description:            req.Description,
			Location:               req.Location,
			DateTime:               req.DateTime,
			HealthcareProfessional: req.HealthcareProfessional,
			Fees:                   req.Fees,
			OrganizerEmail:         email,
		}
		// Save the new camp
		if err := db.Create(&camp).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"organizer": email,       // Owning organizer
				"error":     err.Error(), // Error message
			}).Error("Failed to create camp") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create camp"})
			return
		}
		// Invalidate the camp list cache
		_ = utils.DeleteCache(context.Background(), rdb, utils.CampListKey())
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Camp created", "camp": camp})
	}
}

// UpdateCampHandler updates a camp's content fields; only the owner may update
func UpdateCampHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(middleware.CtxEmail) // Organizer email from context
		id, err := strconv.Atoi(c.Param("id"))    // Parse camp id from path
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid camp id"})
			return
		}
		var req CampRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.Fees < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var camp domain.Camp // Fetch the camp
		if err := db.First(&camp, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camp not found"})
			return
		}
		// Ownership check
		if camp.OrganizerEmail != email {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not the owner of this camp"})
			return
		}
		// Content fields only; participant_count is never writable here
		updates := map[string]any{
			"name":                    req.Name,
			"description":             req.Description,
			"location":                req.Location,
			"date_time":               req.DateTime,
			"healthcare_professional": req.HealthcareProfessional,
			"fees":                    req.Fees,
		}
		if err := db.Model(&camp).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update camp"})
			return
		}
		// Invalidate camp caches
		_ = utils.DeleteCache(context.Background(), rdb, utils.CampListKey(), utils.CampKey(camp.ID))
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Camp updated", "camp": camp})
	}
}

// DeleteCampHandler removes a camp; only the owner may delete
func DeleteCampHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(middleware.CtxEmail) // Organizer email from context
		id, err := strconv.Atoi(c.Param("id"))    // Parse camp id from path
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid camp id"})
			return
		}
		var camp domain.Camp // Fetch the camp
		if err := db.First(&camp, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camp not found"})
			return
		}
		// Ownership check
		if camp.OrganizerEmail != email {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not the owner of this camp"})
			return
		}
		// Delete the camp
		if err := db.Delete(&camp).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete camp"})
			return
		}
		// Invalidate camp caches
		_ = utils.DeleteCache(context.Background(), rdb, utils.CampListKey(), utils.CampKey(camp.ID))
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Camp deleted"})
	}
}
