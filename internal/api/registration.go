package api

import (
	"context" // Context for Redis operations
	"errors"  // Error matching against the workflow taxonomy
	"medicamp/internal/middleware"
	"medicamp/internal/service"
	"medicamp/internal/utils" // Utility functions
	"net/http"                // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Request struct for a registration (cash entry point)
type RegistrationRequest struct {
	CampID           uint   `json:"campId" binding:"required"`           // Target camp
	ParticipantName  string `json:"participantName" binding:"required"`  // Registrant name
	Phone            string `json:"phone" binding:"required"`            // Contact phone
	Age              uint   `json:"age" binding:"required"`              // Registrant age
	Gender           string `json:"gender" binding:"required"`           // Registrant gender
	EmergencyContact string `json:"emergencyContact" binding:"required"` // Emergency contact
	PaymentMethod    string `json:"paymentMethod"`                       // cash (default) or card
}

// Request struct for obtaining a payment handle
type CreateIntentRequest struct {
	CampID          uint   `json:"campId" binding:"required"`          // Target camp
	ParticipantName string `json:"participantName" binding:"required"` // Registrant name for processor metadata
}

// Request struct for settling a card registration. Only the intent id is
// trusted; status and amount are re-derived from the processor.
type ConfirmPaymentRequest struct {
	PaymentIntentID  string `json:"paymentIntentId" binding:"required"`  // Processor intent id
	CampID           uint   `json:"campId" binding:"required"`           // Target camp
	ParticipantName  string `json:"participantName" binding:"required"`  // Registrant name
	Phone            string `json:"phone" binding:"required"`            // Contact phone
	Age              uint   `json:"age" binding:"required"`              // Registrant age
	Gender           string `json:"gender" binding:"required"`           // Registrant gender
	EmergencyContact string `json:"emergencyContact" binding:"required"` // Emergency contact
}

// identityFromContext rebuilds the verified identity tuple the JWT middleware
// stored on the request
func identityFromContext(c *gin.Context) (service.Identity, bool) {
	userID, ok := c.Get(middleware.CtxUserID) // Get userID from context
	if !ok {
		return service.Identity{}, false
	}
	return service.Identity{
		UserID: userID.(uint),                     // Authenticated user ID
		Email:  c.GetString(middleware.CtxEmail),  // Authenticated email
		Role:   c.GetString(middleware.CtxRole),   // Authenticated role
	}, true
}

// respondWorkflowError maps the workflow error taxonomy onto HTTP status codes
func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrPaymentNotCompleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		// Upstream and store failures stay opaque to the caller
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
	}
}

// invalidateRegistrationCaches drops every cached view a successful
// registration changes: the camp list and detail (participant count moved)
// and the participant's own registrations
func invalidateRegistrationCaches(rdb *redis.Client, campID uint, email string) {
	_ = utils.DeleteCache(context.Background(), rdb,
		utils.CampListKey(),
		utils.CampKey(campID),
		utils.ParticipantRegistrationsKey(email),
	)
}

// CreateRegistrationHandler handles the cash registration entry point
func CreateRegistrationHandler(svc *service.RegistrationService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c) // Get identity from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req RegistrationRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Run the registration workflow
		reg, err := svc.Register(c.Request.Context(), identity, service.RegistrationInput{
			CampID:           req.CampID,
			ParticipantName:  req.ParticipantName,
			Phone:            req.Phone,
			Age:              req.Age,
			Gender:           req.Gender,
			EmergencyContact: req.EmergencyContact,
			PaymentMethod:    req.PaymentMethod,
		})
		if err != nil {
			// Log the rejection with context
			logrus.WithFields(logrus.Fields{
				"user_id": identity.UserID, // Registrant user ID
				"camp_id": req.CampID,      // Target camp
				"error":   err.Error(),     // Error message
			}).Warn("Registration rejected")
			respondWorkflowError(c, err)
			return
		}
		// Log the successful registration
		logrus.WithFields(logrus.Fields{
			"registration_id": reg.ID,            // New registration ID
			"camp_id":         reg.CampID,        // Target camp
			"user_id":         identity.UserID,   // Registrant user ID
			"payment_method":  reg.PaymentMethod, // cash or card
			"payment_status":  reg.PaymentStatus, // pending or paid
		}).Info("Registration created")
		invalidateRegistrationCaches(rdb, reg.CampID, identity.Email) // Drop stale cached views
		// Return the new registration id
		c.JSON(http.StatusCreated, gin.H{"registrationId": reg.ID, "registration": reg})
	}
}

// CreatePaymentIntentHandler obtains a client-side payment handle for a camp's
// fee; the amount is derived from the camp record, never the request
func CreatePaymentIntentHandler(svc *service.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c) // Get identity from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateIntentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Create the intent with the processor
		intent, err := svc.CreatePaymentIntent(c.Request.Context(), identity, req.CampID, req.ParticipantName)
		if err != nil {
			// This surface only distinguishes bad input from upstream failure
			if errors.Is(err, service.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logrus.WithFields(logrus.Fields{
				"user_id": identity.UserID, // Registrant user ID
				"camp_id": req.CampID,      // Target camp
				"error":   err.Error(),     // Error message
			}).Error("Payment intent creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment intent"})
			return
		}
		// Return the client handle and intent id
		c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret, "paymentIntentId": intent.ID})
	}
}

// ConfirmPaymentHandler settles a card registration after verifying the
// claimed intent with the processor
func ConfirmPaymentHandler(svc *service.RegistrationService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c) // Get identity from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ConfirmPaymentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Run the settlement workflow
		reg, err := svc.ConfirmCardPayment(c.Request.Context(), identity, req.PaymentIntentID, service.RegistrationInput{
			CampID:           req.CampID,
			ParticipantName:  req.ParticipantName,
			Phone:            req.Phone,
			Age:              req.Age,
			Gender:           req.Gender,
			EmergencyContact: req.EmergencyContact,
		})
		if err != nil {
			// Log the rejection with context
			logrus.WithFields(logrus.Fields{
				"user_id":   identity.UserID,      // Registrant user ID
				"camp_id":   req.CampID,           // Target camp
				"intent_id": req.PaymentIntentID,  // Claimed intent
				"error":     err.Error(),          // Error message
			}).Warn("Payment confirmation rejected")
			respondWorkflowError(c, err)
			return
		}
		// Log the settled registration
		logrus.WithFields(logrus.Fields{
			"registration_id": reg.ID,              // New registration ID
			"camp_id":         reg.CampID,          // Target camp
			"user_id":         identity.UserID,     // Registrant user ID
			"intent_id":       reg.PaymentIntentID, // Verified intent
			"amount_paid":     reg.AmountPaid,      // Processor-verified amount
		}).Info("Card registration settled")
		invalidateRegistrationCaches(rdb, reg.CampID, identity.Email) // Drop stale cached views
		// Return the new registration id and the verified intent id
		c.JSON(http.StatusCreated, gin.H{"registrationId": reg.ID, "paymentIntentId": reg.PaymentIntentID, "registration": reg})
	}
}

// ListParticipantRegistrationsHandler returns the caller's own registrations,
// cached in Redis
func ListParticipantRegistrationsHandler(svc *service.RegistrationService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c) // Get identity from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                                    // Context for Redis operations
		cacheKey := utils.ParticipantRegistrationsKey(identity.Email)  // Cache key for the caller
		var regs []any                                                 // Cached registrations
		found, err := utils.GetCache(ctx, rdb, cacheKey, &regs)        // Try to get from cache
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"registrations": regs, "cached": true})
			return
		}
		// If not in cache, fetch through the workflow's query side
		list, err := svc.ListForParticipant(c.Request.Context(), identity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch registrations"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, list, utils.CacheTTL)        // Cache the registrations
		c.JSON(http.StatusOK, gin.H{"registrations": list, "cached": false}) // Return the registrations
	}
}

// ListOrganizerRegistrationsHandler returns registrations across every camp
// owned by the calling organizer. Served fresh: organizers review these
func ListOrganizerRegistrationsHandler(svc *service.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c) // Get identity from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Resolve owned camps, then their registrations
		list, err := svc.ListForOrganizerCamps(c.Request.Context(), identity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch registrations"})
			return
		}
		// Return the registrations
		c.JSON(http.StatusOK, gin.H{"registrations": list})
	}
}
