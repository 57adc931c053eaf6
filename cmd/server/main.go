package main

import (
	"context"                      // context package is needed for Redis operations
	"log"                          // log package is needed for logging
	"medicamp/internal/api"        // Custom package for API handlers
	"medicamp/internal/config"     // Custom package for configuration
	"medicamp/internal/middleware" // Custom package for middleware
	"medicamp/internal/payment"    // Payment processor client
	"medicamp/internal/repository" // Persistence layer
	"medicamp/internal/service"    // Registration workflow

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database.
	// TranslateError makes unique-index violations surface as
	// gorm.ErrDuplicatedKey, which the registration store maps to Conflict.
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Wire the registration workflow: GORM-backed store + Stripe processor
	store := repository.NewGormStore(db)
	processor := payment.NewStripeProcessor(cfg.StripeSecretKey)
	registrations := service.NewRegistrationService(store, processor, cfg.PaymentCurrency)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/user", api.SignupHandler(db))              // Account creation endpoint
	r.POST("/login", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Public camp routes
	r.GET("/camps", api.ListCampsHandler(db, redisClient))   // Camp listing endpoint
	r.GET("/camps/:id", api.GetCampHandler(db, redisClient)) // Camp detail endpoint

	// Camp management routes (organizer only)
	campGroup := r.Group("/camps")
	campGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.OrganizerOnlyMiddleware(db))
	campGroup.POST("", api.CreateCampHandler(db, redisClient))       // Create camp endpoint
	campGroup.PUT("/:id", api.UpdateCampHandler(db, redisClient))    // Update camp endpoint
	campGroup.DELETE("/:id", api.DeleteCampHandler(db, redisClient)) // Delete camp endpoint

	// Registration routes (protected by JWT)
	regGroup := r.Group("/registrations")
	regGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	regGroup.POST("", api.CreateRegistrationHandler(registrations, redisClient))                      // Cash registration endpoint
	regGroup.GET("/participant", api.ListParticipantRegistrationsHandler(registrations, redisClient)) // Own registrations endpoint
	regGroup.GET("/organizer", api.ListOrganizerRegistrationsHandler(registrations))                  // Owned-camp registrations endpoint

	// Payment routes (protected by JWT)
	payGroup := r.Group("/api")
	payGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	payGroup.POST("/create-payment-intent", api.CreatePaymentIntentHandler(registrations))     // Payment handle endpoint
	payGroup.POST("/confirm-payment", api.ConfirmPaymentHandler(registrations, redisClient)) // Settlement endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
