package main

import (
	"log"

	"testlab/config"
	"testlab/handlers"
	"testlab/middleware"
	"testlab/models"
	"testlab/routes"
	"testlab/services"
	"testlab/store"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Test{},
		&models.Question{},
		&models.Option{},
		&models.Attempt{},
		&models.Answer{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize record store and services
	recordStore := store.NewGormStore(db)
	authService := services.NewAuthService(recordStore, cfg.JWTSecret)
	testService := services.NewTestService(recordStore)
	attemptService := services.NewAttemptService(recordStore, redisClient)
	reviewService := services.NewReviewService(recordStore)

	// Initialize WebSocket hub for the admin results feed
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	testHandler := handlers.NewTestHandler(testService)
	attemptHandler := handlers.NewAttemptHandler(attemptService, testService, hub)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, testHandler, attemptHandler, reviewHandler, hub, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
