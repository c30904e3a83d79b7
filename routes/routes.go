package routes

import (
	"log"
	"net/http"

	"testlab/handlers"
	"testlab/middleware"
	"testlab/models"
	"testlab/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	testHandler *handlers.TestHandler,
	attemptHandler *handlers.AttemptHandler,
	reviewHandler *handlers.ReviewHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// User profile
			protected.GET("/auth/profile", authHandler.GetProfile)

			// Student test-taking routes
			tests := protected.Group("/tests")
			{
				tests.GET("/available", attemptHandler.AvailableTests)
				tests.GET("/:id", attemptHandler.GetTest)
				tests.GET("/:id/attempt", attemptHandler.AttemptStatus)
				tests.POST("/:id/submit", attemptHandler.Submit)
			}

			protected.GET("/my-results", attemptHandler.MyResults)

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				adminTests := admin.Group("/tests")
				{
					adminTests.GET("", testHandler.ListTests)
					adminTests.POST("", testHandler.CreateTest)
					adminTests.GET("/:id", testHandler.GetTest)
					adminTests.PATCH("/:id", testHandler.UpdateTest)
					adminTests.DELETE("/:id", testHandler.DeleteTest)
					adminTests.PUT("/:id/questions", testHandler.SaveQuestions)
				}

				results := admin.Group("/results")
				{
					results.GET("", reviewHandler.ListResults)
					results.GET("/:id", reviewHandler.GetAttempt)
					results.PATCH("/:id", reviewHandler.OverrideAnswer)
				}
			}
		}
	}

	// WebSocket endpoint pushing new submissions to admin dashboards
	router.GET("/ws/admin/results", func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}

		userID, role, err := middleware.ParseToken(tokenString, jwtSecret)
		if err != nil {
			log.Printf("WebSocket token validation failed: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}

		hub.RegisterClient(conn, userID)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
