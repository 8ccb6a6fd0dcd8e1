package routes

import (
	"uat-portal-api/internal/handlers"
	"uat-portal-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "UAT Portal API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Task reads and per-country stakeholder actions
		protectedRoutes.GET("/tasks", handlers.GetTasks)
		protectedRoutes.GET("/tasks/:id", handlers.GetTaskByID)
		protectedRoutes.PATCH("/tasks/:id/status", handlers.UpdateTaskStatus)
		protectedRoutes.POST("/tasks/:id/signoff", handlers.SignOffTask)
		protectedRoutes.PATCH("/tasks/:id/steps/:stepId/outcome", handlers.RecordStepOutcome)
		protectedRoutes.POST("/tasks/:id/comments", handlers.CreateComment)
		protectedRoutes.GET("/tasks/:id/comments", handlers.GetComments)
		protectedRoutes.GET("/tasks/:id/activity", handlers.GetActivity)
		protectedRoutes.GET("/stats", handlers.GetStats)
		protectedRoutes.GET("/users", handlers.GetAllUsers)
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)
	}

	// Admin-only routes
	adminRoutes := protectedRoutes.Group("")
	adminRoutes.Use(middleware.RequireAdmin())
	{
		adminRoutes.POST("/tasks", handlers.CreateTask)
		adminRoutes.PUT("/tasks/:id", handlers.UpdateTask)
		adminRoutes.POST("/tasks/:id/deploy", handlers.DeployTask)
		adminRoutes.DELETE("/tasks/:id", handlers.DeleteTask)
		adminRoutes.POST("/tasks/:id/steps", handlers.AddStep)
		adminRoutes.PUT("/tasks/:id/steps/:stepId", handlers.UpdateStep)
		adminRoutes.DELETE("/tasks/:id/steps/:stepId", handlers.DeleteStep)
		adminRoutes.POST("/tasks/:id/steps/import", handlers.ImportSteps)
		adminRoutes.POST("/users", handlers.CreateUser)
	}

	return ginRouter
}
