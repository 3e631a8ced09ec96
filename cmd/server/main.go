package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mizuhara/project-management-api/internal/config"
	"github.com/mizuhara/project-management-api/internal/database"
	"github.com/mizuhara/project-management-api/internal/handlers"
	"github.com/mizuhara/project-management-api/internal/middleware"
	"github.com/mizuhara/project-management-api/internal/repository"
	"github.com/mizuhara/project-management-api/internal/services"
	"github.com/mizuhara/project-management-api/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// File store for project uploads
	store := storage.NewDiskStore(cfg.StorageRoot, cfg.BaseURL)

	// Initialize repositories
	projectRepo := repository.NewProjectRepository(database.GetDB())
	userRepo := repository.NewUserRepository(database.GetDB())
	tokenRepo := repository.NewTokenRepository(database.GetDB())

	// Initialize services
	projectService := services.NewProjectService(projectRepo, store)
	authService := services.NewAuthService(userRepo, tokenRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)

	// Initialize Gin router
	r := gin.Default()
	r.Use(cors.Default())

	// Stored files are served straight from disk
	r.Static("/"+storage.Namespace, cfg.StorageRoot+"/"+storage.Namespace)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Management API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/logout", middleware.RequireAuth(authService), authHandler.Logout)
		api.GET("/me", middleware.RequireAuth(authService), authHandler.GetCurrentUser)

		// Project routes; reads are public, writes need a token
		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:code", projectHandler.ShowProject)

			authed := projects.Group("")
			authed.Use(middleware.RequireAuth(authService))
			{
				authed.POST("", projectHandler.CreateProject)
				authed.PUT("/:code", projectHandler.UpdateProject)
				authed.PATCH("/:code", projectHandler.UpdateProject)
				authed.DELETE("/:code", projectHandler.DestroyProject)
			}
		}
	}

	// Fallback for unmatched routes
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Error 404 Page Not Found"})
	})

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
