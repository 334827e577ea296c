package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/tasks"
)

// RouterConfig carries all dependencies for the HTTP router.
type RouterConfig struct {
	Database        *database.Database
	BookStore       BookStore
	ProgressService ProgressService
	AuthService     *auth.Service
	AuthMiddleware  *auth.Middleware
	SessionManager  *auth.SessionManager
	TaskClient      *tasks.Client
	CSRFSecret      []byte
	SecureCookies   bool
	Version         string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers on every response
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(cfg.AuthMiddleware.Handler())

	// Auth endpoints (public)
	authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager)
	authController.RegisterRoutes(router)

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.TaskClient, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Catalog: reads are public, mutations are admin-only
	booksController := NewBooksController(cfg.BookStore)
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/:id", booksController.GetBook)

	adminBooks := router.Group("/api/books",
		cfg.AuthMiddleware.RequireAuth(),
		cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin))
	adminBooks.POST("", booksController.CreateBook)
	adminBooks.PUT("/:id", booksController.UpdateBook)
	adminBooks.DELETE("/:id", booksController.DeactivateBook)

	// Student progress endpoints
	studentsController := NewStudentsController(cfg.ProgressService)
	students := router.Group("/students", cfg.AuthMiddleware.RequireAuth())
	students.POST("/save_progress", studentsController.SaveProgress)
	students.GET("/reading_progress", studentsController.ReadingProgress)
	students.POST("/update_reading_time", studentsController.UpdateReadingTime)
	students.GET("/stats", studentsController.Stats)

	// Admin maintenance endpoints
	if cfg.TaskClient != nil {
		adminController := NewAdminController(cfg.TaskClient)
		router.POST("/api/admin/stats/recount",
			cfg.AuthMiddleware.RequireAuth(),
			cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin),
			adminController.RecountStats)
	}

	return router
}
