package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	validation.UseJSONFieldNames()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS first so preflight requests never reach auth
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", auth.CSRFTokenHeader},
			ExposeHeaders:    []string{auth.CSRFTokenHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware(31536000))

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.TokenValidator))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	health := NewHealthController(cfg.Database, cfg.Cache, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	NewCollectionsController(cfg.Collections).RegisterRoutes(router)
	NewCatalogController(cfg.Catalog).RegisterRoutes(router)

	if cfg.AuditService != nil {
		auditController := NewAuditController(cfg.AuditService)
		router.GET("/api/audit", auditController.GetAuditEvents)
	}

	if cfg.CleanupTrigger != nil && cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.CleanupTrigger, cfg.TaskStatus)
		router.GET("/api/admin/audit/cleanup", tasksController.GetAuditCleanup)
		router.POST("/api/admin/audit/cleanup", tasksController.RunAuditCleanup)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
