package http

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/collections"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. Optional parts are left nil.
type RouterConfig struct {
	// Core services
	Collections *collections.Service
	Catalog     *catalog.Service

	// Audit trail (optional)
	AuditService *audit.Service

	// Health probes; Cache is nil when the view cache is disabled
	Database Pinger
	Cache    Pinger

	// Background tasks (optional)
	CleanupTrigger CleanupTrigger
	TaskStatus     TaskStatusReader

	// Authentication, all nil in "none" mode
	AuthMiddleware *auth.Middleware
	AuthController *auth.AuthController
	SessionManager *auth.SessionManager
	TokenValidator auth.TokenValidator
	CSRFSecret     []byte
	SecureCookies  bool

	// Browser origins allowed to call the API; empty disables CORS
	AllowedOrigins []string

	// Application info
	Version string
}
