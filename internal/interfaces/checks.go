package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/cache"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/collections"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/authors"
	"github.com/mrlokans/bookshelf/internal/database/books"
	collectionsrepo "github.com/mrlokans/bookshelf/internal/database/collections"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Membership store and the identity lookups it depends on
var _ collections.Store = (*collectionsrepo.Repository)(nil)
var _ collections.BookChecker = (*books.Repository)(nil)
var _ collections.AuthorChecker = (*authors.Repository)(nil)

// Catalog stores
var _ catalog.BookStore = (*books.Repository)(nil)
var _ catalog.AuthorStore = (*authors.Repository)(nil)

// UserStore implementations
var _ auth.UserStore = (*users.Repository)(nil)

// =============================================================================
// Cache
// =============================================================================

var _ collections.ViewCache = (*cache.Redis)(nil)
var _ catalog.Invalidator = (*cache.Redis)(nil)
var _ http.Pinger = (*cache.Redis)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ collections.Auditor = (*audit.Service)(nil)
var _ catalog.Auditor = (*audit.Service)(nil)
var _ auth.Auditor = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Authentication
// =============================================================================

var _ auth.TokenValidator = (*auth.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
var _ http.CleanupTrigger = (*scheduler.AuditCleanupScheduler)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)

// =============================================================================
// Health
// =============================================================================

var _ http.Pinger = (*database.Database)(nil)
