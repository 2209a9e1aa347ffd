// Package interfaces documents the core abstractions used throughout the application.
//
// The interfaces themselves live next to their consumers. This package only
// holds compile-time checks (checks.go) that the concrete types wired together
// in internal/entrypoint still satisfy them.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - collections.Store: Membership rows and collection CRUD (internal/collections/service.go)
//   - collections.BookChecker, collections.AuthorChecker: Identity lookups used
//     before a membership is created (internal/collections/service.go)
//   - catalog.BookStore, catalog.AuthorStore: Book and author CRUD (internal/catalog/service.go)
//   - auth.UserStore: User accounts, API token hashes and lockout state (internal/auth/service.go)
//
// ## Cache Interfaces
//
//   - collections.ViewCache: Cached collection read models (internal/collections/service.go)
//   - catalog.Invalidator: Drops every cached view after a catalog change (internal/catalog/service.go)
//
// Both are implemented by cache.Redis. When REDIS_ADDR is empty no cache is
// wired and the services read straight from the database.
//
// ## Audit Interfaces
//
//   - collections.Auditor, catalog.Auditor, auth.Auditor: Asynchronous event
//     recording, all implemented by audit.Service
//   - tasks.AuditEventCleaner: Retention cleanup run by the task queue
//
// ## Background Task Interfaces
//
//   - scheduler.TaskEnqueuer: Enqueue tasks on the backlite queue (internal/scheduler/audit_cleanup.go)
//   - http.CleanupTrigger: Run the audit cleanup on demand (internal/http/tasks.go)
//   - http.TaskStatusReader: Look up a task by id (internal/http/tasks.go)
//
// ## HTTP Interfaces
//
//   - http.Pinger: Health probes for the database and cache (internal/http/health.go)
//   - auth.TokenValidator: Bearer token lookup for CSRF exemption (internal/auth/csrf.go)
//
// # Adding a New Store
//
//  1. Declare the interface in the consuming package
//  2. Implement it in internal/database/<name>/repository.go
//  3. Add a compile-time check to checks.go
//  4. Wire the implementation in internal/entrypoint/entrypoint.go
package interfaces
