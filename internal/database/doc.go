// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (SQLite or Postgres), migrations
//	├── books/           # Book catalog CRUD
//	├── authors/         # Author catalog CRUD
//	├── collections/     # Collections and their book/author memberships
//	├── users/           # User accounts, credentials, API tokens
//	└── audit/           # Audit trail storage and retention
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	collectionsRepo := collections.NewRepository(db.DB)
//
//	added, order, err := collectionsRepo.AddBook(ctx, collectionID, bookID)
//
// # Membership invariants
//
// collection_books and collection_authors carry a unique index on their
// (collection, member) pair, so a pair can exist at most once no matter how
// many writers race. Appending a book bumps collections.next_book_order in the
// same transaction as the insert; on SQLite the connection is opened with
// _txlock=immediate so that transaction holds the write lock from BEGIN.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register its entities in the models list of database.go
//  5. Add a compile-time interface check in internal/interfaces/checks.go
package database
