// Package collections implements curated collections: ownership checks,
// idempotent membership changes and explicit book ordering on top of the
// collections repository.
package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const maxNameLength = 255

// Store persists collections and their memberships.
// Implemented by database/collections.Repository.
type Store interface {
	CreateCollection(ctx context.Context, collection *entities.Collection) error
	UpdateCollection(ctx context.Context, collection *entities.Collection) error
	DeleteCollection(ctx context.Context, id uint) error
	GetCollectionOwner(ctx context.Context, id uint) (uint, error)
	GetCollectionWithMembers(ctx context.Context, id uint) (*entities.Collection, error)
	GetCollectionsForUser(ctx context.Context, userID uint) ([]entities.Collection, error)
	AddBook(ctx context.Context, collectionID, bookID uint) (bool, int, error)
	RemoveBook(ctx context.Context, collectionID, bookID uint) (bool, error)
	AddAuthor(ctx context.Context, collectionID, authorID uint) (bool, error)
	RemoveAuthor(ctx context.Context, collectionID, authorID uint) (bool, error)
	ReorderBooks(ctx context.Context, collectionID uint, orders []entities.BookOrder) (int64, error)
}

// BookChecker answers existence questions about catalog books.
type BookChecker interface {
	BookExists(ctx context.Context, id uint) (bool, error)
}

// AuthorChecker answers existence questions about catalog authors.
type AuthorChecker interface {
	AuthorExists(ctx context.Context, id uint) (bool, error)
}

// ViewCache stores rendered collection views. Implementations must tolerate
// backend failures silently; a miss is always safe.
type ViewCache interface {
	// GetView returns a key even on a miss; the caller stores the freshly
	// loaded view under that key so a concurrent invalidation wins.
	GetView(ctx context.Context, collectionID uint) (view *View, key string, ok bool)
	SetView(ctx context.Context, key string, view *View)
	InvalidateCollection(ctx context.Context, collectionID uint)
}

// Auditor records successful mutations.
type Auditor interface {
	LogCollection(userID uint, action string, collectionID uint, name string)
	LogMembership(userID uint, action string, collectionID uint, entityType string, entityID uint)
}

// Input carries the editable fields of a collection.
type Input struct {
	Name         string
	Description  string
	ProfileImage string
}

// Service enforces ownership over collections and their memberships.
type Service struct {
	store   Store
	books   BookChecker
	authors AuthorChecker
	cache   ViewCache
	auditor Auditor
}

// Option configures optional collaborators of a Service.
type Option func(*Service)

// WithCache enables the view cache.
func WithCache(cache ViewCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithAuditor records every successful mutation.
func WithAuditor(auditor Auditor) Option {
	return func(s *Service) { s.auditor = auditor }
}

// NewService builds a Service over the given stores. Cache and auditor are off
// unless enabled through opts.
func NewService(store Store, books BookChecker, authors AuthorChecker, opts ...Option) *Service {
	s := &Service{store: store, books: books, authors: authors}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// authorize resolves the collection owner and compares it to the requester.
func (s *Service) authorize(ctx context.Context, collectionID, requesterID uint) error {
	owner, err := s.store.GetCollectionOwner(ctx, collectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load collection %d: %w", collectionID, err)
	}
	if owner != requesterID {
		return ErrDenied
	}
	return nil
}

// AddBook appends a book to the end of a collection. Adding a book that is
// already a member succeeds without changing anything; added reports which
// case happened.
func (s *Service) AddBook(ctx context.Context, collectionID, bookID, requesterID uint) (bool, error) {
	if err := s.authorize(ctx, collectionID, requesterID); err != nil {
		return false, err
	}

	exists, err := s.books.BookExists(ctx, bookID)
	if err != nil {
		return false, fmt.Errorf("failed to check book %d: %w", bookID, err)
	}
	if !exists {
		return false, ErrInvalidReference
	}

	added, _, err := s.store.AddBook(ctx, collectionID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to add book %d to collection %d: %w", bookID, collectionID, err)
	}

	if added {
		s.changed(ctx, collectionID)
		s.logMembership(requesterID, "collection_add_book", collectionID, "book", bookID)
	}
	return added, nil
}

// RemoveBook removes a book from a collection. The remaining books keep
// their display orders.
func (s *Service) RemoveBook(ctx context.Context, collectionID, bookID, requesterID uint) error {
	if err := s.authorize(ctx, collectionID, requesterID); err != nil {
		return err
	}

	removed, err := s.store.RemoveBook(ctx, collectionID, bookID)
	if err != nil {
		return fmt.Errorf("failed to remove book %d from collection %d: %w", bookID, collectionID, err)
	}
	if !removed {
		return ErrNotMember
	}

	s.changed(ctx, collectionID)
	s.logMembership(requesterID, "collection_remove_book", collectionID, "book", bookID)
	return nil
}

// AddAuthor links an author to a collection. Idempotent like AddBook.
func (s *Service) AddAuthor(ctx context.Context, collectionID, authorID, requesterID uint) (bool, error) {
	if err := s.authorize(ctx, collectionID, requesterID); err != nil {
		return false, err
	}

	exists, err := s.authors.AuthorExists(ctx, authorID)
	if err != nil {
		return false, fmt.Errorf("failed to check author %d: %w", authorID, err)
	}
	if !exists {
		return false, ErrInvalidReference
	}

	added, err := s.store.AddAuthor(ctx, collectionID, authorID)
	if err != nil {
		return false, fmt.Errorf("failed to add author %d to collection %d: %w", authorID, collectionID, err)
	}

	if added {
		s.changed(ctx, collectionID)
		s.logMembership(requesterID, "collection_add_author", collectionID, "author", authorID)
	}
	return added, nil
}

// RemoveAuthor unlinks an author from the collection. It returns ErrNotMember
// when the author is not linked.
func (s *Service) RemoveAuthor(ctx context.Context, collectionID, authorID, requesterID uint) error {
	if err := s.authorize(ctx, collectionID, requesterID); err != nil {
		return err
	}

	removed, err := s.store.RemoveAuthor(ctx, collectionID, authorID)
	if err != nil {
		return fmt.Errorf("failed to remove author %d from collection %d: %w", authorID, collectionID, err)
	}
	if !removed {
		return ErrNotMember
	}

	s.changed(ctx, collectionID)
	s.logMembership(requesterID, "collection_remove_author", collectionID, "author", authorID)
	return nil
}

// ReorderBooks assigns the given display orders in one transaction. Entries
// naming books that are not members are ignored. Ties are allowed and are
// broken by book id when reading.
func (s *Service) ReorderBooks(ctx context.Context, collectionID, requesterID uint, orders []entities.BookOrder) error {
	if len(orders) == 0 {
		return fmt.Errorf("%w: at least one book order is required", ErrInvalidInput)
	}
	seen := make(map[uint]struct{}, len(orders))
	for _, o := range orders {
		if o.BookID == 0 {
			return fmt.Errorf("%w: book id is required", ErrInvalidInput)
		}
		if _, dup := seen[o.BookID]; dup {
			return fmt.Errorf("%w: book %d listed more than once", ErrInvalidInput, o.BookID)
		}
		seen[o.BookID] = struct{}{}
	}

	if err := s.authorize(ctx, collectionID, requesterID); err != nil {
		return err
	}

	if _, err := s.store.ReorderBooks(ctx, collectionID, orders); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to reorder collection %d: %w", collectionID, err)
	}

	s.changed(ctx, collectionID)
	s.logMembership(requesterID, "collection_reorder_books", collectionID, "collection", collectionID)
	return nil
}

// GetCollection returns the collection with its ordered books and sorted authors.
func (s *Service) GetCollection(ctx context.Context, collectionID, requesterID uint) (*View, error) {
	var cacheKey string
	if s.cache != nil {
		view, key, ok := s.cache.GetView(ctx, collectionID)
		if ok {
			if view.UserID != requesterID {
				return nil, ErrDenied
			}
			return view, nil
		}
		cacheKey = key
	}

	collection, err := s.store.GetCollectionWithMembers(ctx, collectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load collection %d: %w", collectionID, err)
	}
	if collection.UserID != requesterID {
		return nil, ErrDenied
	}

	view := newView(collection)
	if s.cache != nil {
		s.cache.SetView(ctx, cacheKey, view)
	}
	return view, nil
}

// ListCollections returns the requester's collections, newest first.
func (s *Service) ListCollections(ctx context.Context, requesterID uint) ([]View, error) {
	list, err := s.store.GetCollectionsForUser(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	views := make([]View, 0, len(list))
	for i := range list {
		views = append(views, *newView(&list[i]))
	}
	return views, nil
}

// CreateCollection creates an empty collection owned by requesterID.
func (s *Service) CreateCollection(ctx context.Context, requesterID uint, in Input) (*View, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}

	collection := &entities.Collection{
		UserID:       requesterID,
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		ProfileImage: strings.TrimSpace(in.ProfileImage),
	}
	if err := s.store.CreateCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	if s.auditor != nil {
		s.auditor.LogCollection(requesterID, "collection_create", collection.ID, collection.Name)
	}
	return newView(collection), nil
}

// UpdateCollection replaces the editable fields of a collection the requester
// owns.
func (s *Service) UpdateCollection(ctx context.Context, collectionID, requesterID uint, in Input) (*View, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}

	collection, err := s.store.GetCollectionWithMembers(ctx, collectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load collection %d: %w", collectionID, err)
	}
	if collection.UserID != requesterID {
		return nil, ErrDenied
	}

	collection.Name = name
	collection.Description = strings.TrimSpace(in.Description)
	collection.ProfileImage = strings.TrimSpace(in.ProfileImage)
	if err := s.store.UpdateCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to update collection %d: %w", collectionID, err)
	}

	s.changed(ctx, collectionID)
	if s.auditor != nil {
		s.auditor.LogCollection(requesterID, "collection_update", collectionID, collection.Name)
	}
	return newView(collection), nil
}

// DeleteCollection removes the collection and all of its memberships.
func (s *Service) DeleteCollection(ctx context.Context, collectionID, requesterID uint) error {
	if err := s.authorize(ctx, collectionID, requesterID); err != nil {
		return err
	}

	if err := s.store.DeleteCollection(ctx, collectionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete collection %d: %w", collectionID, err)
	}

	s.changed(ctx, collectionID)
	if s.auditor != nil {
		s.auditor.LogCollection(requesterID, "collection_delete", collectionID, "")
	}
	return nil
}

func (s *Service) changed(ctx context.Context, collectionID uint) {
	if s.cache != nil {
		s.cache.InvalidateCollection(ctx, collectionID)
	}
}

func (s *Service) logMembership(userID uint, action string, collectionID uint, entityType string, entityID uint) {
	if s.auditor != nil {
		s.auditor.LogMembership(userID, action, collectionID, entityType, entityID)
	}
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxNameLength)
	}
	return name, nil
}
