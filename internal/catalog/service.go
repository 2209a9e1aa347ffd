// Package catalog manages the books and authors a user owns. Collections
// reference them; deleting one also drops it from every collection.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrNotCredited is returned when removing an author a book does not list.
	ErrNotCredited = fmt.Errorf("author credit %w", ErrNotFound)
	// ErrInvalidReference is returned when crediting an author the requester
	// cannot see.
	ErrInvalidReference = errors.New("author does not exist")
)

type BookStore interface {
	CreateBook(ctx context.Context, book *entities.Book) error
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	GetBooksForUser(ctx context.Context, userID uint) ([]entities.Book, error)
	UpdateBook(ctx context.Context, book *entities.Book) error
	DeleteBook(ctx context.Context, id uint) error
	AddAuthor(ctx context.Context, bookID, authorID uint) (bool, error)
	RemoveAuthor(ctx context.Context, bookID, authorID uint) (bool, error)
	GetAuthorsForBook(ctx context.Context, bookID uint) ([]entities.Author, error)
}

type AuthorStore interface {
	CreateAuthor(ctx context.Context, author *entities.Author) error
	GetAuthorByID(ctx context.Context, id uint) (*entities.Author, error)
	GetAuthorsForUser(ctx context.Context, userID uint) ([]entities.Author, error)
	UpdateAuthor(ctx context.Context, author *entities.Author) error
	DeleteAuthor(ctx context.Context, id uint) error
}

// Invalidator drops cached collection views. Book titles and author names
// appear in those views, so any catalog change makes all of them stale.
type Invalidator interface {
	InvalidateAll(ctx context.Context)
}

type Auditor interface {
	LogCatalog(userID uint, action, entityType string, entityID uint, name string)
}

type BookInput struct {
	Title  string
	Author string
	Genre  string
	Pages  int
	Type   entities.BookType
	Status entities.ReadingStatus
}

type AuthorInput struct {
	Name         string
	Nationality  string
	Bio          string
	ProfileImage string
}

type Service struct {
	books   BookStore
	authors AuthorStore
	cache   Invalidator
	auditor Auditor
}

func NewService(books BookStore, authors AuthorStore, cache Invalidator, auditor Auditor) *Service {
	return &Service{books: books, authors: authors, cache: cache, auditor: auditor}
}

func (s *Service) CreateBook(ctx context.Context, userID uint, in BookInput) (*entities.Book, error) {
	book := &entities.Book{UserID: userID}
	applyBook(book, in)
	if err := s.books.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	s.logCatalog(userID, "book_create", "book", book.ID, book.Title)
	return book, nil
}

// GetBook returns a book owned by userID. Books owned by someone else are
// reported as ErrNotFound.
func (s *Service) GetBook(ctx context.Context, id, userID uint) (*entities.Book, error) {
	book, err := s.books.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load book %d: %w", id, err)
	}
	if book.UserID != userID {
		return nil, ErrNotFound
	}
	return book, nil
}

func (s *Service) ListBooks(ctx context.Context, userID uint) ([]entities.Book, error) {
	books, err := s.books.GetBooksForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

func (s *Service) UpdateBook(ctx context.Context, id, userID uint, in BookInput) (*entities.Book, error) {
	book, err := s.GetBook(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	applyBook(book, in)
	if err := s.books.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to update book %d: %w", id, err)
	}
	s.invalidate(ctx)
	s.logCatalog(userID, "book_update", "book", book.ID, book.Title)
	return book, nil
}

func (s *Service) DeleteBook(ctx context.Context, id, userID uint) error {
	book, err := s.GetBook(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.books.DeleteBook(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}
	s.invalidate(ctx)
	s.logCatalog(userID, "book_delete", "book", id, book.Title)
	return nil
}

func (s *Service) CreateAuthor(ctx context.Context, userID uint, in AuthorInput) (*entities.Author, error) {
	author := &entities.Author{UserID: userID}
	applyAuthor(author, in)
	if err := s.authors.CreateAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	s.logCatalog(userID, "author_create", "author", author.ID, author.Name)
	return author, nil
}

func (s *Service) GetAuthor(ctx context.Context, id, userID uint) (*entities.Author, error) {
	author, err := s.authors.GetAuthorByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load author %d: %w", id, err)
	}
	if author.UserID != userID {
		return nil, ErrNotFound
	}
	return author, nil
}

func (s *Service) ListAuthors(ctx context.Context, userID uint) ([]entities.Author, error) {
	authors, err := s.authors.GetAuthorsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, nil
}

func (s *Service) UpdateAuthor(ctx context.Context, id, userID uint, in AuthorInput) (*entities.Author, error) {
	author, err := s.GetAuthor(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	applyAuthor(author, in)
	if err := s.authors.UpdateAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("failed to update author %d: %w", id, err)
	}
	s.invalidate(ctx)
	s.logCatalog(userID, "author_update", "author", author.ID, author.Name)
	return author, nil
}

func (s *Service) DeleteAuthor(ctx context.Context, id, userID uint) error {
	author, err := s.GetAuthor(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.authors.DeleteAuthor(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete author %d: %w", id, err)
	}
	s.invalidate(ctx)
	s.logCatalog(userID, "author_delete", "author", id, author.Name)
	return nil
}

// AddBookAuthor credits one of the requester's authors on one of their books.
// Crediting the same author again succeeds without a change.
func (s *Service) AddBookAuthor(ctx context.Context, bookID, authorID, userID uint) (bool, error) {
	if _, err := s.GetBook(ctx, bookID, userID); err != nil {
		return false, err
	}
	if _, err := s.GetAuthor(ctx, authorID, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, ErrInvalidReference
		}
		return false, err
	}

	added, err := s.books.AddAuthor(ctx, bookID, authorID)
	if err != nil {
		return false, fmt.Errorf("failed to credit author %d on book %d: %w", authorID, bookID, err)
	}
	if added {
		s.logCatalog(userID, "book_add_author", "book", bookID, fmt.Sprintf("author %d credited", authorID))
	}
	return added, nil
}

func (s *Service) RemoveBookAuthor(ctx context.Context, bookID, authorID, userID uint) error {
	if _, err := s.GetBook(ctx, bookID, userID); err != nil {
		return err
	}
	removed, err := s.books.RemoveAuthor(ctx, bookID, authorID)
	if err != nil {
		return fmt.Errorf("failed to remove author %d from book %d: %w", authorID, bookID, err)
	}
	if !removed {
		return ErrNotCredited
	}
	s.logCatalog(userID, "book_remove_author", "book", bookID, fmt.Sprintf("author %d removed", authorID))
	return nil
}

// ListBookAuthors returns the authors credited on a book, by name.
func (s *Service) ListBookAuthors(ctx context.Context, bookID, userID uint) ([]entities.Author, error) {
	if _, err := s.GetBook(ctx, bookID, userID); err != nil {
		return nil, err
	}
	authors, err := s.books.GetAuthorsForBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors of book %d: %w", bookID, err)
	}
	return authors, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
}

func (s *Service) logCatalog(userID uint, action, entityType string, entityID uint, name string) {
	if s.auditor != nil {
		s.auditor.LogCatalog(userID, action, entityType, entityID, name)
	}
}

func applyBook(book *entities.Book, in BookInput) {
	book.Title = in.Title
	book.Author = in.Author
	book.Genre = in.Genre
	book.Pages = in.Pages
	book.Type = in.Type
	book.Status = in.Status
}

func applyAuthor(author *entities.Author, in AuthorInput) {
	author.Name = in.Name
	author.Nationality = in.Nationality
	author.Bio = in.Bio
	author.ProfileImage = in.ProfileImage
}
