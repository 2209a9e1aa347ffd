// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(ctx, 123)
package books

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a new book.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBooksForUser returns a user's books ordered by title.
func (r *Repository) GetBooksForUser(ctx context.Context, userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("title ASC, id ASC").Find(&books).Error
	return books, err
}

// UpdateBook saves every field of the book.
func (r *Repository) UpdateBook(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// DeleteBook removes a book, its author credits and every collection
// membership pointing at it.
// Returns gorm.ErrRecordNotFound if the book does not exist.
func (r *Repository) DeleteBook(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&entities.CollectionBook{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.BookAuthor{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// BookExists reports whether a book with the given ID exists.
func (r *Repository) BookExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// AddAuthor credits an author on a book. Crediting the same author twice is a
// no-op; added reports whether a row was inserted.
func (r *Repository) AddAuthor(ctx context.Context, bookID, authorID uint) (bool, error) {
	link := entities.BookAuthor{BookID: bookID, AuthorID: authorID}
	result := r.db.WithContext(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "book_id"}, {Name: "author_id"}}, DoNothing: true}).
		Create(&link)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RemoveAuthor drops an author credit. removed is false when the pair did
// not exist.
func (r *Repository) RemoveAuthor(ctx context.Context, bookID, authorID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("book_id = ? AND author_id = ?", bookID, authorID).
		Delete(&entities.BookAuthor{})
	return result.RowsAffected > 0, result.Error
}

// GetAuthorsForBook returns the authors credited on a book, by name.
func (r *Repository) GetAuthorsForBook(ctx context.Context, bookID uint) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.WithContext(ctx).
		Joins("JOIN book_authors ON book_authors.author_id = authors.id").
		Where("book_authors.book_id = ?", bookID).
		Order("authors.name ASC, authors.id ASC").
		Find(&authors).Error
	return authors, err
}
