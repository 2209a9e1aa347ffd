// Package authors provides database operations for the author catalog.
package authors

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateAuthor(ctx context.Context, author *entities.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

func (r *Repository) GetAuthorByID(ctx context.Context, id uint) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.WithContext(ctx).First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// GetAuthorsForUser returns the authors a user created, ordered by name.
func (r *Repository) GetAuthorsForUser(ctx context.Context, userID uint) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC, id ASC").Find(&authors).Error
	return authors, err
}

func (r *Repository) UpdateAuthor(ctx context.Context, author *entities.Author) error {
	return r.db.WithContext(ctx).Save(author).Error
}

// DeleteAuthor removes an author, its book credits and its collection
// memberships.
// Returns gorm.ErrRecordNotFound if the author does not exist.
func (r *Repository) DeleteAuthor(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("author_id = ?", id).Delete(&entities.CollectionAuthor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&entities.BookAuthor{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Author{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AuthorExists reports whether an author with the given ID exists.
func (r *Repository) AuthorExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Author{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
