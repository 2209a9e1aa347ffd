// Package collections provides database operations for collections and their
// book and author memberships.
//
// # Usage
//
//	repo := collections.NewRepository(db)
//	added, order, err := repo.AddBook(ctx, collectionID, bookID)
package collections

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// errAlreadyMember rolls back an add transaction whose insert was ignored.
var errAlreadyMember = errors.New("already a member")

// Repository handles collection and membership database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new collections repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateCollection inserts a new collection.
func (r *Repository) CreateCollection(ctx context.Context, collection *entities.Collection) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(collection).Error
}

// UpdateCollection saves the editable fields of a collection.
func (r *Repository) UpdateCollection(ctx context.Context, collection *entities.Collection) error {
	return r.db.WithContext(ctx).Model(collection).
		Select("name", "description", "profile_image", "updated_at").
		Updates(collection).Error
}

// DeleteCollection removes a collection together with all of its memberships.
// Returns gorm.ErrRecordNotFound if the collection does not exist.
func (r *Repository) DeleteCollection(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&entities.CollectionBook{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", id).Delete(&entities.CollectionAuthor{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Collection{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CollectionExists reports whether a collection with the given ID exists.
func (r *Repository) CollectionExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Collection{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// GetCollectionOwner returns the owning user of a collection, or
// gorm.ErrRecordNotFound.
func (r *Repository) GetCollectionOwner(ctx context.Context, id uint) (uint, error) {
	var collection entities.Collection
	err := r.db.WithContext(ctx).Select("id", "user_id").First(&collection, id).Error
	if err != nil {
		return 0, err
	}
	return collection.UserID, nil
}

// GetCollectionWithMembers loads a collection with its books ordered by
// (display_order, book_id) and its authors.
func (r *Repository) GetCollectionWithMembers(ctx context.Context, id uint) (*entities.Collection, error) {
	var collection entities.Collection
	err := r.withMembers(r.db.WithContext(ctx)).First(&collection, id).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// GetCollectionsForUser returns the user's collections, newest first, each
// with its members loaded.
func (r *Repository) GetCollectionsForUser(ctx context.Context, userID uint) ([]entities.Collection, error) {
	var collections []entities.Collection
	err := r.withMembers(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&collections).Error
	return collections, err
}

func (r *Repository) withMembers(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, book_id ASC")
		}).
		Preload("Books.Book").
		Preload("Authors", func(db *gorm.DB) *gorm.DB {
			return db.Order("author_id ASC")
		}).
		Preload("Authors.Author")
}

// AddBook appends a book to a collection unless it is already a member.
//
// The transaction bumps the collection's next_book_order first, which takes
// the row lock (Postgres) or is the first write under the immediate write
// lock (SQLite), so concurrent appends to one collection are serialized
// before any order is read. The new order is max(counter, highest existing
// order + 1), which keeps appends last even after a reorder raised orders
// above the counter.
//
// Returns added=false with a nil error when the membership already exists;
// nothing is changed in that case. Returns gorm.ErrRecordNotFound when the
// collection does not exist.
func (r *Repository) AddBook(ctx context.Context, collectionID, bookID uint) (bool, int, error) {
	var order int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bump := tx.Model(&entities.Collection{}).
			Where("id = ?", collectionID).
			UpdateColumn("next_book_order", gorm.Expr("next_book_order + 1"))
		if bump.Error != nil {
			return bump.Error
		}
		if bump.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var counter int
		if err := tx.Model(&entities.Collection{}).
			Where("id = ?", collectionID).
			Select("next_book_order").
			Scan(&counter).Error; err != nil {
			return err
		}

		var highest int
		if err := tx.Model(&entities.CollectionBook{}).
			Where("collection_id = ?", collectionID).
			Select("COALESCE(MAX(display_order), 0)").
			Scan(&highest).Error; err != nil {
			return err
		}

		order = counter
		if highest >= order {
			order = highest + 1
			if err := tx.Model(&entities.Collection{}).
				Where("id = ?", collectionID).
				UpdateColumn("next_book_order", order).Error; err != nil {
				return err
			}
		}

		link := entities.CollectionBook{
			CollectionID: collectionID,
			BookID:       bookID,
			DisplayOrder: order,
		}
		insert := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection_id"}, {Name: "book_id"}},
			DoNothing: true,
		}).Create(&link)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			return errAlreadyMember
		}
		return nil
	})

	if errors.Is(err, errAlreadyMember) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, order, nil
}

// RemoveBook deletes a book membership. Orders of the remaining books are
// left untouched. Returns false if the book was not a member.
func (r *Repository) RemoveBook(ctx context.Context, collectionID, bookID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("collection_id = ? AND book_id = ?", collectionID, bookID).
		Delete(&entities.CollectionBook{})
	return result.RowsAffected > 0, result.Error
}

// AddAuthor links an author to a collection unless already linked.
func (r *Repository) AddAuthor(ctx context.Context, collectionID, authorID uint) (bool, error) {
	link := entities.CollectionAuthor{CollectionID: collectionID, AuthorID: authorID}
	result := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection_id"}, {Name: "author_id"}},
		DoNothing: true,
	}).Create(&link)
	return result.RowsAffected > 0, result.Error
}

// RemoveAuthor deletes an author membership. Returns false if the author was
// not linked.
func (r *Repository) RemoveAuthor(ctx context.Context, collectionID, authorID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("collection_id = ? AND author_id = ?", collectionID, authorID).
		Delete(&entities.CollectionAuthor{})
	return result.RowsAffected > 0, result.Error
}

// ReorderBooks sets display orders for books of a collection in a single
// transaction. Entries for books that are not members are skipped; no
// membership is ever created here. Returns the number of memberships updated.
func (r *Repository) ReorderBooks(ctx context.Context, collectionID uint, orders []entities.BookOrder) (int64, error) {
	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Touch the collection row so a concurrent AddBook cannot read the
		// highest order while this reorder is in flight.
		lock := tx.Model(&entities.Collection{}).
			Where("id = ?", collectionID).
			UpdateColumn("next_book_order", gorm.Expr("next_book_order"))
		if lock.Error != nil {
			return lock.Error
		}
		if lock.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		for _, o := range orders {
			result := tx.Model(&entities.CollectionBook{}).
				Where("collection_id = ? AND book_id = ?", collectionID, o.BookID).
				UpdateColumn("display_order", o.DisplayOrder)
			if result.Error != nil {
				return result.Error
			}
			updated += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
