package books

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := database.NewDatabase(config.Database{Driver: config.DriverSQLite, Path: dbPath})
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	return NewRepository(db.DB), db.DB
}

func newBook(userID uint, title string) *entities.Book {
	return &entities.Book{
		UserID: userID,
		Title:  title,
		Author: "Ursula K. Le Guin",
		Genre:  "Fantasy",
		Pages:  250,
		Type:   entities.BookTypePhysical,
		Status: entities.ReadingStatusReading,
	}
}

func TestRepository_CRUD(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	book := newBook(1, "A Wizard of Earthsea")
	require.NoError(t, repo.CreateBook(ctx, book))
	require.NotZero(t, book.ID)

	loaded, err := repo.GetBookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "A Wizard of Earthsea", loaded.Title)

	loaded.Status = entities.ReadingStatusRead
	require.NoError(t, repo.UpdateBook(ctx, loaded))

	reloaded, err := repo.GetBookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReadingStatusRead, reloaded.Status)

	exists, err := repo.BookExists(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.DeleteBook(ctx, book.ID))

	exists, err = repo.BookExists(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, repo.DeleteBook(ctx, book.ID), gorm.ErrRecordNotFound)
	_, err = repo.GetBookByID(ctx, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetBooksForUser(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateBook(ctx, newBook(1, "The Tombs of Atuan")))
	require.NoError(t, repo.CreateBook(ctx, newBook(1, "Tehanu")))
	require.NoError(t, repo.CreateBook(ctx, newBook(2, "The Dispossessed")))

	books, err := repo.GetBooksForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Tehanu", books[0].Title)
	assert.Equal(t, "The Tombs of Atuan", books[1].Title)
}

func TestRepository_DeleteBookRemovesMemberships(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	book := newBook(1, "The Left Hand of Darkness")
	require.NoError(t, repo.CreateBook(ctx, book))

	collection := entities.Collection{UserID: 1, Name: "Hainish"}
	require.NoError(t, db.Create(&collection).Error)
	require.NoError(t, db.Omit("Book").Create(&entities.CollectionBook{
		CollectionID: collection.ID, BookID: book.ID, DisplayOrder: 1,
	}).Error)

	require.NoError(t, repo.DeleteBook(ctx, book.ID))

	var count int64
	db.Model(&entities.CollectionBook{}).Where("book_id = ?", book.ID).Count(&count)
	assert.Zero(t, count)
}

func TestRepository_BookAuthors(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	book := newBook(1, "The Left Hand of Darkness")
	require.NoError(t, repo.CreateBook(ctx, book))
	leGuin := &entities.Author{UserID: 1, Name: "Ursula K. Le Guin"}
	editor := &entities.Author{UserID: 1, Name: "Harold Bloom"}
	require.NoError(t, db.Create(leGuin).Error)
	require.NoError(t, db.Create(editor).Error)

	added, err := repo.AddAuthor(ctx, book.ID, leGuin.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddAuthor(ctx, book.ID, leGuin.ID)
	require.NoError(t, err)
	assert.False(t, added, "second credit is a no-op")

	_, err = repo.AddAuthor(ctx, book.ID, editor.ID)
	require.NoError(t, err)

	authors, err := repo.GetAuthorsForBook(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "Harold Bloom", authors[0].Name)
	assert.Equal(t, "Ursula K. Le Guin", authors[1].Name)

	removed, err := repo.RemoveAuthor(ctx, book.ID, editor.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveAuthor(ctx, book.ID, editor.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, repo.DeleteBook(ctx, book.ID))
	var count int64
	require.NoError(t, db.Model(&entities.BookAuthor{}).Count(&count).Error)
	assert.Zero(t, count)
}
