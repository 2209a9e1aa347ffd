package cache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/collections"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	authorsRepo "github.com/mrlokans/bookshelf/internal/database/authors"
	booksRepo "github.com/mrlokans/bookshelf/internal/database/books"
	collectionsRepo "github.com/mrlokans/bookshelf/internal/database/collections"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// interleavingStore runs a write right after the first collection load, the
// way a concurrent request would commit between a reader's load and its
// cache store.
type interleavingStore struct {
	*collectionsRepo.Repository
	afterLoad func()
}

func (s *interleavingStore) GetCollectionWithMembers(ctx context.Context, id uint) (*entities.Collection, error) {
	c, err := s.Repository.GetCollectionWithMembers(ctx, id)
	if s.afterLoad != nil {
		fn := s.afterLoad
		s.afterLoad = nil
		fn()
	}
	return c, err
}

func TestCollectionService_WriteDuringLoadIsNotMaskedByCache(t *testing.T) {
	dbPath := "./test_cache_service_" + t.Name() + ".db"
	db, err := database.NewDatabase(config.Database{Driver: config.DriverSQLite, Path: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	ctx := context.Background()
	require.NoError(t, db.DB.Create(&entities.Collection{ID: 1, UserID: 1, Name: "Favourites"}).Error)
	require.NoError(t, db.DB.Create(&entities.Book{
		ID: 7, UserID: 1, Title: "Solaris", Author: "Stanisław Lem", Pages: 204,
		Type: entities.BookTypePhysical, Status: entities.ReadingStatusRead,
	}).Error)

	c, _ := setupCache(t)
	store := &interleavingStore{Repository: collectionsRepo.NewRepository(db.DB)}
	svc := collections.NewService(store, booksRepo.NewRepository(db.DB), authorsRepo.NewRepository(db.DB),
		collections.WithCache(c))

	store.afterLoad = func() {
		_, err := svc.AddBook(ctx, 1, 7, 1)
		require.NoError(t, err)
	}

	first, err := svc.GetCollection(ctx, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, first.BookCount, "the first read loaded before the add committed")

	second, err := svc.GetCollection(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, second.BookCount)
	assert.Equal(t, []uint{7}, second.BookIDs())
}
