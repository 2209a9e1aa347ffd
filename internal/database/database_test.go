package database

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := NewDatabase(config.Database{Driver: config.DriverSQLite, Path: dbPath})
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "./app.db?"+sqlitePragmas, SQLiteDSN("./app.db"))
	assert.Equal(t, "file:app.db?cache=shared&"+sqlitePragmas, SQLiteDSN("file:app.db?cache=shared"))
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(config.Database{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNewDatabase_PostgresRequiresDSN(t *testing.T) {
	_, err := NewDatabase(config.Database{Driver: config.DriverPostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN")
}

func TestNewDatabase_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, config.DriverSQLite, db.Driver)

	for _, model := range models {
		assert.True(t, db.DB.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, db.DB.Migrator().HasIndex(&entities.CollectionBook{}, "idx_collection_book"))
	assert.True(t, db.DB.Migrator().HasIndex(&entities.CollectionAuthor{}, "idx_collection_author"))
}

func TestNewDatabase_EnforcesForeignKeys(t *testing.T) {
	db := setupTestDB(t)

	var enabled int
	require.NoError(t, db.DB.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	link := entities.CollectionBook{CollectionID: 999, BookID: 999, DisplayOrder: 1}
	err := db.DB.Omit("Book").Create(&link).Error
	assert.Error(t, err, "membership rows must reference existing parents")
}
