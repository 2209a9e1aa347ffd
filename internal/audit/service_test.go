package audit

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	auditRepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open("./test_audit_service_"+t.Name()+".db"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		removeTestDB(t)
	})

	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))

	return NewService(auditRepo.NewRepository(db)), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventCollection,
		Action:      "collection_create",
		Description: "Test event",
		Status:      entities.AuditStatusSuccess,
	}

	require.NoError(t, svc.Log(event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, "collection_create", saved.Action)
}

func TestService_LogMembership(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogMembership(1, "collection_add_book", 5, "book", 12)
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "collection_add_book").First(&event).Error)
	assert.Equal(t, entities.AuditEventMembership, event.EventType)
	require.NotNil(t, event.CollectionID)
	assert.Equal(t, uint(5), *event.CollectionID)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(12), *event.EntityID)
	assert.Contains(t, event.Metadata, `"book_id":12`)
}

func TestService_LogCollection(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogCollection(1, "collection_create", 3, "Summer reading")
	svc.LogCollection(1, "collection_delete", 3, "")
	svc.Wait()

	var events []entities.AuditEvent
	require.NoError(t, db.Order("id").Find(&events).Error)
	require.Len(t, events, 2)

	descriptions := []string{events[0].Description, events[1].Description}
	assert.Contains(t, descriptions, "Collection created: Summer reading")
	assert.Contains(t, descriptions, "Collection deleted")
}

func TestService_LogCatalogAndAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogCatalog(1, "book_update", "book", 9, "Dune")
	svc.LogAuth(1, "login", "127.0.0.1", strings.Repeat("x", 600), false)
	svc.Wait()

	var catalog entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventCatalog).First(&catalog).Error)
	assert.Equal(t, "book updated: Dune", catalog.Description)

	var auth entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventAuth).First(&auth).Error)
	assert.Equal(t, entities.AuditStatusFailed, auth.Status)
	assert.Len(t, auth.UserAgent, 500)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Log(&entities.AuditEvent{UserID: 1, Action: "old", CreatedAt: time.Now().Add(-10 * 24 * time.Hour)}))
	require.NoError(t, svc.Log(&entities.AuditEvent{UserID: 1, Action: "recent"}))

	deleted, err := svc.DeleteOldEvents(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := svc.GetEvents(ctx, auditRepo.Filter{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "recent", events[0].Action)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))

	// "ł" is two bytes; a byte cut at 7 would land inside the last one
	long := strings.Repeat("ł", 300)
	got := truncate(long, 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "łłł...", got)
	assert.LessOrEqual(t, len(truncate(long, 500)), 500)
	assert.True(t, utf8.ValidString(truncate(long, 500)))
}

func removeTestDB(t *testing.T) {
	_ = os.Remove("./test_audit_service_" + t.Name() + ".db")
}
