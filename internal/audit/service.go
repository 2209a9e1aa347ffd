package audit

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.Log(event); err != nil {
			log.Printf("[AUDIT] Failed to log %s event: %v", event.Action, err)
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogCollection records a collection being created, renamed or deleted.
func (s *Service) LogCollection(userID uint, action string, collectionID uint, name string) {
	description := "Collection " + actionVerb(action)
	if name != "" {
		description += ": " + name
	}

	s.LogAsync(&entities.AuditEvent{
		UserID:       userID,
		EventType:    entities.AuditEventCollection,
		Action:       action,
		Description:  truncate(description, 500),
		CollectionID: &collectionID,
		EntityType:   "collection",
		EntityID:     &collectionID,
		Status:       entities.AuditStatusSuccess,
	})
}

// LogMembership records a book or author entering or leaving a collection,
// or a reorder of its books.
func (s *Service) LogMembership(userID uint, action string, collectionID uint, entityType string, entityID uint) {
	event := &entities.AuditEvent{
		UserID:       userID,
		EventType:    entities.AuditEventMembership,
		Action:       action,
		Description:  "Collection membership changed: " + action,
		CollectionID: &collectionID,
		EntityType:   entityType,
		EntityID:     &entityID,
		Status:       entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"collection_id": collectionID,
		entityType + "_id": entityID,
	}
	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogCatalog records a change to a book or author.
func (s *Service) LogCatalog(userID uint, action, entityType string, entityID uint, name string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventCatalog,
		Action:      action,
		Description: truncate(entityType+" "+actionVerb(action)+": "+name, 500),
		EntityType:  entityType,
		EntityID:    &entityID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, filter audit.Filter) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, filter)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func actionVerb(action string) string {
	for i := len(action) - 1; i >= 0; i-- {
		if action[i] == '_' {
			switch action[i+1:] {
			case "create":
				return "created"
			case "update":
				return "updated"
			case "delete":
				return "deleted"
			}
			break
		}
	}
	return "changed"
}

// truncate shortens s to at most maxLen bytes without splitting a UTF-8
// sequence.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
