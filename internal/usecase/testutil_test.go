package usecase

import (
	"context"

	"github.com/cultivo/cultivo/internal/adapter/persistence"
	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

var testActor = domain.Actor{UserID: "user-1", UserEmail: "grower@cultivo.local"}

func testLogger() logger.Logger {
	return logger.New(logger.Config{Level: "panic", Format: "text", ServiceName: "test"})
}

// newIndexedStore returns a memory store with the audit composite indexes a
// deployment would register, so queries take the server-side path.
func newIndexedStore() *persistence.MemoryDocumentStore {
	store := persistence.NewMemoryDocumentStore()
	store.RegisterIndex(auditCollection, []string{auditFieldEntityID, auditFieldEntityType}, auditFieldTimestamp)
	store.RegisterIndex(auditCollection, []string{auditFieldUserID}, auditFieldTimestamp)
	store.RegisterIndex(auditCollection, []string{auditFieldEntityType}, auditFieldTimestamp)
	return store
}

// newBareStore returns a memory store with no composite indexes, forcing the
// audit query service onto its degraded path.
func newBareStore() *persistence.MemoryDocumentStore {
	return persistence.NewMemoryDocumentStore()
}

// flakyStore wraps a DocumentStore and fails selected operations.
type flakyStore struct {
	ports.DocumentStore
	insertErr error
	queryErr  error
}

func (s *flakyStore) Insert(ctx context.Context, collection string, doc ports.Document) (string, error) {
	if s.insertErr != nil {
		return "", s.insertErr
	}
	return s.DocumentStore.Insert(ctx, collection, doc)
}

func (s *flakyStore) Query(ctx context.Context, collection string, spec ports.QuerySpec) ([]ports.Document, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.DocumentStore.Query(ctx, collection, spec)
}

// auditEntries reads every audit document in the store without filters.
func auditEntries(store ports.DocumentStore) []*domain.AuditEntry {
	docs, err := store.Query(context.Background(), auditCollection, ports.QuerySpec{})
	if err != nil {
		return nil
	}
	entries := make([]*domain.AuditEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, documentAuditEntry(doc))
	}
	return entries
}
