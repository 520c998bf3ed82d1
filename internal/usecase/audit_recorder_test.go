package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivo/cultivo/internal/domain"
)

func TestAuditRecorderRecordCreate(t *testing.T) {
	ctx := context.Background()
	store := newIndexedStore()
	recorder := NewAuditRecorder(store, testLogger())

	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	recorder.now = func() time.Time { return at }

	recorder.RecordCreate(ctx, testActor, domain.EntityTypePlant, "plant-1", "ACDC (PL-2026-000001)",
		domain.Snapshot{"strain": "ACDC", "room": "veg-1"}, "")

	entries := auditEntries(store)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, domain.AuditActionCreate, entry.Action)
	assert.Equal(t, testActor.UserID, entry.UserID)
	assert.Equal(t, testActor.UserEmail, entry.UserEmail)
	assert.Equal(t, domain.EntityTypePlant, entry.EntityType)
	assert.Equal(t, "plant-1", entry.EntityID)
	assert.Equal(t, "ACDC (PL-2026-000001)", entry.EntityDisplayName)
	assert.Equal(t, at, entry.Timestamp)
	assert.Empty(t, entry.PreviousValue)
	assert.JSONEq(t, `{"strain":"ACDC","room":"veg-1"}`, entry.NewValue)
}

func TestAuditRecorderRecordUpdateChangedFields(t *testing.T) {
	ctx := context.Background()
	store := newIndexedStore()
	recorder := NewAuditRecorder(store, testLogger())

	previous := domain.Snapshot{"strain": "ACDC", "room": "veg-1", "updatedAt": "2026-01-01T00:00:00Z"}
	next := domain.Snapshot{"strain": "ACDC", "room": "flower-1", "updatedAt": "2026-02-01T00:00:00Z"}

	recorder.RecordUpdate(ctx, testActor, domain.EntityTypePlant, "plant-1", "ACDC", previous, next, "moved")

	entries := auditEntries(store)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, domain.AuditActionUpdate, entry.Action)
	assert.Equal(t, []string{"room"}, entry.ChangedFields)
	assert.Equal(t, "moved", entry.Notes)
	assert.NotEmpty(t, entry.PreviousValue)
	assert.NotEmpty(t, entry.NewValue)
}

func TestAuditRecorderSuppressesNoopUpdate(t *testing.T) {
	ctx := context.Background()
	store := newIndexedStore()
	recorder := NewAuditRecorder(store, testLogger())

	// Only bookkeeping fields differ, so no entry is written.
	previous := domain.Snapshot{"room": "veg-1", "updatedAt": "2026-01-01T00:00:00Z"}
	next := domain.Snapshot{"room": "veg-1", "updatedAt": "2026-02-01T00:00:00Z"}

	recorder.RecordUpdate(ctx, testActor, domain.EntityTypePlant, "plant-1", "ACDC", previous, next, "")

	assert.Empty(t, auditEntries(store))
}

func TestAuditRecorderRecordDelete(t *testing.T) {
	ctx := context.Background()
	store := newIndexedStore()
	recorder := NewAuditRecorder(store, testLogger())

	recorder.RecordDelete(ctx, testActor, domain.EntityTypePatient, "patient-1", "Maria Souza (REG-0001)",
		domain.Snapshot{"registryNumber": "REG-0001"}, "registry cleanup")

	entries := auditEntries(store)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, domain.AuditActionDelete, entry.Action)
	assert.JSONEq(t, `{"registryNumber":"REG-0001"}`, entry.PreviousValue)
	assert.Empty(t, entry.NewValue)
	assert.Equal(t, "registry cleanup", entry.Notes)
}

func TestAuditRecorderDropsEntryWithoutActor(t *testing.T) {
	ctx := context.Background()
	store := newIndexedStore()
	recorder := NewAuditRecorder(store, testLogger())

	recorder.RecordCreate(ctx, domain.Actor{}, domain.EntityTypePlant, "plant-1", "ACDC", domain.Snapshot{}, "")
	recorder.RecordCreate(ctx, domain.Actor{UserID: "user-1"}, domain.EntityTypePlant, "plant-1", "ACDC", domain.Snapshot{}, "")

	assert.Empty(t, auditEntries(store))
}

func TestAuditRecorderDropsEntryWithoutEntityCoordinates(t *testing.T) {
	ctx := context.Background()
	store := newIndexedStore()
	recorder := NewAuditRecorder(store, testLogger())

	recorder.RecordCreate(ctx, testActor, "", "plant-1", "ACDC", domain.Snapshot{}, "")
	recorder.RecordCreate(ctx, testActor, domain.EntityTypePlant, "", "ACDC", domain.Snapshot{}, "")

	assert.Empty(t, auditEntries(store))
}

func TestAuditRecorderSwallowsStoreFailure(t *testing.T) {
	ctx := context.Background()
	backing := newIndexedStore()
	store := &flakyStore{DocumentStore: backing, insertErr: errors.New("store down")}
	recorder := NewAuditRecorder(store, testLogger())

	// Must not panic or surface the failure to the caller.
	recorder.RecordCreate(ctx, testActor, domain.EntityTypePlant, "plant-1", "ACDC", domain.Snapshot{"strain": "ACDC"}, "")

	assert.Empty(t, auditEntries(backing))
}

func TestAuditRecorderUnserializableSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newIndexedStore()
	recorder := NewAuditRecorder(store, testLogger())

	recorder.RecordCreate(ctx, testActor, domain.EntityTypePlant, "plant-1", "ACDC",
		domain.Snapshot{"broken": func() {}}, "")

	entries := auditEntries(store)
	require.Len(t, entries, 1)
	assert.Equal(t, "[unserializable]", entries[0].NewValue)
}
