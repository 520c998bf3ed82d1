package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
)

var secondActor = domain.Actor{UserID: "user-2", UserEmail: "dispenser@cultivo.local"}

// seedAuditLog writes a fixed history into the store: three plant entries,
// one harvest entry and one patient entry at one-hour intervals.
func seedAuditLog(t *testing.T, store ports.DocumentStore) time.Time {
	t.Helper()
	recorder := NewAuditRecorder(store, testLogger())

	base := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	step := 0
	recorder.now = func() time.Time {
		ts := base.Add(time.Duration(step) * time.Hour)
		step++
		return ts
	}

	ctx := context.Background()
	recorder.RecordCreate(ctx, testActor, domain.EntityTypePlant, "plant-1", "ACDC",
		domain.Snapshot{"strain": "ACDC", "room": "veg-1"}, "")
	recorder.RecordUpdate(ctx, testActor, domain.EntityTypePlant, "plant-1", "ACDC",
		domain.Snapshot{"strain": "ACDC", "room": "veg-1"},
		domain.Snapshot{"strain": "ACDC", "room": "flower-1"}, "")
	recorder.RecordCreate(ctx, secondActor, domain.EntityTypeHarvest, "harvest-1", "HV-2026-000001",
		domain.Snapshot{"plantId": "plant-1"}, "")
	recorder.RecordCreate(ctx, secondActor, domain.EntityTypePatient, "patient-1", "Maria Souza",
		domain.Snapshot{"registryNumber": "REG-0001"}, "")
	recorder.RecordDelete(ctx, testActor, domain.EntityTypePlant, "plant-2", "Harlequin",
		domain.Snapshot{"strain": "Harlequin"}, "")
	return base
}

func TestAuditQueryByEntityNewestFirst(t *testing.T) {
	store := newIndexedStore()
	seedAuditLog(t, store)
	service := NewAuditQueryService(store, testLogger())

	entries, err := service.ByEntity(context.Background(), domain.EntityTypePlant, "plant-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionUpdate, entries[0].Action)
	assert.Equal(t, domain.AuditActionCreate, entries[1].Action)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
}

func TestAuditQueryDegradedMatchesIdealPath(t *testing.T) {
	// Same data in two stores; only one has the composite indexes registered.
	indexed := newIndexedStore()
	bare := newBareStore()
	seedAuditLog(t, indexed)
	seedAuditLog(t, bare)

	ideal := NewAuditQueryService(indexed, testLogger())
	degraded := NewAuditQueryService(bare, testLogger())

	ctx := context.Background()
	fromIdeal, err := ideal.ByEntity(ctx, domain.EntityTypePlant, "plant-1")
	require.NoError(t, err)
	fromDegraded, err := degraded.ByEntity(ctx, domain.EntityTypePlant, "plant-1")
	require.NoError(t, err)

	require.Len(t, fromDegraded, len(fromIdeal))
	for i := range fromIdeal {
		assert.Equal(t, fromIdeal[i].Action, fromDegraded[i].Action)
		assert.Equal(t, fromIdeal[i].EntityID, fromDegraded[i].EntityID)
		assert.Equal(t, fromIdeal[i].UserID, fromDegraded[i].UserID)
		assert.Equal(t, fromIdeal[i].Timestamp, fromDegraded[i].Timestamp)
	}
}

func TestAuditQueryNonIndexErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := &flakyStore{DocumentStore: newIndexedStore(), queryErr: storeErr}
	service := NewAuditQueryService(store, testLogger())

	_, err := service.ByEntity(context.Background(), domain.EntityTypePlant, "plant-1")
	assert.ErrorIs(t, err, storeErr)
}

func TestAuditQueryByActor(t *testing.T) {
	store := newIndexedStore()
	seedAuditLog(t, store)
	service := NewAuditQueryService(store, testLogger())

	entries, err := service.ByActor(context.Background(), secondActor.UserID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, secondActor.UserID, e.UserID)
	}
}

func TestAuditQueryRecentRespectsLimit(t *testing.T) {
	store := newIndexedStore()
	seedAuditLog(t, store)
	service := NewAuditQueryService(store, testLogger())

	entries, err := service.Recent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
	assert.True(t, entries[1].Timestamp.After(entries[2].Timestamp))
}

func TestAuditQuerySearchDateBounds(t *testing.T) {
	store := newIndexedStore()
	base := seedAuditLog(t, store)
	service := NewAuditQueryService(store, testLogger())

	// Bounds are inclusive and cover the second and third entries only.
	start := base.Add(1 * time.Hour)
	end := base.Add(2 * time.Hour)
	entries, err := service.Search(context.Background(), domain.AuditFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.EntityTypeHarvest, entries[0].EntityType)
	assert.Equal(t, domain.EntityTypePlant, entries[1].EntityType)
}

func TestAuditQuerySearchCombinedFilters(t *testing.T) {
	store := newIndexedStore()
	seedAuditLog(t, store)
	service := NewAuditQueryService(store, testLogger())

	entries, err := service.Search(context.Background(), domain.AuditFilter{
		UserID:     testActor.UserID,
		EntityType: domain.EntityTypePlant,
		Action:     domain.AuditActionDelete,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "plant-2", entries[0].EntityID)
}

func TestAuditQueryByEntityTypes(t *testing.T) {
	store := newIndexedStore()
	seedAuditLog(t, store)
	service := NewAuditQueryService(store, testLogger())

	entries, err := service.ByEntityTypes(context.Background(),
		[]string{domain.EntityTypeHarvest, domain.EntityTypePatient}, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.EntityTypePatient, entries[0].EntityType)
	assert.Equal(t, domain.EntityTypeHarvest, entries[1].EntityType)
}
