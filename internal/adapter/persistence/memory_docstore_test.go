package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivo/cultivo/internal/ports"
)

func TestMemoryDocumentStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	id, err := store.Insert(ctx, "plants", ports.Document{"strain": "ACDC", "room": "veg-1"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(ctx, "plants", id)
	require.NoError(t, err)
	assert.Equal(t, "ACDC", doc["strain"])
	assert.Equal(t, id, doc["id"])

	err = store.Update(ctx, "plants", id, ports.Document{"strain": "ACDC", "room": "veg-2"})
	require.NoError(t, err)

	doc, err = store.Get(ctx, "plants", id)
	require.NoError(t, err)
	assert.Equal(t, "veg-2", doc["room"])

	require.NoError(t, store.Delete(ctx, "plants", id))

	_, err = store.Get(ctx, "plants", id)
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)
	assert.ErrorIs(t, store.Update(ctx, "plants", id, ports.Document{}), ports.ErrDocumentNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "plants", id), ports.ErrDocumentNotFound)
}

func TestMemoryDocumentStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	original := ports.Document{"strain": "ACDC"}
	id, err := store.Insert(ctx, "plants", original)
	require.NoError(t, err)

	// Mutating the inserted map or a returned copy must not leak into the store.
	original["strain"] = "mutated"
	doc, err := store.Get(ctx, "plants", id)
	require.NoError(t, err)
	assert.Equal(t, "ACDC", doc["strain"])

	doc["strain"] = "mutated again"
	doc, err = store.Get(ctx, "plants", id)
	require.NoError(t, err)
	assert.Equal(t, "ACDC", doc["strain"])
}

func TestMemoryDocumentStoreQueryOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Insert(ctx, "readings", ports.Document{
			"room":       "flower-1",
			"recordedAt": base.Add(time.Duration(i) * time.Hour),
			"seq":        i,
		})
		require.NoError(t, err)
	}

	docs, err := store.Query(ctx, "readings", ports.QuerySpec{OrderBy: "recordedAt", Descending: true})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, 2, docs[0]["seq"])
	assert.Equal(t, 0, docs[2]["seq"])

	docs, err = store.Query(ctx, "readings", ports.QuerySpec{OrderBy: "recordedAt", Limit: 2})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 0, docs[0]["seq"])
	assert.Equal(t, 1, docs[1]["seq"])
}

func TestMemoryDocumentStoreCompositeIndexes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	_, err := store.Insert(ctx, "audit_logs", ports.Document{
		"entityType": "PLANT",
		"entityId":   "plant-1",
		"timestamp":  time.Now().UTC(),
	})
	require.NoError(t, err)

	// A single equality filter needs no index.
	docs, err := store.Query(ctx, "audit_logs", ports.QuerySpec{
		Filters: []ports.Filter{{Field: "entityType", Value: "PLANT"}},
	})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	// Filter plus ordering on a different field requires a registered index.
	spec := ports.QuerySpec{
		Filters: []ports.Filter{{Field: "entityType", Value: "PLANT"}},
		OrderBy: "timestamp",
	}
	_, err = store.Query(ctx, "audit_logs", spec)
	assert.ErrorIs(t, err, ports.ErrIndexUnavailable)

	store.RegisterIndex("audit_logs", []string{"entityType"}, "timestamp")
	docs, err = store.Query(ctx, "audit_logs", spec)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	// Two equality filters also require an index, regardless of field order.
	two := ports.QuerySpec{Filters: []ports.Filter{
		{Field: "entityId", Value: "plant-1"},
		{Field: "entityType", Value: "PLANT"},
	}}
	_, err = store.Query(ctx, "audit_logs", two)
	assert.ErrorIs(t, err, ports.ErrIndexUnavailable)

	store.RegisterIndex("audit_logs", []string{"entityType", "entityId"}, "")
	docs, err = store.Query(ctx, "audit_logs", two)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestMemoryDocumentStoreFilterMatching(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	_, err := store.Insert(ctx, "patients", ports.Document{"active": true, "physician": "Dr. Lima"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "patients", ports.Document{"active": false, "physician": "Dr. Lima"})
	require.NoError(t, err)

	docs, err := store.Query(ctx, "patients", ports.QuerySpec{
		Filters: []ports.Filter{{Field: "active", Value: true}},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, true, docs[0]["active"])
}
