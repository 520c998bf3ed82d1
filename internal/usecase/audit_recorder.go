package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

const auditCollection = "audit_logs"

// serializationFallback replaces a snapshot that could not be serialized.
const serializationFallback = "[unserializable]"

// AuditRecorder persists immutable audit entries as a side effect of domain
// mutations. Every record call is best-effort: a failed audit write is logged
// and swallowed so it can never block or reverse the primary mutation it
// accompanies. No reads are performed here; callers supply the before and
// after snapshots.
type AuditRecorder struct {
	store ports.DocumentStore
	log   logger.Logger
	now   func() time.Time
}

// NewAuditRecorder creates an audit recorder writing to the given store.
func NewAuditRecorder(store ports.DocumentStore, log logger.Logger) *AuditRecorder {
	return &AuditRecorder{store: store, log: log, now: time.Now}
}

// RecordCreate writes an audit entry for a newly created entity.
func (r *AuditRecorder) RecordCreate(ctx context.Context, actor domain.Actor, entityType, entityID, displayName string, snapshot domain.Snapshot, notes string) {
	r.persist(ctx, domain.AuditEntry{
		UserID:            actor.UserID,
		UserEmail:         actor.UserEmail,
		Action:            domain.AuditActionCreate,
		EntityType:        entityType,
		EntityID:          entityID,
		EntityDisplayName: displayName,
		NewValue:          serializeSnapshot(snapshot),
		Notes:             notes,
	})
}

// RecordUpdate diffs the two snapshots and writes an audit entry carrying the
// changed field set. An update that changed nothing is suppressed silently.
func (r *AuditRecorder) RecordUpdate(ctx context.Context, actor domain.Actor, entityType, entityID, displayName string, previous, next domain.Snapshot, notes string) {
	changed := domain.DetectChanges(previous, next)
	if len(changed) == 0 {
		r.log.Debug(ctx, "audit update suppressed, no fields changed", map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
		})
		return
	}
	r.persist(ctx, domain.AuditEntry{
		UserID:            actor.UserID,
		UserEmail:         actor.UserEmail,
		Action:            domain.AuditActionUpdate,
		EntityType:        entityType,
		EntityID:          entityID,
		EntityDisplayName: displayName,
		PreviousValue:     serializeSnapshot(previous),
		NewValue:          serializeSnapshot(next),
		ChangedFields:     changed,
		Notes:             notes,
	})
}

// RecordDelete writes an audit entry preserving the deleted entity's snapshot.
func (r *AuditRecorder) RecordDelete(ctx context.Context, actor domain.Actor, entityType, entityID, displayName string, snapshot domain.Snapshot, notes string) {
	r.persist(ctx, domain.AuditEntry{
		UserID:            actor.UserID,
		UserEmail:         actor.UserEmail,
		Action:            domain.AuditActionDelete,
		EntityType:        entityType,
		EntityID:          entityID,
		EntityDisplayName: displayName,
		PreviousValue:     serializeSnapshot(snapshot),
		Notes:             notes,
	})
}

func (r *AuditRecorder) persist(ctx context.Context, entry domain.AuditEntry) {
	fields := map[string]interface{}{
		"entity_type": entry.EntityType,
		"entity_id":   entry.EntityID,
		"action":      entry.Action,
	}

	if entry.UserID == "" || entry.UserEmail == "" {
		r.log.Error(ctx, "audit entry dropped, actor identity missing", nil, fields)
		return
	}
	if entry.EntityType == "" || entry.EntityID == "" {
		r.log.Error(ctx, "audit entry dropped, entity coordinates missing", nil, fields)
		return
	}

	entry.Timestamp = r.now().UTC()
	if _, err := r.store.Insert(ctx, auditCollection, auditEntryDocument(entry)); err != nil {
		r.log.Error(ctx, "audit write failed", err, fields)
		return
	}
}

// serializeSnapshot renders a snapshot as stable JSON text. Snapshots that
// cannot be serialized are replaced with a sentinel placeholder instead of
// failing the record call.
func serializeSnapshot(snapshot domain.Snapshot) string {
	if snapshot == nil {
		return ""
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return serializationFallback
	}
	return string(raw)
}
