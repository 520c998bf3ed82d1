package usecase

import (
	"time"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
)

// Audit document field names. These match the AuditEntry JSON tags so entries
// round-trip through any DocumentStore implementation.
const (
	auditFieldUserID        = "userId"
	auditFieldUserEmail     = "userEmail"
	auditFieldAction        = "action"
	auditFieldEntityType    = "entityType"
	auditFieldEntityID      = "entityId"
	auditFieldDisplayName   = "entityDisplayName"
	auditFieldPreviousValue = "previousValue"
	auditFieldNewValue      = "newValue"
	auditFieldChangedFields = "changedFields"
	auditFieldTimestamp     = "timestamp"
	auditFieldNotes         = "notes"
)

func auditEntryDocument(entry domain.AuditEntry) ports.Document {
	doc := ports.Document{
		auditFieldUserID:     entry.UserID,
		auditFieldUserEmail:  entry.UserEmail,
		auditFieldAction:     string(entry.Action),
		auditFieldEntityType: entry.EntityType,
		auditFieldEntityID:   entry.EntityID,
		auditFieldTimestamp:  entry.Timestamp,
	}
	if entry.EntityDisplayName != "" {
		doc[auditFieldDisplayName] = entry.EntityDisplayName
	}
	if entry.PreviousValue != "" {
		doc[auditFieldPreviousValue] = entry.PreviousValue
	}
	if entry.NewValue != "" {
		doc[auditFieldNewValue] = entry.NewValue
	}
	if len(entry.ChangedFields) > 0 {
		doc[auditFieldChangedFields] = entry.ChangedFields
	}
	if entry.Notes != "" {
		doc[auditFieldNotes] = entry.Notes
	}
	return doc
}

func documentAuditEntry(doc ports.Document) *domain.AuditEntry {
	entry := &domain.AuditEntry{
		ID:                docString(doc, "id"),
		UserID:            docString(doc, auditFieldUserID),
		UserEmail:         docString(doc, auditFieldUserEmail),
		Action:            domain.AuditAction(docString(doc, auditFieldAction)),
		EntityType:        docString(doc, auditFieldEntityType),
		EntityID:          docString(doc, auditFieldEntityID),
		EntityDisplayName: docString(doc, auditFieldDisplayName),
		PreviousValue:     docString(doc, auditFieldPreviousValue),
		NewValue:          docString(doc, auditFieldNewValue),
		Notes:             docString(doc, auditFieldNotes),
		Timestamp:         docTime(doc, auditFieldTimestamp),
	}
	switch fields := doc[auditFieldChangedFields].(type) {
	case []string:
		entry.ChangedFields = fields
	case []interface{}:
		for _, f := range fields {
			if s, ok := f.(string); ok {
				entry.ChangedFields = append(entry.ChangedFields, s)
			}
		}
	}
	return entry
}

func docString(doc ports.Document, field string) string {
	s, _ := doc[field].(string)
	return s
}

// docTime tolerates both time.Time values (memory store) and RFC3339 strings
// (JSON-decoded documents from the Postgres store).
func docTime(doc ports.Document, field string) time.Time {
	switch t := doc[field].(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}
