package domain

import "time"

// AuditAction identifies the kind of mutation an audit entry records.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// Entity type tags used across the audit log.
const (
	EntityTypePlant        = "plant"
	EntityTypeHarvest      = "harvest"
	EntityTypePatient      = "patient"
	EntityTypeDistribution = "distribution"
	EntityTypeExtract      = "extract"
	EntityTypeDocument     = "document"
	EntityTypeWaste        = "waste"
	EntityTypeEnvironment  = "environment"
	EntityTypeUser         = "user"
)

// Actor is the identity on whose behalf a mutation was performed.
type Actor struct {
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
}

// Valid reports whether both identity fields are present.
func (a Actor) Valid() bool {
	return a.UserID != "" && a.UserEmail != ""
}

// AuditEntry is one immutable row of the append-only audit log.
// It is never updated or deleted once written.
type AuditEntry struct {
	ID                string      `json:"id"`
	UserID            string      `json:"userId"`
	UserEmail         string      `json:"userEmail"`
	Action            AuditAction `json:"action"`
	EntityType        string      `json:"entityType"`
	EntityID          string      `json:"entityId"`
	EntityDisplayName string      `json:"entityDisplayName,omitempty"`
	PreviousValue     string      `json:"previousValue,omitempty"`
	NewValue          string      `json:"newValue,omitempty"`
	ChangedFields     []string    `json:"changedFields,omitempty"`
	Timestamp         time.Time   `json:"timestamp"`
	Notes             string      `json:"notes,omitempty"`
}

// AuditFilter narrows audit queries. All set fields must match (logical AND);
// StartDate and EndDate bound the timestamp inclusively.
type AuditFilter struct {
	UserID     string
	EntityType string
	Action     AuditAction
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
}

// Matches reports whether the entry satisfies every set filter field.
func (f AuditFilter) Matches(e *AuditEntry) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.StartDate != nil && e.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.Timestamp.After(*f.EndDate) {
		return false
	}
	return true
}
