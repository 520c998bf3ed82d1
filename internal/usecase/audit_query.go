package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

const (
	defaultAuditLimit  = 50
	defaultSearchLimit = 100
)

// AuditQueryService reconstructs entity history from the audit log. All
// methods return entries sorted by timestamp descending.
//
// When the store cannot serve a compound filter and sort server-side
// (ErrIndexUnavailable), the query silently degrades: the most selective
// single filter runs server-side and the rest is applied in-process. Both
// paths produce identical results; only latency differs. Any other store
// failure propagates to the caller.
type AuditQueryService struct {
	store ports.DocumentStore
	log   logger.Logger
}

// NewAuditQueryService creates a query service over the given store.
func NewAuditQueryService(store ports.DocumentStore, log logger.Logger) *AuditQueryService {
	return &AuditQueryService{store: store, log: log}
}

// ByEntity returns the full history of one entity, newest first.
func (s *AuditQueryService) ByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditEntry, error) {
	return s.run(ctx, auditQuery{entityType: entityType, entityID: entityID})
}

// ByActor returns the most recent entries produced by one user.
func (s *AuditQueryService) ByActor(ctx context.Context, userID string, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return s.run(ctx, auditQuery{userID: userID, limit: limit})
}

// Recent returns the most recent entries across all actors and entities.
func (s *AuditQueryService) Recent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return s.run(ctx, auditQuery{limit: limit})
}

// Search returns entries matching every set filter field, with inclusive
// date bounds on the timestamp.
func (s *AuditQueryService) Search(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return s.run(ctx, auditQuery{
		userID:     filter.UserID,
		entityType: filter.EntityType,
		action:     filter.Action,
		start:      filter.StartDate,
		end:        filter.EndDate,
		limit:      limit,
	})
}

// ByEntityTypes returns recent entries whose entity type is in the given set.
func (s *AuditQueryService) ByEntityTypes(ctx context.Context, entityTypes []string, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	q := auditQuery{limit: limit}
	if len(entityTypes) == 1 {
		q.entityType = entityTypes[0]
	} else {
		q.entityTypes = entityTypes
	}
	return s.run(ctx, q)
}

type auditQuery struct {
	userID      string
	entityType  string
	entityID    string
	action      domain.AuditAction
	entityTypes []string
	start       *time.Time
	end         *time.Time
	limit       int
}

// needsResidual reports whether some conditions cannot be expressed as
// server-side equality filters and must be applied in-process.
func (q auditQuery) needsResidual() bool {
	return q.start != nil || q.end != nil || len(q.entityTypes) > 0
}

// serverFilters lists the equality filters in selectivity order.
func (q auditQuery) serverFilters() []ports.Filter {
	var filters []ports.Filter
	if q.entityID != "" {
		filters = append(filters, ports.Filter{Field: auditFieldEntityID, Value: q.entityID})
	}
	if q.userID != "" {
		filters = append(filters, ports.Filter{Field: auditFieldUserID, Value: q.userID})
	}
	if q.entityType != "" {
		filters = append(filters, ports.Filter{Field: auditFieldEntityType, Value: q.entityType})
	}
	if q.action != "" {
		filters = append(filters, ports.Filter{Field: auditFieldAction, Value: string(q.action)})
	}
	return filters
}

func (q auditQuery) matches(e *domain.AuditEntry) bool {
	if q.userID != "" && e.UserID != q.userID {
		return false
	}
	if q.entityType != "" && e.EntityType != q.entityType {
		return false
	}
	if q.entityID != "" && e.EntityID != q.entityID {
		return false
	}
	if q.action != "" && e.Action != q.action {
		return false
	}
	if len(q.entityTypes) > 0 {
		found := false
		for _, t := range q.entityTypes {
			if e.EntityType == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.start != nil && e.Timestamp.Before(*q.start) {
		return false
	}
	if q.end != nil && e.Timestamp.After(*q.end) {
		return false
	}
	return true
}

func (s *AuditQueryService) run(ctx context.Context, q auditQuery) ([]*domain.AuditEntry, error) {
	spec := ports.QuerySpec{
		Filters:    q.serverFilters(),
		OrderBy:    auditFieldTimestamp,
		Descending: true,
	}
	// A server-side cap is only safe when no condition remains to apply
	// in-process; otherwise it could cut entries the residual filter keeps.
	if !q.needsResidual() {
		spec.Limit = q.limit
	}

	docs, err := s.store.Query(ctx, auditCollection, spec)
	if errors.Is(err, ports.ErrIndexUnavailable) {
		docs, err = s.runDegraded(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}

	entries := make([]*domain.AuditEntry, 0, len(docs))
	for _, doc := range docs {
		entry := documentAuditEntry(doc)
		if q.matches(entry) {
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if q.limit > 0 && len(entries) > q.limit {
		entries = entries[:q.limit]
	}
	return entries, nil
}

// runDegraded retries with the most selective single equality filter and no
// ordering; run applies the remaining filters, sort and limit in-process.
func (s *AuditQueryService) runDegraded(ctx context.Context, q auditQuery) ([]ports.Document, error) {
	spec := ports.QuerySpec{}
	if filters := q.serverFilters(); len(filters) > 0 {
		spec.Filters = filters[:1]
	}

	s.log.Warn(ctx, "audit query degraded to in-process filtering", map[string]interface{}{
		"entity_type": q.entityType,
		"entity_id":   q.entityID,
		"user_id":     q.userID,
	})
	return s.store.Query(ctx, auditCollection, spec)
}
