package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

// CreateDocumentRequest represents the request to file a document
type CreateDocumentRequest struct {
	Title     string                  `json:"title"`
	Category  domain.DocumentCategory `json:"category"`
	Reference string                  `json:"reference,omitempty"`
	IssuedAt  time.Time               `json:"issuedAt"`
	ExpiresAt *time.Time              `json:"expiresAt,omitempty"`
	Notes     string                  `json:"notes,omitempty"`
}

// UpdateDocumentRequest represents a partial document update
type UpdateDocumentRequest struct {
	Title     *string    `json:"title,omitempty"`
	Reference *string    `json:"reference,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

// DocumentUseCase handles institutional document records
type DocumentUseCase struct {
	store ports.DocumentStore
	audit ports.AuditRecorder
	log   logger.Logger
	now   func() time.Time
}

// NewDocumentUseCase creates a document use case
func NewDocumentUseCase(store ports.DocumentStore, audit ports.AuditRecorder, log logger.Logger) *DocumentUseCase {
	return &DocumentUseCase{store: store, audit: audit, log: log, now: time.Now}
}

// CreateDocument files a new institutional document
func (uc *DocumentUseCase) CreateDocument(ctx context.Context, actor domain.Actor, req CreateDocumentRequest) (*domain.InstitutionalDocument, error) {
	record := domain.NewInstitutionalDocument(req.Title, req.Category, req.Reference, req.IssuedAt, req.ExpiresAt)
	record.Notes = req.Notes
	if err := record.Validate(); err != nil {
		return nil, err
	}

	doc, err := entityDocument(record)
	if err != nil {
		return nil, err
	}
	id, err := uc.store.Insert(ctx, documentCollection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	record.ID = id

	created := fetchSnapshot(ctx, uc.store, documentCollection, id)
	uc.audit.RecordCreate(ctx, actor, domain.EntityTypeDocument, id, record.Title, created, "")

	return record, nil
}

// GetDocument retrieves a document by ID
func (uc *DocumentUseCase) GetDocument(ctx context.Context, id string) (*domain.InstitutionalDocument, error) {
	doc, err := uc.store.Get(ctx, documentCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrDocumentRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	var record domain.InstitutionalDocument
	if err := decodeEntity(doc, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListDocuments retrieves documents matching the filter, newest first
func (uc *DocumentUseCase) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]*domain.InstitutionalDocument, error) {
	spec := ports.QuerySpec{OrderBy: "createdAt", Descending: true, Limit: normalizeLimit(filter.Limit)}
	if filter.Category != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "category", Value: string(*filter.Category)})
	}

	docs, err := uc.store.Query(ctx, documentCollection, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	records := make([]*domain.InstitutionalDocument, 0, len(docs))
	for _, doc := range docs {
		var record domain.InstitutionalDocument
		if err := decodeEntity(doc, &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}

// ExpiringDocuments lists documents expiring within the given number of days
func (uc *DocumentUseCase) ExpiringDocuments(ctx context.Context, withinDays int) ([]*domain.InstitutionalDocument, error) {
	records, err := uc.ListDocuments(ctx, domain.DocumentFilter{Limit: 200})
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	cutoff := now.AddDate(0, 0, withinDays)

	expiring := make([]*domain.InstitutionalDocument, 0)
	for _, record := range records {
		if record.ExpiresAt == nil {
			continue
		}
		if record.ExpiresAt.After(now) && record.ExpiresAt.Before(cutoff) {
			expiring = append(expiring, record)
		}
	}
	return expiring, nil
}

// UpdateDocument applies a partial update to a document
func (uc *DocumentUseCase) UpdateDocument(ctx context.Context, actor domain.Actor, id string, req UpdateDocumentRequest) (*domain.InstitutionalDocument, error) {
	before, err := uc.store.Get(ctx, documentCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrDocumentRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var record domain.InstitutionalDocument
	if err := decodeEntity(before, &record); err != nil {
		return nil, err
	}
	if req.Title != nil && *req.Title != "" {
		record.Title = *req.Title
	}
	if req.Reference != nil {
		record.Reference = *req.Reference
	}
	if req.ExpiresAt != nil {
		record.ExpiresAt = req.ExpiresAt
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	record.UpdatedAt = uc.now().UTC()

	doc, err := entityDocument(&record)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Update(ctx, documentCollection, id, doc); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	after := fetchSnapshot(ctx, uc.store, documentCollection, id)
	uc.audit.RecordUpdate(ctx, actor, domain.EntityTypeDocument, id, record.Title, snapshot(before), after, "")

	return &record, nil
}

// DeleteDocument removes a document record
func (uc *DocumentUseCase) DeleteDocument(ctx context.Context, actor domain.Actor, id string) error {
	before, err := uc.store.Get(ctx, documentCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return domain.ErrDocumentRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	var record domain.InstitutionalDocument
	if err := decodeEntity(before, &record); err != nil {
		return err
	}

	if err := uc.store.Delete(ctx, documentCollection, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	uc.audit.RecordDelete(ctx, actor, domain.EntityTypeDocument, id, record.Title, snapshot(before), "")
	return nil
}
