package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

// CreateWasteRequest represents the request to log a waste disposal
type CreateWasteRequest struct {
	SourceType  string                `json:"sourceType"`
	SourceID    string                `json:"sourceId"`
	WeightGrams float64               `json:"weightGrams"`
	Method      domain.DisposalMethod `json:"method"`
	Witness     string                `json:"witness"`
	Reason      string                `json:"reason,omitempty"`
}

// WasteUseCase handles waste disposal records. Disposals are append-only;
// there is no update path.
type WasteUseCase struct {
	store ports.DocumentStore
	audit ports.AuditRecorder
	log   logger.Logger
}

// NewWasteUseCase creates a waste use case
func NewWasteUseCase(store ports.DocumentStore, audit ports.AuditRecorder, log logger.Logger) *WasteUseCase {
	return &WasteUseCase{store: store, audit: audit, log: log}
}

// CreateWasteRecord logs a witnessed disposal
func (uc *WasteUseCase) CreateWasteRecord(ctx context.Context, actor domain.Actor, req CreateWasteRequest) (*domain.WasteRecord, error) {
	record := domain.NewWasteRecord(req.SourceType, req.SourceID, req.WeightGrams, req.Method, req.Witness, req.Reason)
	if err := record.Validate(); err != nil {
		return nil, err
	}

	doc, err := entityDocument(record)
	if err != nil {
		return nil, err
	}
	id, err := uc.store.Insert(ctx, wasteCollection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create waste record: %w", err)
	}
	record.ID = id

	created := fetchSnapshot(ctx, uc.store, wasteCollection, id)
	uc.audit.RecordCreate(ctx, actor, domain.EntityTypeWaste, id, record.DisplayName(), created, req.Reason)

	return record, nil
}

// GetWasteRecord retrieves a waste record by ID
func (uc *WasteUseCase) GetWasteRecord(ctx context.Context, id string) (*domain.WasteRecord, error) {
	doc, err := uc.store.Get(ctx, wasteCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrWasteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get waste record: %w", err)
	}
	var record domain.WasteRecord
	if err := decodeEntity(doc, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListWasteRecords retrieves waste records matching the filter, newest first
func (uc *WasteUseCase) ListWasteRecords(ctx context.Context, filter domain.WasteFilter) ([]*domain.WasteRecord, error) {
	spec := ports.QuerySpec{OrderBy: "createdAt", Descending: true, Limit: normalizeLimit(filter.Limit)}
	if filter.SourceType != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "sourceType", Value: *filter.SourceType})
	}

	docs, err := uc.store.Query(ctx, wasteCollection, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list waste records: %w", err)
	}
	records := make([]*domain.WasteRecord, 0, len(docs))
	for _, doc := range docs {
		var record domain.WasteRecord
		if err := decodeEntity(doc, &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}
