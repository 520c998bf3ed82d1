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

// CreateExtractRequest represents the request to record an extraction run
type CreateExtractRequest struct {
	HarvestID  string                  `json:"harvestId"`
	Method     domain.ExtractionMethod `json:"method"`
	InputGrams float64                 `json:"inputGrams"`
	YieldGrams float64                 `json:"yieldGrams"`
	Notes      string                  `json:"notes,omitempty"`
}

// UpdateExtractRequest represents a partial extract update
type UpdateExtractRequest struct {
	YieldGrams *float64 `json:"yieldGrams,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

// ExtractUseCase handles extraction records
type ExtractUseCase struct {
	store   ports.DocumentStore
	audit   ports.AuditRecorder
	control *ControlNumberGenerator
	log     logger.Logger
}

// NewExtractUseCase creates an extract use case
func NewExtractUseCase(store ports.DocumentStore, audit ports.AuditRecorder, control *ControlNumberGenerator, log logger.Logger) *ExtractUseCase {
	return &ExtractUseCase{store: store, audit: audit, control: control, log: log}
}

// CreateExtract records an extraction run from a completed harvest
func (uc *ExtractUseCase) CreateExtract(ctx context.Context, actor domain.Actor, req CreateExtractRequest) (*domain.Extract, error) {
	harvestDoc, err := uc.store.Get(ctx, harvestCollection, req.HarvestID)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrHarvestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get harvest: %w", err)
	}
	var harvest domain.Harvest
	if err := decodeEntity(harvestDoc, &harvest); err != nil {
		return nil, err
	}
	if harvest.Status != domain.HarvestStatusComplete {
		return nil, domain.ErrHarvestNotComplete
	}

	extract := domain.NewExtract(req.HarvestID, req.Method, req.InputGrams, req.YieldGrams)
	extract.Notes = req.Notes
	if err := extract.Validate(); err != nil {
		return nil, err
	}

	controlNumber, err := uc.control.Next(ctx, ControlPrefixExtract)
	if err != nil {
		return nil, fmt.Errorf("failed to assign control number: %w", err)
	}
	extract.ControlNumber = controlNumber

	doc, err := entityDocument(extract)
	if err != nil {
		return nil, err
	}
	id, err := uc.store.Insert(ctx, extractCollection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create extract: %w", err)
	}
	extract.ID = id

	created := fetchSnapshot(ctx, uc.store, extractCollection, id)
	uc.audit.RecordCreate(ctx, actor, domain.EntityTypeExtract, id, extract.DisplayName(), created, "")

	return extract, nil
}

// GetExtract retrieves an extract by ID
func (uc *ExtractUseCase) GetExtract(ctx context.Context, id string) (*domain.Extract, error) {
	doc, err := uc.store.Get(ctx, extractCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrExtractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extract: %w", err)
	}
	var extract domain.Extract
	if err := decodeEntity(doc, &extract); err != nil {
		return nil, err
	}
	return &extract, nil
}

// ListExtracts retrieves extracts matching the filter, newest first
func (uc *ExtractUseCase) ListExtracts(ctx context.Context, filter domain.ExtractFilter) ([]*domain.Extract, error) {
	spec := ports.QuerySpec{OrderBy: "createdAt", Descending: true, Limit: normalizeLimit(filter.Limit)}
	if filter.HarvestID != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "harvestId", Value: *filter.HarvestID})
	}
	if filter.Method != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "method", Value: string(*filter.Method)})
	}

	docs, err := uc.store.Query(ctx, extractCollection, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list extracts: %w", err)
	}
	extracts := make([]*domain.Extract, 0, len(docs))
	for _, doc := range docs {
		var extract domain.Extract
		if err := decodeEntity(doc, &extract); err != nil {
			return nil, err
		}
		extracts = append(extracts, &extract)
	}
	return extracts, nil
}

// UpdateExtract applies a partial update to an extract
func (uc *ExtractUseCase) UpdateExtract(ctx context.Context, actor domain.Actor, id string, req UpdateExtractRequest) (*domain.Extract, error) {
	before, err := uc.store.Get(ctx, extractCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrExtractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extract: %w", err)
	}

	var extract domain.Extract
	if err := decodeEntity(before, &extract); err != nil {
		return nil, err
	}
	if req.YieldGrams != nil {
		extract.YieldGrams = *req.YieldGrams
	}
	if req.Notes != nil {
		extract.Notes = *req.Notes
	}
	if err := extract.Validate(); err != nil {
		return nil, err
	}
	extract.UpdatedAt = time.Now().UTC()

	doc, err := entityDocument(&extract)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Update(ctx, extractCollection, id, doc); err != nil {
		return nil, fmt.Errorf("failed to update extract: %w", err)
	}

	after := fetchSnapshot(ctx, uc.store, extractCollection, id)
	uc.audit.RecordUpdate(ctx, actor, domain.EntityTypeExtract, id, extract.DisplayName(), snapshot(before), after, "")

	return &extract, nil
}

// DeleteExtract removes an extract record
func (uc *ExtractUseCase) DeleteExtract(ctx context.Context, actor domain.Actor, id string) error {
	before, err := uc.store.Get(ctx, extractCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return domain.ErrExtractNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get extract: %w", err)
	}

	var extract domain.Extract
	if err := decodeEntity(before, &extract); err != nil {
		return err
	}

	if err := uc.store.Delete(ctx, extractCollection, id); err != nil {
		return fmt.Errorf("failed to delete extract: %w", err)
	}

	uc.audit.RecordDelete(ctx, actor, domain.EntityTypeExtract, id, extract.DisplayName(), snapshot(before), "")
	return nil
}
