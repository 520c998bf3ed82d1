package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

// CreateDistributionRequest represents the request to record a distribution
type CreateDistributionRequest struct {
	PatientID     string             `json:"patientId"`
	ProductType   domain.ProductType `json:"productType"`
	ProductID     string             `json:"productId"`
	QuantityGrams float64            `json:"quantityGrams"`
	Notes         string             `json:"notes,omitempty"`
}

// DistributionUseCase handles patient distribution records
type DistributionUseCase struct {
	store ports.DocumentStore
	audit ports.AuditRecorder
	log   logger.Logger
}

// NewDistributionUseCase creates a distribution use case
func NewDistributionUseCase(store ports.DocumentStore, audit ports.AuditRecorder, log logger.Logger) *DistributionUseCase {
	return &DistributionUseCase{store: store, audit: audit, log: log}
}

// CreateDistribution records a product handoff to an active patient
func (uc *DistributionUseCase) CreateDistribution(ctx context.Context, actor domain.Actor, req CreateDistributionRequest) (*domain.Distribution, error) {
	dist := domain.NewDistribution(req.PatientID, req.ProductType, req.ProductID, req.QuantityGrams, actor.UserID)
	dist.Notes = req.Notes
	if err := dist.Validate(); err != nil {
		return nil, err
	}

	patientDoc, err := uc.store.Get(ctx, patientCollection, req.PatientID)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	var patient domain.Patient
	if err := decodeEntity(patientDoc, &patient); err != nil {
		return nil, err
	}
	if !patient.Active {
		return nil, domain.ErrPatientInactive
	}
	if req.QuantityGrams > patient.AllotmentGrams {
		return nil, domain.ErrAllotmentExceeded
	}

	doc, err := entityDocument(dist)
	if err != nil {
		return nil, err
	}
	id, err := uc.store.Insert(ctx, distributionCollection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create distribution: %w", err)
	}
	dist.ID = id

	created := fetchSnapshot(ctx, uc.store, distributionCollection, id)
	uc.audit.RecordCreate(ctx, actor, domain.EntityTypeDistribution, id, dist.DisplayName(), created, "")

	return dist, nil
}

// GetDistribution retrieves a distribution by ID
func (uc *DistributionUseCase) GetDistribution(ctx context.Context, id string) (*domain.Distribution, error) {
	doc, err := uc.store.Get(ctx, distributionCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrDistributionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution: %w", err)
	}
	var dist domain.Distribution
	if err := decodeEntity(doc, &dist); err != nil {
		return nil, err
	}
	return &dist, nil
}

// ListDistributions retrieves distributions matching the filter, newest first
func (uc *DistributionUseCase) ListDistributions(ctx context.Context, filter domain.DistributionFilter) ([]*domain.Distribution, error) {
	spec := ports.QuerySpec{OrderBy: "createdAt", Descending: true, Limit: normalizeLimit(filter.Limit)}
	if filter.PatientID != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "patientId", Value: *filter.PatientID})
	}

	docs, err := uc.store.Query(ctx, distributionCollection, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	dists := make([]*domain.Distribution, 0, len(docs))
	for _, doc := range docs {
		var dist domain.Distribution
		if err := decodeEntity(doc, &dist); err != nil {
			return nil, err
		}
		dists = append(dists, &dist)
	}
	return dists, nil
}

// DeleteDistribution removes a distribution record
func (uc *DistributionUseCase) DeleteDistribution(ctx context.Context, actor domain.Actor, id string) error {
	before, err := uc.store.Get(ctx, distributionCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return domain.ErrDistributionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get distribution: %w", err)
	}

	var dist domain.Distribution
	if err := decodeEntity(before, &dist); err != nil {
		return err
	}

	if err := uc.store.Delete(ctx, distributionCollection, id); err != nil {
		return fmt.Errorf("failed to delete distribution: %w", err)
	}

	uc.audit.RecordDelete(ctx, actor, domain.EntityTypeDistribution, id, dist.DisplayName(), snapshot(before), "")
	return nil
}
