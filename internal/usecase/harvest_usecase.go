package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

// CreateHarvestRequest represents the request to harvest a plant
type CreateHarvestRequest struct {
	PlantID        string  `json:"plantId"`
	WetWeightGrams float64 `json:"wetWeightGrams"`
	Notes          string  `json:"notes,omitempty"`
}

// HarvestUseCase handles harvest operations. Harvesting a plant produces two
// audit entries: the plant's stage update and the harvest's creation.
type HarvestUseCase struct {
	store   ports.DocumentStore
	audit   ports.AuditRecorder
	control *ControlNumberGenerator
	log     logger.Logger
}

// NewHarvestUseCase creates a harvest use case
func NewHarvestUseCase(store ports.DocumentStore, audit ports.AuditRecorder, control *ControlNumberGenerator, log logger.Logger) *HarvestUseCase {
	return &HarvestUseCase{store: store, audit: audit, control: control, log: log}
}

// CreateHarvest takes a flowering plant to harvest and opens a drying record
func (uc *HarvestUseCase) CreateHarvest(ctx context.Context, actor domain.Actor, req CreateHarvestRequest) (*domain.Harvest, error) {
	if req.WetWeightGrams <= 0 {
		return nil, domain.NewDomainError("wet weight must be positive")
	}

	plantBefore, err := uc.store.Get(ctx, plantCollection, req.PlantID)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrPlantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plant: %w", err)
	}

	var plant domain.Plant
	if err := decodeEntity(plantBefore, &plant); err != nil {
		return nil, err
	}
	if err := plant.MarkHarvested(); err != nil {
		return nil, err
	}

	plantDoc, err := entityDocument(&plant)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Update(ctx, plantCollection, plant.ID, plantDoc); err != nil {
		return nil, fmt.Errorf("failed to update plant: %w", err)
	}
	plantAfter := fetchSnapshot(ctx, uc.store, plantCollection, plant.ID)
	uc.audit.RecordUpdate(ctx, actor, domain.EntityTypePlant, plant.ID, plant.DisplayName(), snapshot(plantBefore), plantAfter, "harvested")

	harvest := domain.NewHarvest(plant.ID, plant.Strain, req.WetWeightGrams)
	harvest.Notes = req.Notes

	controlNumber, err := uc.control.Next(ctx, ControlPrefixHarvest)
	if err != nil {
		return nil, fmt.Errorf("failed to assign control number: %w", err)
	}
	harvest.ControlNumber = controlNumber

	doc, err := entityDocument(harvest)
	if err != nil {
		return nil, err
	}
	id, err := uc.store.Insert(ctx, harvestCollection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create harvest: %w", err)
	}
	harvest.ID = id

	created := fetchSnapshot(ctx, uc.store, harvestCollection, id)
	uc.audit.RecordCreate(ctx, actor, domain.EntityTypeHarvest, id, harvest.DisplayName(), created, "")

	return harvest, nil
}

// GetHarvest retrieves a harvest by ID
func (uc *HarvestUseCase) GetHarvest(ctx context.Context, id string) (*domain.Harvest, error) {
	doc, err := uc.store.Get(ctx, harvestCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrHarvestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get harvest: %w", err)
	}
	var harvest domain.Harvest
	if err := decodeEntity(doc, &harvest); err != nil {
		return nil, err
	}
	return &harvest, nil
}

// ListHarvests retrieves harvests matching the filter, newest first
func (uc *HarvestUseCase) ListHarvests(ctx context.Context, filter domain.HarvestFilter) ([]*domain.Harvest, error) {
	spec := ports.QuerySpec{OrderBy: "createdAt", Descending: true, Limit: normalizeLimit(filter.Limit)}
	if filter.PlantID != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "plantId", Value: *filter.PlantID})
	}
	if filter.Status != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "status", Value: string(*filter.Status)})
	}

	docs, err := uc.store.Query(ctx, harvestCollection, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list harvests: %w", err)
	}
	harvests := make([]*domain.Harvest, 0, len(docs))
	for _, doc := range docs {
		var harvest domain.Harvest
		if err := decodeEntity(doc, &harvest); err != nil {
			return nil, err
		}
		harvests = append(harvests, &harvest)
	}
	return harvests, nil
}

// RecordDryWeight records the dry weight, moving the harvest to curing
func (uc *HarvestUseCase) RecordDryWeight(ctx context.Context, actor domain.Actor, id string, grams float64) (*domain.Harvest, error) {
	return uc.mutateHarvest(ctx, actor, id, func(h *domain.Harvest) error {
		return h.RecordDryWeight(grams)
	})
}

// CompleteHarvest marks a curing harvest complete
func (uc *HarvestUseCase) CompleteHarvest(ctx context.Context, actor domain.Actor, id string) (*domain.Harvest, error) {
	return uc.mutateHarvest(ctx, actor, id, func(h *domain.Harvest) error {
		return h.Complete()
	})
}

// DeleteHarvest removes a harvest record
func (uc *HarvestUseCase) DeleteHarvest(ctx context.Context, actor domain.Actor, id string) error {
	before, err := uc.store.Get(ctx, harvestCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return domain.ErrHarvestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get harvest: %w", err)
	}

	var harvest domain.Harvest
	if err := decodeEntity(before, &harvest); err != nil {
		return err
	}

	if err := uc.store.Delete(ctx, harvestCollection, id); err != nil {
		return fmt.Errorf("failed to delete harvest: %w", err)
	}

	uc.audit.RecordDelete(ctx, actor, domain.EntityTypeHarvest, id, harvest.DisplayName(), snapshot(before), "")
	return nil
}

func (uc *HarvestUseCase) mutateHarvest(ctx context.Context, actor domain.Actor, id string, mutate func(*domain.Harvest) error) (*domain.Harvest, error) {
	before, err := uc.store.Get(ctx, harvestCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrHarvestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get harvest: %w", err)
	}

	var harvest domain.Harvest
	if err := decodeEntity(before, &harvest); err != nil {
		return nil, err
	}
	if err := mutate(&harvest); err != nil {
		return nil, err
	}

	doc, err := entityDocument(&harvest)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Update(ctx, harvestCollection, id, doc); err != nil {
		return nil, fmt.Errorf("failed to update harvest: %w", err)
	}

	after := fetchSnapshot(ctx, uc.store, harvestCollection, id)
	uc.audit.RecordUpdate(ctx, actor, domain.EntityTypeHarvest, id, harvest.DisplayName(), snapshot(before), after, "")

	return &harvest, nil
}
