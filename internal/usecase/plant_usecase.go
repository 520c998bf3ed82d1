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

// CreatePlantRequest represents the request to register a plant
type CreatePlantRequest struct {
	Strain   string             `json:"strain"`
	Room     string             `json:"room"`
	Origin   domain.PlantOrigin `json:"origin"`
	MotherID *string            `json:"motherId,omitempty"`
	Notes    string             `json:"notes,omitempty"`
}

// UpdatePlantRequest represents a partial plant update
type UpdatePlantRequest struct {
	Strain *string `json:"strain,omitempty"`
	Room   *string `json:"room,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// PlantUseCase handles plant lifecycle operations. Every mutation loads the
// prior stored state, applies the change, re-reads the stored state and hands
// both snapshots to the audit recorder.
type PlantUseCase struct {
	store   ports.DocumentStore
	audit   ports.AuditRecorder
	control *ControlNumberGenerator
	log     logger.Logger
}

// NewPlantUseCase creates a plant use case
func NewPlantUseCase(store ports.DocumentStore, audit ports.AuditRecorder, control *ControlNumberGenerator, log logger.Logger) *PlantUseCase {
	return &PlantUseCase{store: store, audit: audit, control: control, log: log}
}

// CreatePlant registers a new plant and assigns its control number
func (uc *PlantUseCase) CreatePlant(ctx context.Context, actor domain.Actor, req CreatePlantRequest) (*domain.Plant, error) {
	if req.Strain == "" || req.Room == "" {
		return nil, domain.NewDomainError("strain and room are required")
	}
	if req.Origin != domain.PlantOriginSeed && req.Origin != domain.PlantOriginClone {
		return nil, domain.NewDomainError("origin must be SEED or CLONE")
	}

	plant := domain.NewPlant(req.Strain, req.Room, req.Origin, req.MotherID)
	plant.Notes = req.Notes

	controlNumber, err := uc.control.Next(ctx, ControlPrefixPlant)
	if err != nil {
		return nil, fmt.Errorf("failed to assign control number: %w", err)
	}
	plant.ControlNumber = controlNumber

	doc, err := entityDocument(plant)
	if err != nil {
		return nil, err
	}
	id, err := uc.store.Insert(ctx, plantCollection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create plant: %w", err)
	}
	plant.ID = id

	created := fetchSnapshot(ctx, uc.store, plantCollection, id)
	uc.audit.RecordCreate(ctx, actor, domain.EntityTypePlant, id, plant.DisplayName(), created, "")

	return plant, nil
}

// GetPlant retrieves a plant by ID
func (uc *PlantUseCase) GetPlant(ctx context.Context, id string) (*domain.Plant, error) {
	doc, err := uc.store.Get(ctx, plantCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrPlantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plant: %w", err)
	}
	var plant domain.Plant
	if err := decodeEntity(doc, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

// ListPlants retrieves plants matching the filter, newest first
func (uc *PlantUseCase) ListPlants(ctx context.Context, filter domain.PlantFilter) ([]*domain.Plant, error) {
	spec := ports.QuerySpec{OrderBy: "createdAt", Descending: true, Limit: normalizeLimit(filter.Limit)}
	if filter.Stage != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "stage", Value: string(*filter.Stage)})
	}
	if filter.Room != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "room", Value: *filter.Room})
	}
	if filter.Strain != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "strain", Value: *filter.Strain})
	}

	docs, err := uc.store.Query(ctx, plantCollection, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	plants := make([]*domain.Plant, 0, len(docs))
	for _, doc := range docs {
		var plant domain.Plant
		if err := decodeEntity(doc, &plant); err != nil {
			return nil, err
		}
		plants = append(plants, &plant)
	}
	return plants, nil
}

// UpdatePlant applies a partial update to a plant
func (uc *PlantUseCase) UpdatePlant(ctx context.Context, actor domain.Actor, id string, req UpdatePlantRequest) (*domain.Plant, error) {
	return uc.mutatePlant(ctx, actor, id, "", func(plant *domain.Plant) error {
		if req.Strain != nil && *req.Strain != "" {
			plant.Strain = *req.Strain
		}
		if req.Room != nil && *req.Room != "" {
			plant.Room = *req.Room
		}
		if req.Notes != nil {
			plant.Notes = *req.Notes
		}
		plant.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// AdvanceStage moves a plant to its next growth stage
func (uc *PlantUseCase) AdvanceStage(ctx context.Context, actor domain.Actor, id string) (*domain.Plant, error) {
	return uc.mutatePlant(ctx, actor, id, "", func(plant *domain.Plant) error {
		return plant.AdvanceStage()
	})
}

// DestroyPlant marks a plant destroyed, recording the reason in the audit note
func (uc *PlantUseCase) DestroyPlant(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Plant, error) {
	return uc.mutatePlant(ctx, actor, id, reason, func(plant *domain.Plant) error {
		return plant.Destroy()
	})
}

// DeletePlant removes a plant record entirely
func (uc *PlantUseCase) DeletePlant(ctx context.Context, actor domain.Actor, id string) error {
	before, err := uc.store.Get(ctx, plantCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return domain.ErrPlantNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get plant: %w", err)
	}

	var plant domain.Plant
	if err := decodeEntity(before, &plant); err != nil {
		return err
	}

	if err := uc.store.Delete(ctx, plantCollection, id); err != nil {
		return fmt.Errorf("failed to delete plant: %w", err)
	}

	uc.audit.RecordDelete(ctx, actor, domain.EntityTypePlant, id, plant.DisplayName(), snapshot(before), "")
	return nil
}

// mutatePlant runs the read-mutate-write-reread cycle shared by all plant
// updates and records the audit entry from the before and after snapshots.
func (uc *PlantUseCase) mutatePlant(ctx context.Context, actor domain.Actor, id, notes string, mutate func(*domain.Plant) error) (*domain.Plant, error) {
	before, err := uc.store.Get(ctx, plantCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrPlantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plant: %w", err)
	}

	var plant domain.Plant
	if err := decodeEntity(before, &plant); err != nil {
		return nil, err
	}
	if err := mutate(&plant); err != nil {
		return nil, err
	}

	doc, err := entityDocument(&plant)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Update(ctx, plantCollection, id, doc); err != nil {
		return nil, fmt.Errorf("failed to update plant: %w", err)
	}

	after := fetchSnapshot(ctx, uc.store, plantCollection, id)
	uc.audit.RecordUpdate(ctx, actor, domain.EntityTypePlant, id, plant.DisplayName(), snapshot(before), after, notes)

	return &plant, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}
