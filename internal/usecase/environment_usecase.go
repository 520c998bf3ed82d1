package usecase

import (
	"context"
	"fmt"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

// RecordReadingRequest represents a room climate measurement
type RecordReadingRequest struct {
	Room         string  `json:"room"`
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  float64 `json:"humidityPct"`
}

// EnvironmentUseCase handles room climate readings. Readings are append-only
// and audited on creation only.
type EnvironmentUseCase struct {
	store ports.DocumentStore
	audit ports.AuditRecorder
	log   logger.Logger
}

// NewEnvironmentUseCase creates an environment use case
func NewEnvironmentUseCase(store ports.DocumentStore, audit ports.AuditRecorder, log logger.Logger) *EnvironmentUseCase {
	return &EnvironmentUseCase{store: store, audit: audit, log: log}
}

// RecordReading stores one climate measurement for a room
func (uc *EnvironmentUseCase) RecordReading(ctx context.Context, actor domain.Actor, req RecordReadingRequest) (*domain.EnvironmentReading, error) {
	reading := domain.NewEnvironmentReading(req.Room, req.TemperatureC, req.HumidityPct)
	if err := reading.Validate(); err != nil {
		return nil, err
	}

	doc, err := entityDocument(reading)
	if err != nil {
		return nil, err
	}
	id, err := uc.store.Insert(ctx, environmentCollection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to record reading: %w", err)
	}
	reading.ID = id

	created := fetchSnapshot(ctx, uc.store, environmentCollection, id)
	uc.audit.RecordCreate(ctx, actor, domain.EntityTypeEnvironment, id, reading.Room, created, "")

	return reading, nil
}

// ListReadings retrieves the most recent readings for a room
func (uc *EnvironmentUseCase) ListReadings(ctx context.Context, room string, limit int) ([]*domain.EnvironmentReading, error) {
	spec := ports.QuerySpec{OrderBy: "recordedAt", Descending: true, Limit: normalizeLimit(limit)}
	if room != "" {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "room", Value: room})
	}

	docs, err := uc.store.Query(ctx, environmentCollection, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	readings := make([]*domain.EnvironmentReading, 0, len(docs))
	for _, doc := range docs {
		var reading domain.EnvironmentReading
		if err := decodeEntity(doc, &reading); err != nil {
			return nil, err
		}
		readings = append(readings, &reading)
	}
	return readings, nil
}
