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

// CreatePatientRequest represents the request to register a patient
type CreatePatientRequest struct {
	RegistryNumber string  `json:"registryNumber"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Physician      string  `json:"physician"`
	AllotmentGrams float64 `json:"allotmentGrams"`
}

// UpdatePatientRequest represents a partial patient update
type UpdatePatientRequest struct {
	Physician      *string  `json:"physician,omitempty"`
	AllotmentGrams *float64 `json:"allotmentGrams,omitempty"`
}

// PatientUseCase handles patient registry operations
type PatientUseCase struct {
	store ports.DocumentStore
	audit ports.AuditRecorder
	log   logger.Logger
}

// NewPatientUseCase creates a patient use case
func NewPatientUseCase(store ports.DocumentStore, audit ports.AuditRecorder, log logger.Logger) *PatientUseCase {
	return &PatientUseCase{store: store, audit: audit, log: log}
}

// CreatePatient registers a new patient
func (uc *PatientUseCase) CreatePatient(ctx context.Context, actor domain.Actor, req CreatePatientRequest) (*domain.Patient, error) {
	if req.RegistryNumber == "" || req.FirstName == "" || req.LastName == "" {
		return nil, domain.NewDomainError("registry number and name are required")
	}
	if req.AllotmentGrams <= 0 {
		return nil, domain.NewDomainError("allotment must be positive")
	}

	existing, err := uc.store.Query(ctx, patientCollection, ports.QuerySpec{
		Filters: []ports.Filter{{Field: "registryNumber", Value: req.RegistryNumber}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check registry number: %w", err)
	}
	if len(existing) > 0 {
		return nil, domain.NewDomainError("registry number is already in use")
	}

	patient := domain.NewPatient(req.RegistryNumber, req.FirstName, req.LastName, req.Physician, req.AllotmentGrams)

	doc, err := entityDocument(patient)
	if err != nil {
		return nil, err
	}
	id, err := uc.store.Insert(ctx, patientCollection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	patient.ID = id

	created := fetchSnapshot(ctx, uc.store, patientCollection, id)
	uc.audit.RecordCreate(ctx, actor, domain.EntityTypePatient, id, patient.DisplayName(), created, "")

	return patient, nil
}

// GetPatient retrieves a patient by ID
func (uc *PatientUseCase) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	doc, err := uc.store.Get(ctx, patientCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	var patient domain.Patient
	if err := decodeEntity(doc, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// ListPatients retrieves patients matching the filter, newest first
func (uc *PatientUseCase) ListPatients(ctx context.Context, filter domain.PatientFilter) ([]*domain.Patient, error) {
	spec := ports.QuerySpec{OrderBy: "createdAt", Descending: true, Limit: normalizeLimit(filter.Limit)}
	if filter.Active != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "active", Value: *filter.Active})
	}
	if filter.Physician != nil {
		spec.Filters = append(spec.Filters, ports.Filter{Field: "physician", Value: *filter.Physician})
	}

	docs, err := uc.store.Query(ctx, patientCollection, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	patients := make([]*domain.Patient, 0, len(docs))
	for _, doc := range docs {
		var patient domain.Patient
		if err := decodeEntity(doc, &patient); err != nil {
			return nil, err
		}
		patients = append(patients, &patient)
	}
	return patients, nil
}

// UpdatePatient applies a partial update to a patient
func (uc *PatientUseCase) UpdatePatient(ctx context.Context, actor domain.Actor, id string, req UpdatePatientRequest) (*domain.Patient, error) {
	return uc.mutatePatient(ctx, actor, id, func(patient *domain.Patient) error {
		if req.Physician != nil {
			patient.Physician = *req.Physician
		}
		if req.AllotmentGrams != nil {
			if *req.AllotmentGrams <= 0 {
				return domain.NewDomainError("allotment must be positive")
			}
			patient.AllotmentGrams = *req.AllotmentGrams
		}
		patient.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// DeactivatePatient removes a patient from the active registry
func (uc *PatientUseCase) DeactivatePatient(ctx context.Context, actor domain.Actor, id string) (*domain.Patient, error) {
	return uc.mutatePatient(ctx, actor, id, func(patient *domain.Patient) error {
		return patient.Deactivate()
	})
}

// DeletePatient removes a patient record entirely
func (uc *PatientUseCase) DeletePatient(ctx context.Context, actor domain.Actor, id string) error {
	before, err := uc.store.Get(ctx, patientCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return domain.ErrPatientNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}

	var patient domain.Patient
	if err := decodeEntity(before, &patient); err != nil {
		return err
	}

	if err := uc.store.Delete(ctx, patientCollection, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	uc.audit.RecordDelete(ctx, actor, domain.EntityTypePatient, id, patient.DisplayName(), snapshot(before), "")
	return nil
}

func (uc *PatientUseCase) mutatePatient(ctx context.Context, actor domain.Actor, id string, mutate func(*domain.Patient) error) (*domain.Patient, error) {
	before, err := uc.store.Get(ctx, patientCollection, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domain.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	var patient domain.Patient
	if err := decodeEntity(before, &patient); err != nil {
		return nil, err
	}
	if err := mutate(&patient); err != nil {
		return nil, err
	}

	doc, err := entityDocument(&patient)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Update(ctx, patientCollection, id, doc); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	after := fetchSnapshot(ctx, uc.store, patientCollection, id)
	uc.audit.RecordUpdate(ctx, actor, domain.EntityTypePatient, id, patient.DisplayName(), snapshot(before), after, "")

	return &patient, nil
}
