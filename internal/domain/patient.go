package domain

import (
	"fmt"
	"time"
)

// Patient represents a registered program patient
type Patient struct {
	ID             string    `json:"id"`
	RegistryNumber string    `json:"registryNumber"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Physician      string    `json:"physician"`
	AllotmentGrams float64   `json:"allotmentGrams"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewPatient creates an active patient record
func NewPatient(registryNumber, firstName, lastName, physician string, allotmentGrams float64) *Patient {
	now := time.Now().UTC()
	return &Patient{
		RegistryNumber: registryNumber,
		FirstName:      firstName,
		LastName:       lastName,
		Physician:      physician,
		AllotmentGrams: allotmentGrams,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Deactivate removes the patient from the active registry
func (p *Patient) Deactivate() error {
	if !p.Active {
		return ErrPatientInactive
	}
	p.Active = false
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// DisplayName returns the human-readable label used in audit entries
func (p *Patient) DisplayName() string {
	return fmt.Sprintf("%s %s (%s)", p.FirstName, p.LastName, p.RegistryNumber)
}

// PatientFilter represents filters for listing patients
type PatientFilter struct {
	Active    *bool   `json:"active,omitempty"`
	Physician *string `json:"physician,omitempty"`
	Limit     int     `json:"limit"`
}

var (
	ErrPatientNotFound = NewDomainError("patient not found")
	ErrPatientInactive = NewDomainError("patient is not active")
)
