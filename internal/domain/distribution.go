package domain

import (
	"fmt"
	"time"
)

// ProductType identifies what kind of product was distributed
type ProductType string

const (
	ProductTypeHarvest ProductType = "HARVEST"
	ProductTypeExtract ProductType = "EXTRACT"
)

// Distribution represents product handed to a patient
type Distribution struct {
	ID            string      `json:"id"`
	PatientID     string      `json:"patientId"`
	ProductType   ProductType `json:"productType"`
	ProductID     string      `json:"productId"`
	QuantityGrams float64     `json:"quantityGrams"`
	DistributedAt time.Time   `json:"distributedAt"`
	DistributedBy string      `json:"distributedBy"`
	Notes         string      `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// NewDistribution creates a distribution record
func NewDistribution(patientID string, productType ProductType, productID string, quantityGrams float64, distributedBy string) *Distribution {
	now := time.Now().UTC()
	return &Distribution{
		PatientID:     patientID,
		ProductType:   productType,
		ProductID:     productID,
		QuantityGrams: quantityGrams,
		DistributedAt: now,
		DistributedBy: distributedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks the distribution fields
func (d *Distribution) Validate() error {
	if d.PatientID == "" || d.ProductID == "" {
		return ErrInvalidDistribution
	}
	if d.ProductType != ProductTypeHarvest && d.ProductType != ProductTypeExtract {
		return ErrInvalidDistribution
	}
	if d.QuantityGrams <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// DisplayName returns the human-readable label used in audit entries
func (d *Distribution) DisplayName() string {
	return fmt.Sprintf("%.1fg %s to patient %s", d.QuantityGrams, d.ProductType, d.PatientID)
}

// DistributionFilter represents filters for listing distributions
type DistributionFilter struct {
	PatientID *string `json:"patientId,omitempty"`
	Limit     int     `json:"limit"`
}

var (
	ErrDistributionNotFound = NewDomainError("distribution not found")
	ErrInvalidDistribution  = NewDomainError("invalid distribution")
	ErrInvalidQuantity      = NewDomainError("quantity must be positive")
	ErrAllotmentExceeded    = NewDomainError("quantity exceeds patient allotment")
)
