package domain

import (
	"fmt"
	"time"
)

// HarvestStatus represents the post-harvest processing status
type HarvestStatus string

const (
	HarvestStatusDrying   HarvestStatus = "DRYING"
	HarvestStatusCuring   HarvestStatus = "CURING"
	HarvestStatusComplete HarvestStatus = "COMPLETE"
)

// Harvest represents the yield taken from a single plant
type Harvest struct {
	ID             string        `json:"id"`
	ControlNumber  string        `json:"controlNumber"`
	PlantID        string        `json:"plantId"`
	Strain         string        `json:"strain"`
	WetWeightGrams float64       `json:"wetWeightGrams"`
	DryWeightGrams float64       `json:"dryWeightGrams,omitempty"`
	Status         HarvestStatus `json:"status"`
	HarvestedAt    time.Time     `json:"harvestedAt"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// NewHarvest creates a new harvest in the drying stage
func NewHarvest(plantID, strain string, wetWeightGrams float64) *Harvest {
	now := time.Now().UTC()
	return &Harvest{
		PlantID:        plantID,
		Strain:         strain,
		WetWeightGrams: wetWeightGrams,
		Status:         HarvestStatusDrying,
		HarvestedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RecordDryWeight records the dry weight and moves the harvest to curing
func (h *Harvest) RecordDryWeight(grams float64) error {
	if h.Status != HarvestStatusDrying {
		return ErrHarvestNotDrying
	}
	if grams <= 0 || grams > h.WetWeightGrams {
		return ErrInvalidDryWeight
	}
	h.DryWeightGrams = grams
	h.Status = HarvestStatusCuring
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete marks the harvest as finished curing
func (h *Harvest) Complete() error {
	if h.Status != HarvestStatusCuring {
		return ErrHarvestNotCuring
	}
	h.Status = HarvestStatusComplete
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// DisplayName returns the human-readable label used in audit entries
func (h *Harvest) DisplayName() string {
	return fmt.Sprintf("%s harvest (%s)", h.Strain, h.ControlNumber)
}

// HarvestFilter represents filters for listing harvests
type HarvestFilter struct {
	PlantID *string        `json:"plantId,omitempty"`
	Status  *HarvestStatus `json:"status,omitempty"`
	Limit   int            `json:"limit"`
}

var (
	ErrHarvestNotFound  = NewDomainError("harvest not found")
	ErrHarvestNotDrying = NewDomainError("harvest is not in the drying stage")
	ErrHarvestNotCuring = NewDomainError("harvest is not in the curing stage")
	ErrInvalidDryWeight = NewDomainError("dry weight must be positive and at most the wet weight")
)
