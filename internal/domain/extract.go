package domain

import (
	"fmt"
	"time"
)

// ExtractionMethod represents how an extract was produced
type ExtractionMethod string

const (
	ExtractionMethodCO2      ExtractionMethod = "CO2"
	ExtractionMethodEthanol  ExtractionMethod = "ETHANOL"
	ExtractionMethodRosin    ExtractionMethod = "ROSIN"
	ExtractionMethodIceWater ExtractionMethod = "ICE_WATER"
)

// Extract represents a concentrate produced from a harvest
type Extract struct {
	ID            string           `json:"id"`
	ControlNumber string           `json:"controlNumber"`
	HarvestID     string           `json:"harvestId"`
	Method        ExtractionMethod `json:"method"`
	InputGrams    float64          `json:"inputGrams"`
	YieldGrams    float64          `json:"yieldGrams"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// NewExtract creates an extract record
func NewExtract(harvestID string, method ExtractionMethod, inputGrams, yieldGrams float64) *Extract {
	now := time.Now().UTC()
	return &Extract{
		HarvestID:  harvestID,
		Method:     method,
		InputGrams: inputGrams,
		YieldGrams: yieldGrams,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks the extract fields
func (e *Extract) Validate() error {
	switch e.Method {
	case ExtractionMethodCO2, ExtractionMethodEthanol, ExtractionMethodRosin, ExtractionMethodIceWater:
	default:
		return ErrInvalidExtractionMethod
	}
	if e.InputGrams <= 0 || e.YieldGrams < 0 || e.YieldGrams > e.InputGrams {
		return ErrInvalidExtractWeights
	}
	return nil
}

// YieldPercent returns the extraction yield as a percentage of input
func (e *Extract) YieldPercent() float64 {
	if e.InputGrams == 0 {
		return 0
	}
	return e.YieldGrams / e.InputGrams * 100
}

// DisplayName returns the human-readable label used in audit entries
func (e *Extract) DisplayName() string {
	return fmt.Sprintf("%s extract (%s)", e.Method, e.ControlNumber)
}

// ExtractFilter represents filters for listing extracts
type ExtractFilter struct {
	HarvestID *string           `json:"harvestId,omitempty"`
	Method    *ExtractionMethod `json:"method,omitempty"`
	Limit     int               `json:"limit"`
}

var (
	ErrExtractNotFound         = NewDomainError("extract not found")
	ErrInvalidExtractionMethod = NewDomainError("invalid extraction method")
	ErrInvalidExtractWeights   = NewDomainError("yield must be between zero and the input weight")
	ErrHarvestNotComplete      = NewDomainError("harvest must be complete before extraction")
)
