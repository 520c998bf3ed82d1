package domain

import (
	"fmt"
	"time"
)

// DisposalMethod represents how plant waste was destroyed
type DisposalMethod string

const (
	DisposalMethodCompost      DisposalMethod = "COMPOST"
	DisposalMethodIncineration DisposalMethod = "INCINERATION"
	DisposalMethodGrinder      DisposalMethod = "GRINDER"
)

// WasteRecord represents a witnessed disposal of plant material
type WasteRecord struct {
	ID          string         `json:"id"`
	SourceType  string         `json:"sourceType"`
	SourceID    string         `json:"sourceId"`
	WeightGrams float64        `json:"weightGrams"`
	Method      DisposalMethod `json:"method"`
	Witness     string         `json:"witness"`
	Reason      string         `json:"reason,omitempty"`
	DisposedAt  time.Time      `json:"disposedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewWasteRecord creates a waste disposal record
func NewWasteRecord(sourceType, sourceID string, weightGrams float64, method DisposalMethod, witness, reason string) *WasteRecord {
	now := time.Now().UTC()
	return &WasteRecord{
		SourceType:  sourceType,
		SourceID:    sourceID,
		WeightGrams: weightGrams,
		Method:      method,
		Witness:     witness,
		Reason:      reason,
		DisposedAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the waste record fields
func (w *WasteRecord) Validate() error {
	if w.SourceType == "" || w.SourceID == "" || w.Witness == "" {
		return ErrInvalidWasteRecord
	}
	if w.WeightGrams <= 0 {
		return ErrInvalidWasteRecord
	}
	switch w.Method {
	case DisposalMethodCompost, DisposalMethodIncineration, DisposalMethodGrinder:
		return nil
	default:
		return ErrInvalidWasteRecord
	}
}

// DisplayName returns the human-readable label used in audit entries
func (w *WasteRecord) DisplayName() string {
	return fmt.Sprintf("%.1fg %s waste from %s %s", w.WeightGrams, w.Method, w.SourceType, w.SourceID)
}

// WasteFilter represents filters for listing waste records
type WasteFilter struct {
	SourceType *string `json:"sourceType,omitempty"`
	Limit      int     `json:"limit"`
}

var (
	ErrWasteNotFound      = NewDomainError("waste record not found")
	ErrInvalidWasteRecord = NewDomainError("waste record requires source, witness, method and positive weight")
)
