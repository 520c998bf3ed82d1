package domain

import "time"

// DocumentCategory classifies institutional documents
type DocumentCategory string

const (
	DocumentCategoryLicense    DocumentCategory = "LICENSE"
	DocumentCategorySOP        DocumentCategory = "SOP"
	DocumentCategoryInspection DocumentCategory = "INSPECTION"
	DocumentCategoryLabResult  DocumentCategory = "LAB_RESULT"
)

// InstitutionalDocument represents a compliance document held by the operation
type InstitutionalDocument struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Category  DocumentCategory `json:"category"`
	Reference string           `json:"reference,omitempty"`
	IssuedAt  time.Time        `json:"issuedAt"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewInstitutionalDocument creates a document record
func NewInstitutionalDocument(title string, category DocumentCategory, reference string, issuedAt time.Time, expiresAt *time.Time) *InstitutionalDocument {
	now := time.Now().UTC()
	return &InstitutionalDocument{
		Title:     title,
		Category:  category,
		Reference: reference,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Expired reports whether the document has passed its expiry date
func (d *InstitutionalDocument) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && d.ExpiresAt.Before(now)
}

// Validate checks the document fields
func (d *InstitutionalDocument) Validate() error {
	if d.Title == "" {
		return ErrInvalidDocument
	}
	switch d.Category {
	case DocumentCategoryLicense, DocumentCategorySOP, DocumentCategoryInspection, DocumentCategoryLabResult:
		return nil
	default:
		return ErrInvalidDocument
	}
}

// DocumentFilter represents filters for listing documents
type DocumentFilter struct {
	Category *DocumentCategory `json:"category,omitempty"`
	Limit    int               `json:"limit"`
}

var (
	ErrDocumentRecordNotFound = NewDomainError("document not found")
	ErrInvalidDocument        = NewDomainError("document requires a title and a valid category")
)
