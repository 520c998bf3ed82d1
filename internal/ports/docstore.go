package ports

import "context"

// Document is a schemaless record stored in a collection. Stores include the
// assigned id under the "id" key on reads.
type Document map[string]interface{}

// Filter is a single equality condition on a top-level document field.
type Filter struct {
	Field string
	Value interface{}
}

// QuerySpec describes a collection query: zero or more equality filters,
// optional ordering on one field, and an optional result cap.
type QuerySpec struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// DocumentStore is the persistence collaborator for all domain records and
// audit entries. Implementations assign ids at insert time.
//
// Query may fail with ErrIndexUnavailable when the combination of filters and
// ordering needs a composite index the store does not have. Callers that can
// degrade gracefully should detect that condition with errors.Is and fall
// back to in-process filtering.
type DocumentStore interface {
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, spec QuerySpec) ([]Document, error)
}
