package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cultivo/cultivo/internal/ports"
)

// MemoryDocumentStore is a map-backed DocumentStore used by tests and by the
// memory store driver in development. It mirrors hosted document-database
// semantics: a query that combines an equality filter with ordering on a
// different field, or more than one equality filter, needs a composite index
// registered up front, otherwise Query fails with ErrIndexUnavailable.
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]ports.Document
	indexes     map[string]struct{}
}

// NewMemoryDocumentStore creates an empty store with no composite indexes.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		collections: make(map[string]map[string]ports.Document),
		indexes:     make(map[string]struct{}),
	}
}

// RegisterIndex declares a composite index over the given filter fields and
// order-by field for a collection, enabling the matching compound queries.
func (s *MemoryDocumentStore) RegisterIndex(collection string, filterFields []string, orderBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[indexSignature(collection, filterFields, orderBy)] = struct{}{}
}

func indexSignature(collection string, filterFields []string, orderBy string) string {
	fields := append([]string(nil), filterFields...)
	sort.Strings(fields)
	return collection + "|" + strings.Join(fields, ",") + "|" + orderBy
}

// Insert stores a copy of the document under a new id.
func (s *MemoryDocumentStore) Insert(ctx context.Context, collection string, doc ports.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	stored := copyDocument(doc)
	stored["id"] = id

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]ports.Document)
		s.collections[collection] = coll
	}
	coll[id] = stored
	return id, nil
}

// Get retrieves a copy of the document by id.
func (s *MemoryDocumentStore) Get(ctx context.Context, collection, id string) (ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ports.ErrDocumentNotFound
	}
	return copyDocument(doc), nil
}

// Update replaces the stored document, keeping its id.
func (s *MemoryDocumentStore) Update(ctx context.Context, collection, id string, doc ports.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	if _, ok := coll[id]; !ok {
		return ports.ErrDocumentNotFound
	}
	stored := copyDocument(doc)
	stored["id"] = id
	coll[id] = stored
	return nil
}

// Delete removes the document by id.
func (s *MemoryDocumentStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	if _, ok := coll[id]; !ok {
		return ports.ErrDocumentNotFound
	}
	delete(coll, id)
	return nil
}

// Query evaluates equality filters, ordering and limit over the collection.
func (s *MemoryDocumentStore) Query(ctx context.Context, collection string, spec ports.QuerySpec) ([]ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if needsCompositeIndex(spec) {
		fields := make([]string, 0, len(spec.Filters))
		for _, f := range spec.Filters {
			fields = append(fields, f.Field)
		}
		if _, ok := s.indexes[indexSignature(collection, fields, spec.OrderBy)]; !ok {
			return nil, fmt.Errorf("collection %s filters %v order %s: %w",
				collection, fields, spec.OrderBy, ports.ErrIndexUnavailable)
		}
	}

	var results []ports.Document
	for _, doc := range s.collections[collection] {
		if matchesFilters(doc, spec.Filters) {
			results = append(results, copyDocument(doc))
		}
	}

	if spec.OrderBy != "" {
		field, desc := spec.OrderBy, spec.Descending
		sort.Slice(results, func(i, j int) bool {
			c := compareValues(results[i][field], results[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if spec.Limit > 0 && len(results) > spec.Limit {
		results = results[:spec.Limit]
	}
	return results, nil
}

// A single equality filter, or a filter ordered by the same field, is always
// servable. Anything compound requires a registered index.
func needsCompositeIndex(spec ports.QuerySpec) bool {
	if len(spec.Filters) > 1 {
		return true
	}
	if len(spec.Filters) == 1 && spec.OrderBy != "" && spec.OrderBy != spec.Filters[0].Field {
		return true
	}
	return false
}

func matchesFilters(doc ports.Document, filters []ports.Filter) bool {
	for _, f := range filters {
		if compareValues(doc[f.Field], f.Value) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders two document field values. Times, numbers and strings
// compare natively; everything else falls back to its JSON form.
func compareValues(a, b interface{}) int {
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(stringValue(a), stringValue(b))
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

func copyDocument(doc ports.Document) ports.Document {
	out := make(ports.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
