package domain

import (
	"encoding/json"
	"reflect"
	"sort"
)

// Snapshot is a point-in-time mapping of an entity's field names to values.
// The change detector is generic over field name and value and knows nothing
// about concrete entity schemas.
type Snapshot map[string]interface{}

// Bookkeeping fields maintained by the persistence layer. They never count as
// a change and never trigger an audit entry on their own.
var auditExcludedFields = map[string]struct{}{
	"id":        {},
	"createdAt": {},
	"updatedAt": {},
}

// DetectChanges compares two snapshots of the same logical entity and returns
// the sorted set of field names whose values differ. Either snapshot may be
// nil. Comparison is structural: values are decoded before comparing, so two
// structurally equal nested objects are never reported as changed regardless
// of key order or numeric encoding. A missing field and a nil field are
// treated identically.
func DetectChanges(previous, next Snapshot) []string {
	keys := make(map[string]struct{}, len(previous)+len(next))
	for k := range previous {
		keys[k] = struct{}{}
	}
	for k := range next {
		keys[k] = struct{}{}
	}

	changed := make([]string, 0, len(keys))
	for k := range keys {
		if _, excluded := auditExcludedFields[k]; excluded {
			continue
		}
		if !valuesEqual(previous[k], next[k]) {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}

func valuesEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	return reflect.DeepEqual(normalizeValue(a), normalizeValue(b))
}

// normalizeValue round-trips a value through JSON so that maps with different
// key insertion order, int vs float64 encodings, and struct vs map shapes
// compare equal when structurally identical. Values that cannot be marshaled
// are compared as-is.
func normalizeValue(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

// SnapshotOf converts an entity value into a Snapshot via its JSON form.
func SnapshotOf(v interface{}) (Snapshot, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}
