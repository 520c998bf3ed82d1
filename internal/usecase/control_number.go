package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/cultivo/cultivo/internal/ports"
)

// Control number prefixes per entity kind.
const (
	ControlPrefixPlant   = "PL"
	ControlPrefixHarvest = "HV"
	ControlPrefixExtract = "EX"
)

// ControlNumberGenerator issues sequential per-kind control numbers such as
// PL-2026-000042 from a counters collection. The read-modify-write is not
// transactional; the store is the serialization point, matching the source
// system's behavior.
type ControlNumberGenerator struct {
	store ports.DocumentStore
	now   func() time.Time
}

// NewControlNumberGenerator creates a generator backed by the given store.
func NewControlNumberGenerator(store ports.DocumentStore) *ControlNumberGenerator {
	return &ControlNumberGenerator{store: store, now: time.Now}
}

// Next returns the next control number for the given prefix.
func (g *ControlNumberGenerator) Next(ctx context.Context, prefix string) (string, error) {
	docs, err := g.store.Query(ctx, counterCollection, ports.QuerySpec{
		Filters: []ports.Filter{{Field: "kind", Value: prefix}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to load counter %s: %w", prefix, err)
	}

	seq := 1
	if len(docs) == 0 {
		_, err = g.store.Insert(ctx, counterCollection, ports.Document{
			"kind": prefix,
			"seq":  seq,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create counter %s: %w", prefix, err)
		}
	} else {
		doc := docs[0]
		seq = counterValue(doc["seq"]) + 1
		doc["seq"] = seq
		id, _ := doc["id"].(string)
		if err := g.store.Update(ctx, counterCollection, id, doc); err != nil {
			return "", fmt.Errorf("failed to advance counter %s: %w", prefix, err)
		}
	}

	return fmt.Sprintf("%s-%d-%06d", prefix, g.now().UTC().Year(), seq), nil
}

func counterValue(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
