package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/ports"
)

// Collection names in the document store.
const (
	plantCollection        = "plants"
	harvestCollection      = "harvests"
	patientCollection      = "patients"
	distributionCollection = "distributions"
	extractCollection      = "extracts"
	documentCollection     = "institutional_documents"
	wasteCollection        = "waste_records"
	environmentCollection  = "environment_readings"
	userCollection         = "users"
	counterCollection      = "counters"
)

// entityDocument converts an entity into its stored document via JSON.
func entityDocument(v interface{}) (ports.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	var doc ports.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}
	return doc, nil
}

// decodeEntity fills an entity struct from its stored document.
func decodeEntity(doc ports.Document, v interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode entity: %w", err)
	}
	return nil
}

// snapshot converts a stored document into an audit snapshot.
func snapshot(doc ports.Document) domain.Snapshot {
	if doc == nil {
		return nil
	}
	return domain.Snapshot(doc)
}

// fetchSnapshot reads the current stored state of an entity for audit
// purposes. Returns nil when the read fails; the recorder treats a nil
// snapshot as absent.
func fetchSnapshot(ctx context.Context, store ports.DocumentStore, collection, id string) domain.Snapshot {
	doc, err := store.Get(ctx, collection, id)
	if err != nil {
		return nil
	}
	return snapshot(doc)
}
