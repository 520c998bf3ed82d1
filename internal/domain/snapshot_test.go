package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectChanges(t *testing.T) {
	tests := []struct {
		name     string
		previous Snapshot
		next     Snapshot
		expected []string
	}{
		{
			name:     "identical snapshots report nothing",
			previous: Snapshot{"strain": "ACDC", "room": "veg-1"},
			next:     Snapshot{"strain": "ACDC", "room": "veg-1"},
			expected: []string{},
		},
		{
			name:     "single changed field",
			previous: Snapshot{"strain": "ACDC", "room": "veg-1"},
			next:     Snapshot{"strain": "ACDC", "room": "veg-2"},
			expected: []string{"room"},
		},
		{
			name:     "changed fields come back sorted",
			previous: Snapshot{"strain": "ACDC", "room": "veg-1", "stage": "SEEDLING"},
			next:     Snapshot{"strain": "Harlequin", "room": "veg-2", "stage": "SEEDLING"},
			expected: []string{"room", "strain"},
		},
		{
			name:     "bookkeeping fields never count as changes",
			previous: Snapshot{"id": "a", "createdAt": "2026-01-01", "updatedAt": "2026-01-01", "room": "veg-1"},
			next:     Snapshot{"id": "b", "createdAt": "2026-02-02", "updatedAt": "2026-02-02", "room": "veg-1"},
			expected: []string{},
		},
		{
			name:     "field added",
			previous: Snapshot{"room": "veg-1"},
			next:     Snapshot{"room": "veg-1", "notes": "topped"},
			expected: []string{"notes"},
		},
		{
			name:     "field removed",
			previous: Snapshot{"room": "veg-1", "notes": "topped"},
			next:     Snapshot{"room": "veg-1"},
			expected: []string{"notes"},
		},
		{
			name:     "missing field equals nil field",
			previous: Snapshot{"room": "veg-1", "motherId": nil},
			next:     Snapshot{"room": "veg-1"},
			expected: []string{},
		},
		{
			name:     "nil previous reports every field",
			previous: nil,
			next:     Snapshot{"room": "veg-1", "strain": "ACDC"},
			expected: []string{"room", "strain"},
		},
		{
			name:     "both nil",
			previous: nil,
			next:     nil,
			expected: []string{},
		},
		{
			name: "nested maps compare structurally regardless of key order",
			previous: Snapshot{"limits": map[string]interface{}{
				"temperatureC": 26.0,
				"humidityPct":  60.0,
			}},
			next: Snapshot{"limits": map[string]interface{}{
				"humidityPct":  60.0,
				"temperatureC": 26.0,
			}},
			expected: []string{},
		},
		{
			name:     "int and float encodings of the same number are equal",
			previous: Snapshot{"allotmentGrams": 30},
			next:     Snapshot{"allotmentGrams": 30.0},
			expected: []string{},
		},
		{
			name: "nested value change is attributed to the top-level field",
			previous: Snapshot{"limits": map[string]interface{}{
				"temperatureC": 26.0,
			}},
			next: Snapshot{"limits": map[string]interface{}{
				"temperatureC": 24.0,
			}},
			expected: []string{"limits"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectChanges(tt.previous, tt.next))
		})
	}
}

func TestSnapshotOf(t *testing.T) {
	plant := NewPlant("ACDC", "veg-1", PlantOriginSeed, nil)
	plant.ID = "plant-1"

	snap, err := SnapshotOf(plant)
	assert.NoError(t, err)
	assert.Equal(t, "ACDC", snap["strain"])
	assert.Equal(t, "veg-1", snap["room"])
	assert.Equal(t, string(GrowthStageSeedling), snap["stage"])

	// A snapshot of the same entity never reports changes against itself.
	again, err := SnapshotOf(plant)
	assert.NoError(t, err)
	assert.Empty(t, DetectChanges(snap, again))
}
