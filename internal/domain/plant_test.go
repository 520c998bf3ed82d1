package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlantStageTransitions(t *testing.T) {
	plant := NewPlant("Harlequin", "veg-1", PlantOriginSeed, nil)
	assert.Equal(t, GrowthStageSeedling, plant.Stage)
	assert.False(t, plant.Terminal())

	assert.NoError(t, plant.AdvanceStage())
	assert.Equal(t, GrowthStageVegetative, plant.Stage)

	assert.NoError(t, plant.AdvanceStage())
	assert.Equal(t, GrowthStageFlowering, plant.Stage)

	assert.NoError(t, plant.AdvanceStage())
	assert.Equal(t, GrowthStageHarvested, plant.Stage)
	assert.True(t, plant.Terminal())

	assert.ErrorIs(t, plant.AdvanceStage(), ErrPlantTerminal)
}

func TestPlantMarkHarvested(t *testing.T) {
	plant := NewPlant("Harlequin", "veg-1", PlantOriginClone, nil)

	assert.ErrorIs(t, plant.MarkHarvested(), ErrPlantNotFlowering)

	plant.Stage = GrowthStageFlowering
	assert.NoError(t, plant.MarkHarvested())
	assert.Equal(t, GrowthStageHarvested, plant.Stage)
}

func TestPlantDestroy(t *testing.T) {
	plant := NewPlant("Harlequin", "veg-1", PlantOriginSeed, nil)

	assert.NoError(t, plant.Destroy())
	assert.Equal(t, GrowthStageDestroyed, plant.Stage)
	assert.True(t, plant.Terminal())

	assert.ErrorIs(t, plant.Destroy(), ErrPlantTerminal)
}

func TestPlantDisplayName(t *testing.T) {
	plant := NewPlant("ACDC", "veg-2", PlantOriginSeed, nil)
	assert.Equal(t, "ACDC", plant.DisplayName())

	plant.ControlNumber = "PL-2026-000007"
	assert.Equal(t, "ACDC (PL-2026-000007)", plant.DisplayName())
}
