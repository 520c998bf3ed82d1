package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivo/cultivo/internal/domain"
)

func newHarvestFixture() (*PlantUseCase, *HarvestUseCase, *AuditQueryService) {
	store := newIndexedStore()
	log := testLogger()
	recorder := NewAuditRecorder(store, log)
	control := NewControlNumberGenerator(store)
	return NewPlantUseCase(store, recorder, control, log),
		NewHarvestUseCase(store, recorder, control, log),
		NewAuditQueryService(store, log)
}

func floweringPlant(t *testing.T, plants *PlantUseCase) *domain.Plant {
	t.Helper()
	ctx := context.Background()
	plant, err := plants.CreatePlant(ctx, testActor, CreatePlantRequest{Strain: "ACDC", Room: "flower-1", Origin: domain.PlantOriginSeed})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		plant, err = plants.AdvanceStage(ctx, testActor, plant.ID)
		require.NoError(t, err)
	}
	require.Equal(t, domain.GrowthStageFlowering, plant.Stage)
	return plant
}

func TestCreateHarvest(t *testing.T) {
	ctx := context.Background()
	plants, harvests, audit := newHarvestFixture()
	plant := floweringPlant(t, plants)

	harvest, err := harvests.CreateHarvest(ctx, testActor, CreateHarvestRequest{
		PlantID:        plant.ID,
		WetWeightGrams: 420.5,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.HarvestStatusDrying, harvest.Status)
	assert.Contains(t, harvest.ControlNumber, "HV-")

	// The plant left cultivation.
	updated, err := plants.GetPlant(ctx, plant.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GrowthStageHarvested, updated.Stage)

	// One harvest creation entry plus the plant's stage update.
	harvestEntries, err := audit.ByEntity(ctx, domain.EntityTypeHarvest, harvest.ID)
	require.NoError(t, err)
	require.Len(t, harvestEntries, 1)
	assert.Equal(t, domain.AuditActionCreate, harvestEntries[0].Action)

	plantEntries, err := audit.ByEntity(ctx, domain.EntityTypePlant, plant.ID)
	require.NoError(t, err)
	require.Len(t, plantEntries, 3)
	assert.Equal(t, "harvested", plantEntries[0].Notes)
	assert.Equal(t, []string{"stage"}, plantEntries[0].ChangedFields)
}

func TestCreateHarvestRequiresFloweringPlant(t *testing.T) {
	ctx := context.Background()
	plants, harvests, _ := newHarvestFixture()

	plant, err := plants.CreatePlant(ctx, testActor, CreatePlantRequest{Strain: "ACDC", Room: "veg-1", Origin: domain.PlantOriginSeed})
	require.NoError(t, err)

	_, err = harvests.CreateHarvest(ctx, testActor, CreateHarvestRequest{PlantID: plant.ID, WetWeightGrams: 100})
	assert.ErrorIs(t, err, domain.ErrPlantNotFlowering)

	_, err = harvests.CreateHarvest(ctx, testActor, CreateHarvestRequest{PlantID: "missing", WetWeightGrams: 100})
	assert.ErrorIs(t, err, domain.ErrPlantNotFound)

	_, err = harvests.CreateHarvest(ctx, testActor, CreateHarvestRequest{PlantID: plant.ID, WetWeightGrams: 0})
	assert.Error(t, err)
}

func TestHarvestDryingToComplete(t *testing.T) {
	ctx := context.Background()
	plants, harvests, audit := newHarvestFixture()
	plant := floweringPlant(t, plants)

	harvest, err := harvests.CreateHarvest(ctx, testActor, CreateHarvestRequest{PlantID: plant.ID, WetWeightGrams: 400})
	require.NoError(t, err)

	// Completing before the dry weight is recorded is rejected.
	_, err = harvests.CompleteHarvest(ctx, testActor, harvest.ID)
	assert.ErrorIs(t, err, domain.ErrHarvestNotCuring)

	cured, err := harvests.RecordDryWeight(ctx, testActor, harvest.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, domain.HarvestStatusCuring, cured.Status)

	// Dry weight above the wet weight is impossible.
	_, err = harvests.RecordDryWeight(ctx, testActor, harvest.ID, 500)
	assert.Error(t, err)

	done, err := harvests.CompleteHarvest(ctx, testActor, harvest.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HarvestStatusComplete, done.Status)

	entries, err := audit.ByEntity(ctx, domain.EntityTypeHarvest, harvest.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"status"}, entries[0].ChangedFields)
}
