package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivo/cultivo/internal/domain"
)

func newDistributionFixture() (*PatientUseCase, *DistributionUseCase, *AuditQueryService) {
	store := newIndexedStore()
	log := testLogger()
	recorder := NewAuditRecorder(store, log)
	return NewPatientUseCase(store, recorder, log),
		NewDistributionUseCase(store, recorder, log),
		NewAuditQueryService(store, log)
}

func registeredPatient(t *testing.T, patients *PatientUseCase, allotment float64) *domain.Patient {
	t.Helper()
	patient, err := patients.CreatePatient(context.Background(), testActor, CreatePatientRequest{
		RegistryNumber: "REG-0001",
		FirstName:      "Maria",
		LastName:       "Souza",
		Physician:      "Dr. Lima",
		AllotmentGrams: allotment,
	})
	require.NoError(t, err)
	return patient
}

func TestCreateDistribution(t *testing.T) {
	ctx := context.Background()
	patients, distributions, audit := newDistributionFixture()
	patient := registeredPatient(t, patients, 30)

	dist, err := distributions.CreateDistribution(ctx, testActor, CreateDistributionRequest{
		PatientID:     patient.ID,
		ProductType:   domain.ProductTypeHarvest,
		ProductID:     "harvest-1",
		QuantityGrams: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, testActor.UserID, dist.DistributedBy)

	entries, err := audit.ByEntity(ctx, domain.EntityTypeDistribution, dist.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCreate, entries[0].Action)
}

func TestCreateDistributionEnforcesAllotment(t *testing.T) {
	ctx := context.Background()
	patients, distributions, _ := newDistributionFixture()
	patient := registeredPatient(t, patients, 30)

	_, err := distributions.CreateDistribution(ctx, testActor, CreateDistributionRequest{
		PatientID:     patient.ID,
		ProductType:   domain.ProductTypeExtract,
		ProductID:     "extract-1",
		QuantityGrams: 31,
	})
	assert.ErrorIs(t, err, domain.ErrAllotmentExceeded)
}

func TestCreateDistributionRequiresActivePatient(t *testing.T) {
	ctx := context.Background()
	patients, distributions, _ := newDistributionFixture()
	patient := registeredPatient(t, patients, 30)

	_, err := patients.DeactivatePatient(ctx, testActor, patient.ID)
	require.NoError(t, err)

	_, err = distributions.CreateDistribution(ctx, testActor, CreateDistributionRequest{
		PatientID:     patient.ID,
		ProductType:   domain.ProductTypeHarvest,
		ProductID:     "harvest-1",
		QuantityGrams: 5,
	})
	assert.ErrorIs(t, err, domain.ErrPatientInactive)

	_, err = distributions.CreateDistribution(ctx, testActor, CreateDistributionRequest{
		PatientID:     "missing",
		ProductType:   domain.ProductTypeHarvest,
		ProductID:     "harvest-1",
		QuantityGrams: 5,
	})
	assert.ErrorIs(t, err, domain.ErrPatientNotFound)
}

func TestCreateDistributionValidation(t *testing.T) {
	ctx := context.Background()
	patients, distributions, _ := newDistributionFixture()
	patient := registeredPatient(t, patients, 30)

	_, err := distributions.CreateDistribution(ctx, testActor, CreateDistributionRequest{
		PatientID:     patient.ID,
		ProductType:   "FLOWER",
		ProductID:     "harvest-1",
		QuantityGrams: 5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDistribution)

	_, err = distributions.CreateDistribution(ctx, testActor, CreateDistributionRequest{
		PatientID:     patient.ID,
		ProductType:   domain.ProductTypeHarvest,
		ProductID:     "harvest-1",
		QuantityGrams: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
