package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/cultivo/cultivo/internal/adapter/persistence"
	"github.com/cultivo/cultivo/internal/config"
	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/service/logger"
	"github.com/cultivo/cultivo/internal/service/token"
	"github.com/cultivo/cultivo/internal/usecase"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	structuredLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "cultivo-seed",
	})

	store := persistence.NewPostgresDocumentStore(db)
	auditRecorder := usecase.NewAuditRecorder(store, structuredLogger)
	controlNumbers := usecase.NewControlNumberGenerator(store)
	tokenService := token.NewJWTService(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)

	authUseCase := usecase.NewAuthUseCase(store, tokenService, auditRecorder, structuredLogger)
	plantUseCase := usecase.NewPlantUseCase(store, auditRecorder, controlNumbers, structuredLogger)
	patientUseCase := usecase.NewPatientUseCase(store, auditRecorder, structuredLogger)

	seedActor := domain.Actor{UserID: "system", UserEmail: "system@cultivo.local"}

	cultivator, err := authUseCase.CreateUser(ctx, seedActor, usecase.CreateUserRequest{
		Email:       "cultivator@cultivo.local",
		Password:    "cultivo123!",
		DisplayName: "Demo Cultivator",
		Role:        domain.UserRoleCultivator,
	})
	if err != nil {
		log.Fatalf("Failed to seed cultivator: %v", err)
	}
	actor := cultivator.Actor()

	strains := []struct {
		strain string
		room   string
	}{
		{"Charlotte's Web", "veg-1"},
		{"Harlequin", "veg-1"},
		{"ACDC", "veg-2"},
	}
	for _, s := range strains {
		plant, err := plantUseCase.CreatePlant(ctx, actor, usecase.CreatePlantRequest{
			Strain: s.strain,
			Room:   s.room,
			Origin: domain.PlantOriginSeed,
		})
		if err != nil {
			log.Fatalf("Failed to seed plant: %v", err)
		}
		fmt.Printf("Seeded plant %s (%s)\n", plant.ControlNumber, plant.Strain)
	}

	patient, err := patientUseCase.CreatePatient(ctx, actor, usecase.CreatePatientRequest{
		RegistryNumber: "REG-0001",
		FirstName:      "Maria",
		LastName:       "Souza",
		Physician:      "Dr. Lima",
		AllotmentGrams: 30,
	})
	if err != nil {
		log.Fatalf("Failed to seed patient: %v", err)
	}
	fmt.Printf("Seeded patient %s\n", patient.RegistryNumber)
}
