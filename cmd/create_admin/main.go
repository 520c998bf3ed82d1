package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/cultivo/cultivo/internal/adapter/persistence"
	"github.com/cultivo/cultivo/internal/config"
	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/service/logger"
	"github.com/cultivo/cultivo/internal/service/token"
	"github.com/cultivo/cultivo/internal/usecase"
)

// bootstrapActor attributes the initial admin creation in the audit trail.
var bootstrapActor = domain.Actor{UserID: "system", UserEmail: "system@cultivo.local"}

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

	email := "admin@cultivo.local"
	password := "admin123!"
	name := "Administrator"

	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if len(os.Args) > 2 {
		password = os.Args[2]
	}
	if len(os.Args) > 3 {
		name = os.Args[3]
	}

	structuredLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "cultivo-create-admin",
	})

	store := persistence.NewPostgresDocumentStore(db)
	auditRecorder := usecase.NewAuditRecorder(store, structuredLogger)
	tokenService := token.NewJWTService(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)
	authUseCase := usecase.NewAuthUseCase(store, tokenService, auditRecorder, structuredLogger)

	user, err := authUseCase.CreateUser(ctx, bootstrapActor, usecase.CreateUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: name,
		Role:        domain.UserRoleAdmin,
	})
	if err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created: id=%s email=%s\n", user.ID, user.Email)
}
