package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpadapter "github.com/cultivo/cultivo/internal/adapter/http"
	"github.com/cultivo/cultivo/internal/adapter/http/middleware"
	"github.com/cultivo/cultivo/internal/adapter/persistence"
	"github.com/cultivo/cultivo/internal/config"
	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
	"github.com/cultivo/cultivo/internal/service/ratelimit"
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
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	structuredLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "cultivo",
	})
	structuredLogger.Info(ctx, "application starting", map[string]interface{}{
		"env":   cfg.Server.Environment,
		"store": cfg.Store.Driver,
	})

	store, cleanup, err := buildStore(ctx, cfg, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "failed to initialize document store", err, nil)
		os.Exit(1)
	}
	defer cleanup()

	rateLimitService, err := ratelimit.New(ratelimit.Config{
		Enabled:  cfg.RateLimit.Enabled,
		RedisURL: cfg.Redis.URL,
	}, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "failed to initialize rate limiter", err, nil)
		os.Exit(1)
	}

	tokenService := token.NewJWTService(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)

	auditRecorder := usecase.NewAuditRecorder(store, structuredLogger)
	auditQueryService := usecase.NewAuditQueryService(store, structuredLogger)
	controlNumbers := usecase.NewControlNumberGenerator(store)

	handlers := httpadapter.NewHandlers(
		usecase.NewAuthUseCase(store, tokenService, auditRecorder, structuredLogger),
		usecase.NewPlantUseCase(store, auditRecorder, controlNumbers, structuredLogger),
		usecase.NewHarvestUseCase(store, auditRecorder, controlNumbers, structuredLogger),
		usecase.NewExtractUseCase(store, auditRecorder, controlNumbers, structuredLogger),
		usecase.NewPatientUseCase(store, auditRecorder, structuredLogger),
		usecase.NewDistributionUseCase(store, auditRecorder, structuredLogger),
		usecase.NewDocumentUseCase(store, auditRecorder, structuredLogger),
		usecase.NewWasteUseCase(store, auditRecorder, structuredLogger),
		usecase.NewEnvironmentUseCase(store, auditRecorder, structuredLogger),
		auditQueryService,
	)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	var rateLimitMiddleware *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		rateLimitMiddleware = middleware.NewRateLimitMiddleware(
			rateLimitService,
			structuredLogger,
			cfg.RateLimit.Requests,
			cfg.RateLimit.Window,
			cfg.RateLimit.BlockDuration,
		)
	}

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, handlers, authMiddleware, rateLimitMiddleware, structuredLogger)

	go func() {
		if err := server.Start(); err != nil {
			structuredLogger.Error(ctx, "server stopped", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "graceful shutdown failed", err, nil)
		os.Exit(1)
	}
	structuredLogger.Info(ctx, "application stopped", nil)
}

func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger) (ports.DocumentStore, func(), error) {
	if cfg.Store.Driver == "memory" {
		store := persistence.NewMemoryDocumentStore()
		registerIndexes(store)
		log.Info(ctx, "using in-memory document store", nil)
		return store, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL())
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info(ctx, "database connection established", map[string]interface{}{
		"host": cfg.Database.Host,
		"name": cfg.Database.DBName,
	})

	return persistence.NewPostgresDocumentStore(db), func() { db.Close() }, nil
}

// registerIndexes declares the composite indexes the deployment maintains.
// Audit searches over other filter combinations fall back to the degraded
// single-filter path.
func registerIndexes(store *persistence.MemoryDocumentStore) {
	store.RegisterIndex("audit_logs", []string{"entityId", "entityType"}, "timestamp")
	store.RegisterIndex("audit_logs", []string{"userId"}, "timestamp")
	store.RegisterIndex("audit_logs", []string{"entityType"}, "timestamp")

	store.RegisterIndex("plants", []string{"stage"}, "createdAt")
	store.RegisterIndex("plants", []string{"room"}, "createdAt")
	store.RegisterIndex("plants", []string{"strain"}, "createdAt")
	store.RegisterIndex("plants", []string{"stage", "room"}, "createdAt")
	store.RegisterIndex("plants", []string{"stage", "strain"}, "createdAt")
	store.RegisterIndex("plants", []string{"room", "strain"}, "createdAt")
	store.RegisterIndex("plants", []string{"stage", "room", "strain"}, "createdAt")
	store.RegisterIndex("harvests", []string{"plantId"}, "createdAt")
	store.RegisterIndex("harvests", []string{"status"}, "createdAt")
	store.RegisterIndex("harvests", []string{"plantId", "status"}, "createdAt")
	store.RegisterIndex("patients", []string{"active"}, "createdAt")
	store.RegisterIndex("patients", []string{"physician"}, "createdAt")
	store.RegisterIndex("patients", []string{"active", "physician"}, "createdAt")
	store.RegisterIndex("distributions", []string{"patientId"}, "createdAt")
	store.RegisterIndex("extracts", []string{"harvestId"}, "createdAt")
	store.RegisterIndex("extracts", []string{"method"}, "createdAt")
	store.RegisterIndex("extracts", []string{"harvestId", "method"}, "createdAt")
	store.RegisterIndex("institutional_documents", []string{"category"}, "createdAt")
	store.RegisterIndex("waste_records", []string{"sourceType"}, "createdAt")
	store.RegisterIndex("environment_readings", []string{"room"}, "recordedAt")
}
