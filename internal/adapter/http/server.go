package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cultivo/cultivo/internal/adapter/http/middleware"
	"github.com/cultivo/cultivo/internal/service/logger"
	"github.com/cultivo/cultivo/internal/usecase"
)

// ServerConfig represents server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Handlers groups the HTTP handlers mounted on the server
type Handlers struct {
	Auth       *AuthHandler
	Plant      *PlantHandler
	Harvest    *HarvestHandler
	Patient    *PatientHandler
	Compliance *ComplianceHandler
	Audit      *AuditHandler
}

// Server represents the HTTP server
type Server struct {
	addr   string
	log    logger.Logger
	server *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	config ServerConfig,
	handlers Handlers,
	auth *middleware.AuthMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
	log logger.Logger,
) *Server {
	router := mux.NewRouter()

	handlers.Auth.RegisterRoutes(router, auth)
	handlers.Plant.RegisterRoutes(router, auth)
	handlers.Harvest.RegisterRoutes(router, auth)
	handlers.Patient.RegisterRoutes(router, auth)
	handlers.Compliance.RegisterRoutes(router, auth)
	handlers.Audit.RegisterRoutes(router, auth)

	router.Use(middleware.Correlation)
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware)
	router.Use(recoveryMiddleware(log))
	if rateLimit != nil {
		router.Use(rateLimit.RateLimit)
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return &Server{
		addr: ":" + config.Port,
		log:  log,
		server: &http.Server{
			Addr:         ":" + config.Port,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// NewHandlers wires the use cases into their HTTP handlers
func NewHandlers(
	authUseCase *usecase.AuthUseCase,
	plantUseCase *usecase.PlantUseCase,
	harvestUseCase *usecase.HarvestUseCase,
	extractUseCase *usecase.ExtractUseCase,
	patientUseCase *usecase.PatientUseCase,
	distributionUseCase *usecase.DistributionUseCase,
	documentUseCase *usecase.DocumentUseCase,
	wasteUseCase *usecase.WasteUseCase,
	environmentUseCase *usecase.EnvironmentUseCase,
	auditQueryService *usecase.AuditQueryService,
) Handlers {
	return Handlers{
		Auth:       NewAuthHandler(authUseCase),
		Plant:      NewPlantHandler(plantUseCase),
		Harvest:    NewHarvestHandler(harvestUseCase, extractUseCase),
		Patient:    NewPatientHandler(patientUseCase, distributionUseCase),
		Compliance: NewComplianceHandler(documentUseCase, wasteUseCase, environmentUseCase),
		Audit:      NewAuditHandler(auditQueryService),
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info(context.Background(), "starting HTTP server", map[string]interface{}{"addr": s.addr})
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info(ctx, "shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}

// Middleware

func loggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info(r.Context(), "request completed", map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"duration": time.Since(start).String(),
			})
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Correlation-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func recoveryMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error(r.Context(), "panic recovered", nil, map[string]interface{}{
						"panic": rec,
						"path":  r.URL.Path,
					})
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
