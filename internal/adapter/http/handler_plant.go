package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cultivo/cultivo/internal/adapter/http/middleware"
	"github.com/cultivo/cultivo/internal/adapter/http/response"
	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/usecase"
)

// PlantHandler handles HTTP requests for plants
type PlantHandler struct {
	plantUseCase *usecase.PlantUseCase
}

// NewPlantHandler creates a new plant handler
func NewPlantHandler(plantUseCase *usecase.PlantUseCase) *PlantHandler {
	return &PlantHandler{plantUseCase: plantUseCase}
}

// RegisterRoutes registers plant routes
func (h *PlantHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/plants", auth.RequireAuth(h.CreatePlant)).Methods("POST")
	router.HandleFunc("/api/v1/plants", auth.RequireAuth(h.ListPlants)).Methods("GET")
	router.HandleFunc("/api/v1/plants/{id}", auth.RequireAuth(h.GetPlant)).Methods("GET")
	router.HandleFunc("/api/v1/plants/{id}", auth.RequireAuth(h.UpdatePlant)).Methods("PATCH")
	router.HandleFunc("/api/v1/plants/{id}", auth.RequireAdmin(h.DeletePlant)).Methods("DELETE")
	router.HandleFunc("/api/v1/plants/{id}/advance", auth.RequireAuth(h.AdvanceStage)).Methods("POST")
	router.HandleFunc("/api/v1/plants/{id}/destroy", auth.RequireAuth(h.DestroyPlant)).Methods("POST")
}

// CreatePlant handles plant registration
func (h *PlantHandler) CreatePlant(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.CreatePlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	plant, err := h.plantUseCase.CreatePlant(r.Context(), actor, req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Plant created", plant)
}

// GetPlant handles retrieving a single plant
func (h *PlantHandler) GetPlant(w http.ResponseWriter, r *http.Request) {
	plant, err := h.plantUseCase.GetPlant(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Plant retrieved", plant)
}

// ListPlants handles listing plants with filters
func (h *PlantHandler) ListPlants(w http.ResponseWriter, r *http.Request) {
	filter := domain.PlantFilter{}

	if stage := r.URL.Query().Get("stage"); stage != "" {
		s := domain.GrowthStage(stage)
		filter.Stage = &s
	}
	if room := r.URL.Query().Get("room"); room != "" {
		filter.Room = &room
	}
	if strain := r.URL.Query().Get("strain"); strain != "" {
		filter.Strain = &strain
	}
	filter.Limit = parseLimit(r)

	plants, err := h.plantUseCase.ListPlants(r.Context(), filter)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Plants retrieved", plants)
}

// UpdatePlant handles partial plant updates
func (h *PlantHandler) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.UpdatePlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	plant, err := h.plantUseCase.UpdatePlant(r.Context(), actor, mux.Vars(r)["id"], req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Plant updated", plant)
}

// AdvanceStage moves a plant to its next growth stage
func (h *PlantHandler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	plant, err := h.plantUseCase.AdvanceStage(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Plant stage advanced", plant)
}

type destroyPlantRequest struct {
	Reason string `json:"reason"`
}

// DestroyPlant marks a plant as destroyed
func (h *PlantHandler) DestroyPlant(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req destroyPlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Reason == "" {
		response.BadRequest(w, "Destruction reason is required")
		return
	}

	plant, err := h.plantUseCase.DestroyPlant(r.Context(), actor, mux.Vars(r)["id"], req.Reason)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Plant destroyed", plant)
}

// DeletePlant removes a plant record
func (h *PlantHandler) DeletePlant(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.plantUseCase.DeletePlant(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Plant deleted", nil)
}

func parseLimit(r *http.Request) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			return limit
		}
	}
	return 0
}
