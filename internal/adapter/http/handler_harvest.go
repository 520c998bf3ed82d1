package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cultivo/cultivo/internal/adapter/http/middleware"
	"github.com/cultivo/cultivo/internal/adapter/http/response"
	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/usecase"
)

// HarvestHandler handles HTTP requests for harvests and extracts
type HarvestHandler struct {
	harvestUseCase *usecase.HarvestUseCase
	extractUseCase *usecase.ExtractUseCase
}

// NewHarvestHandler creates a new harvest handler
func NewHarvestHandler(harvestUseCase *usecase.HarvestUseCase, extractUseCase *usecase.ExtractUseCase) *HarvestHandler {
	return &HarvestHandler{harvestUseCase: harvestUseCase, extractUseCase: extractUseCase}
}

// RegisterRoutes registers harvest and extract routes
func (h *HarvestHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/harvests", auth.RequireAuth(h.CreateHarvest)).Methods("POST")
	router.HandleFunc("/api/v1/harvests", auth.RequireAuth(h.ListHarvests)).Methods("GET")
	router.HandleFunc("/api/v1/harvests/{id}", auth.RequireAuth(h.GetHarvest)).Methods("GET")
	router.HandleFunc("/api/v1/harvests/{id}", auth.RequireAdmin(h.DeleteHarvest)).Methods("DELETE")
	router.HandleFunc("/api/v1/harvests/{id}/dry-weight", auth.RequireAuth(h.RecordDryWeight)).Methods("POST")
	router.HandleFunc("/api/v1/harvests/{id}/complete", auth.RequireAuth(h.CompleteHarvest)).Methods("POST")

	router.HandleFunc("/api/v1/extracts", auth.RequireAuth(h.CreateExtract)).Methods("POST")
	router.HandleFunc("/api/v1/extracts", auth.RequireAuth(h.ListExtracts)).Methods("GET")
	router.HandleFunc("/api/v1/extracts/{id}", auth.RequireAuth(h.GetExtract)).Methods("GET")
	router.HandleFunc("/api/v1/extracts/{id}", auth.RequireAuth(h.UpdateExtract)).Methods("PATCH")
	router.HandleFunc("/api/v1/extracts/{id}", auth.RequireAdmin(h.DeleteExtract)).Methods("DELETE")
}

// CreateHarvest takes a flowering plant to harvest
func (h *HarvestHandler) CreateHarvest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.CreateHarvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	harvest, err := h.harvestUseCase.CreateHarvest(r.Context(), actor, req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Harvest created", harvest)
}

// GetHarvest handles retrieving a single harvest
func (h *HarvestHandler) GetHarvest(w http.ResponseWriter, r *http.Request) {
	harvest, err := h.harvestUseCase.GetHarvest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Harvest retrieved", harvest)
}

// ListHarvests handles listing harvests with filters
func (h *HarvestHandler) ListHarvests(w http.ResponseWriter, r *http.Request) {
	filter := domain.HarvestFilter{}

	if plantID := r.URL.Query().Get("plant_id"); plantID != "" {
		filter.PlantID = &plantID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.HarvestStatus(status)
		filter.Status = &s
	}
	filter.Limit = parseLimit(r)

	harvests, err := h.harvestUseCase.ListHarvests(r.Context(), filter)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Harvests retrieved", harvests)
}

type dryWeightRequest struct {
	DryWeightGrams float64 `json:"dryWeightGrams"`
}

// RecordDryWeight moves a drying harvest to curing
func (h *HarvestHandler) RecordDryWeight(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req dryWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	harvest, err := h.harvestUseCase.RecordDryWeight(r.Context(), actor, mux.Vars(r)["id"], req.DryWeightGrams)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Dry weight recorded", harvest)
}

// CompleteHarvest closes out a curing harvest
func (h *HarvestHandler) CompleteHarvest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	harvest, err := h.harvestUseCase.CompleteHarvest(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Harvest completed", harvest)
}

// DeleteHarvest removes a harvest record
func (h *HarvestHandler) DeleteHarvest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.harvestUseCase.DeleteHarvest(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Harvest deleted", nil)
}

// CreateExtract records an extraction run
func (h *HarvestHandler) CreateExtract(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.CreateExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	extract, err := h.extractUseCase.CreateExtract(r.Context(), actor, req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Extract created", extract)
}

// GetExtract handles retrieving a single extract
func (h *HarvestHandler) GetExtract(w http.ResponseWriter, r *http.Request) {
	extract, err := h.extractUseCase.GetExtract(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Extract retrieved", extract)
}

// ListExtracts handles listing extracts with filters
func (h *HarvestHandler) ListExtracts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ExtractFilter{}

	if harvestID := r.URL.Query().Get("harvest_id"); harvestID != "" {
		filter.HarvestID = &harvestID
	}
	if method := r.URL.Query().Get("method"); method != "" {
		m := domain.ExtractionMethod(method)
		filter.Method = &m
	}
	filter.Limit = parseLimit(r)

	extracts, err := h.extractUseCase.ListExtracts(r.Context(), filter)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Extracts retrieved", extracts)
}

// UpdateExtract handles partial extract updates
func (h *HarvestHandler) UpdateExtract(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.UpdateExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	extract, err := h.extractUseCase.UpdateExtract(r.Context(), actor, mux.Vars(r)["id"], req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Extract updated", extract)
}

// DeleteExtract removes an extract record
func (h *HarvestHandler) DeleteExtract(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.extractUseCase.DeleteExtract(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Extract deleted", nil)
}
