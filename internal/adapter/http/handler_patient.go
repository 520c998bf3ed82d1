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

// PatientHandler handles HTTP requests for patients and distributions
type PatientHandler struct {
	patientUseCase      *usecase.PatientUseCase
	distributionUseCase *usecase.DistributionUseCase
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientUseCase *usecase.PatientUseCase, distributionUseCase *usecase.DistributionUseCase) *PatientHandler {
	return &PatientHandler{patientUseCase: patientUseCase, distributionUseCase: distributionUseCase}
}

// RegisterRoutes registers patient and distribution routes
func (h *PatientHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/patients", auth.RequireAuth(h.CreatePatient)).Methods("POST")
	router.HandleFunc("/api/v1/patients", auth.RequireAuth(h.ListPatients)).Methods("GET")
	router.HandleFunc("/api/v1/patients/{id}", auth.RequireAuth(h.GetPatient)).Methods("GET")
	router.HandleFunc("/api/v1/patients/{id}", auth.RequireAuth(h.UpdatePatient)).Methods("PATCH")
	router.HandleFunc("/api/v1/patients/{id}", auth.RequireAdmin(h.DeletePatient)).Methods("DELETE")
	router.HandleFunc("/api/v1/patients/{id}/deactivate", auth.RequireAuth(h.DeactivatePatient)).Methods("POST")

	router.HandleFunc("/api/v1/distributions", auth.RequireAuth(h.CreateDistribution)).Methods("POST")
	router.HandleFunc("/api/v1/distributions", auth.RequireAuth(h.ListDistributions)).Methods("GET")
	router.HandleFunc("/api/v1/distributions/{id}", auth.RequireAuth(h.GetDistribution)).Methods("GET")
	router.HandleFunc("/api/v1/distributions/{id}", auth.RequireAdmin(h.DeleteDistribution)).Methods("DELETE")
}

// CreatePatient registers a new patient
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	patient, err := h.patientUseCase.CreatePatient(r.Context(), actor, req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Patient created", patient)
}

// GetPatient handles retrieving a single patient
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patientUseCase.GetPatient(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved", patient)
}

// ListPatients handles listing patients with filters
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	filter := domain.PatientFilter{}

	if activeStr := r.URL.Query().Get("active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			filter.Active = &active
		}
	}
	if physician := r.URL.Query().Get("physician"); physician != "" {
		filter.Physician = &physician
	}
	filter.Limit = parseLimit(r)

	patients, err := h.patientUseCase.ListPatients(r.Context(), filter)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved", patients)
}

// UpdatePatient handles partial patient updates
func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	patient, err := h.patientUseCase.UpdatePatient(r.Context(), actor, mux.Vars(r)["id"], req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Patient updated", patient)
}

// DeactivatePatient removes a patient from the active registry
func (h *PatientHandler) DeactivatePatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	patient, err := h.patientUseCase.DeactivatePatient(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Patient deactivated", patient)
}

// DeletePatient removes a patient record
func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.patientUseCase.DeletePatient(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Patient deleted", nil)
}

// CreateDistribution records a product handoff to a patient
func (h *PatientHandler) CreateDistribution(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.CreateDistributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	distribution, err := h.distributionUseCase.CreateDistribution(r.Context(), actor, req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Distribution created", distribution)
}

// GetDistribution handles retrieving a single distribution
func (h *PatientHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	distribution, err := h.distributionUseCase.GetDistribution(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Distribution retrieved", distribution)
}

// ListDistributions handles listing distributions with filters
func (h *PatientHandler) ListDistributions(w http.ResponseWriter, r *http.Request) {
	filter := domain.DistributionFilter{}

	if patientID := r.URL.Query().Get("patient_id"); patientID != "" {
		filter.PatientID = &patientID
	}
	filter.Limit = parseLimit(r)

	distributions, err := h.distributionUseCase.ListDistributions(r.Context(), filter)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Distributions retrieved", distributions)
}

// DeleteDistribution removes a distribution record
func (h *PatientHandler) DeleteDistribution(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.distributionUseCase.DeleteDistribution(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Distribution deleted", nil)
}
