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

// ComplianceHandler handles HTTP requests for institutional documents,
// waste disposal records and environment readings
type ComplianceHandler struct {
	documentUseCase    *usecase.DocumentUseCase
	wasteUseCase       *usecase.WasteUseCase
	environmentUseCase *usecase.EnvironmentUseCase
}

// NewComplianceHandler creates a new compliance handler
func NewComplianceHandler(documentUseCase *usecase.DocumentUseCase, wasteUseCase *usecase.WasteUseCase, environmentUseCase *usecase.EnvironmentUseCase) *ComplianceHandler {
	return &ComplianceHandler{
		documentUseCase:    documentUseCase,
		wasteUseCase:       wasteUseCase,
		environmentUseCase: environmentUseCase,
	}
}

// RegisterRoutes registers compliance routes
func (h *ComplianceHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/documents", auth.RequireAuth(h.CreateDocument)).Methods("POST")
	router.HandleFunc("/api/v1/documents", auth.RequireAuth(h.ListDocuments)).Methods("GET")
	router.HandleFunc("/api/v1/documents/expiring", auth.RequireAuth(h.ExpiringDocuments)).Methods("GET")
	router.HandleFunc("/api/v1/documents/{id}", auth.RequireAuth(h.GetDocument)).Methods("GET")
	router.HandleFunc("/api/v1/documents/{id}", auth.RequireAuth(h.UpdateDocument)).Methods("PATCH")
	router.HandleFunc("/api/v1/documents/{id}", auth.RequireAdmin(h.DeleteDocument)).Methods("DELETE")

	router.HandleFunc("/api/v1/waste", auth.RequireAuth(h.CreateWasteRecord)).Methods("POST")
	router.HandleFunc("/api/v1/waste", auth.RequireAuth(h.ListWasteRecords)).Methods("GET")
	router.HandleFunc("/api/v1/waste/{id}", auth.RequireAuth(h.GetWasteRecord)).Methods("GET")

	router.HandleFunc("/api/v1/environment/readings", auth.RequireAuth(h.RecordReading)).Methods("POST")
	router.HandleFunc("/api/v1/environment/readings", auth.RequireAuth(h.ListReadings)).Methods("GET")
}

// CreateDocument files a new institutional document
func (h *ComplianceHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	document, err := h.documentUseCase.CreateDocument(r.Context(), actor, req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Document created", document)
}

// GetDocument handles retrieving a single document
func (h *ComplianceHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	document, err := h.documentUseCase.GetDocument(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Document retrieved", document)
}

// ListDocuments handles listing documents with filters
func (h *ComplianceHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	filter := domain.DocumentFilter{}

	if category := r.URL.Query().Get("category"); category != "" {
		c := domain.DocumentCategory(category)
		filter.Category = &c
	}
	filter.Limit = parseLimit(r)

	documents, err := h.documentUseCase.ListDocuments(r.Context(), filter)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Documents retrieved", documents)
}

// ExpiringDocuments lists documents expiring within a day window
func (h *ComplianceHandler) ExpiringDocuments(w http.ResponseWriter, r *http.Request) {
	withinDays := 30
	if daysStr := r.URL.Query().Get("within_days"); daysStr != "" {
		if days, err := strconv.Atoi(daysStr); err == nil && days > 0 {
			withinDays = days
		}
	}

	documents, err := h.documentUseCase.ExpiringDocuments(r.Context(), withinDays)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Expiring documents retrieved", documents)
}

// UpdateDocument handles partial document updates
func (h *ComplianceHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	document, err := h.documentUseCase.UpdateDocument(r.Context(), actor, mux.Vars(r)["id"], req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Document updated", document)
}

// DeleteDocument removes a document record
func (h *ComplianceHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.documentUseCase.DeleteDocument(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Document deleted", nil)
}

// CreateWasteRecord records a witnessed disposal
func (h *ComplianceHandler) CreateWasteRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.CreateWasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	record, err := h.wasteUseCase.CreateWasteRecord(r.Context(), actor, req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Waste record created", record)
}

// GetWasteRecord handles retrieving a single waste record
func (h *ComplianceHandler) GetWasteRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.wasteUseCase.GetWasteRecord(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Waste record retrieved", record)
}

// ListWasteRecords handles listing waste records with filters
func (h *ComplianceHandler) ListWasteRecords(w http.ResponseWriter, r *http.Request) {
	filter := domain.WasteFilter{}

	if sourceType := r.URL.Query().Get("source_type"); sourceType != "" {
		filter.SourceType = &sourceType
	}
	filter.Limit = parseLimit(r)

	records, err := h.wasteUseCase.ListWasteRecords(r.Context(), filter)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Waste records retrieved", records)
}

// RecordReading stores one climate measurement
func (h *ComplianceHandler) RecordReading(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.RecordReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	reading, err := h.environmentUseCase.RecordReading(r.Context(), actor, req)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Reading recorded", reading)
}

// ListReadings handles listing environment readings for a room
func (h *ComplianceHandler) ListReadings(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")

	readings, err := h.environmentUseCase.ListReadings(r.Context(), room, parseLimit(r))
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Readings retrieved", readings)
}
