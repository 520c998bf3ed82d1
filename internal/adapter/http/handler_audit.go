package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/cultivo/cultivo/internal/adapter/http/middleware"
	"github.com/cultivo/cultivo/internal/adapter/http/response"
	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/usecase"
)

// AuditHandler handles HTTP requests for the audit trail
type AuditHandler struct {
	queryService *usecase.AuditQueryService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(queryService *usecase.AuditQueryService) *AuditHandler {
	return &AuditHandler{queryService: queryService}
}

// RegisterRoutes registers audit routes
func (h *AuditHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	router.HandleFunc("/api/v1/audit/recent", auth.RequireAuth(h.Recent)).Methods("GET")
	router.HandleFunc("/api/v1/audit/search", auth.RequireAuth(h.Search)).Methods("GET")
	router.HandleFunc("/api/v1/audit/entity/{type}/{id}", auth.RequireAuth(h.ByEntity)).Methods("GET")
	router.HandleFunc("/api/v1/audit/user/{id}", auth.RequireAuth(h.ByActor)).Methods("GET")
	router.HandleFunc("/api/v1/audit/types", auth.RequireAuth(h.ByEntityTypes)).Methods("GET")
}

// Recent returns the newest audit entries across all entities
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queryService.Recent(r.Context(), parseLimit(r))
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Audit entries retrieved", entries)
}

// ByEntity returns the full history of one entity, newest first
func (h *AuditHandler) ByEntity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	entries, err := h.queryService.ByEntity(r.Context(), vars["type"], vars["id"])
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Audit entries retrieved", entries)
}

// ByActor returns the recent activity of one operator
func (h *AuditHandler) ByActor(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queryService.ByActor(r.Context(), mux.Vars(r)["id"], parseLimit(r))
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Audit entries retrieved", entries)
}

// ByEntityTypes returns recent entries for a set of entity types
func (h *AuditHandler) ByEntityTypes(w http.ResponseWriter, r *http.Request) {
	typesParam := r.URL.Query().Get("types")
	if typesParam == "" {
		response.BadRequest(w, "types query parameter is required")
		return
	}

	var entityTypes []string
	for _, t := range strings.Split(typesParam, ",") {
		if t = strings.TrimSpace(t); t != "" {
			entityTypes = append(entityTypes, t)
		}
	}

	entries, err := h.queryService.ByEntityTypes(r.Context(), entityTypes, parseLimit(r))
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Audit entries retrieved", entries)
}

// Search returns entries matching the combined filters
func (h *AuditHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter := domain.AuditFilter{
		UserID:     r.URL.Query().Get("user_id"),
		EntityType: r.URL.Query().Get("entity_type"),
		Action:     domain.AuditAction(r.URL.Query().Get("action")),
		Limit:      parseLimit(r),
	}

	if startStr := r.URL.Query().Get("start"); startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			response.BadRequest(w, "start must be an RFC 3339 timestamp")
			return
		}
		filter.StartDate = &start
	}
	if endStr := r.URL.Query().Get("end"); endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			response.BadRequest(w, "end must be an RFC 3339 timestamp")
			return
		}
		filter.EndDate = &end
	}

	entries, err := h.queryService.Search(r.Context(), filter)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Audit entries retrieved", entries)
}
