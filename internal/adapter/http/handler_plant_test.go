package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivo/cultivo/internal/adapter/http/middleware"
	"github.com/cultivo/cultivo/internal/adapter/http/response"
	"github.com/cultivo/cultivo/internal/adapter/persistence"
	"github.com/cultivo/cultivo/internal/domain"
	"github.com/cultivo/cultivo/internal/service/logger"
	"github.com/cultivo/cultivo/internal/service/token"
	"github.com/cultivo/cultivo/internal/usecase"
)

func newTestRouter(t *testing.T) (*mux.Router, string) {
	t.Helper()

	store := persistence.NewMemoryDocumentStore()
	store.RegisterIndex("audit_logs", []string{"entityId", "entityType"}, "timestamp")
	log := logger.New(logger.Config{Level: "panic", Format: "text", ServiceName: "test"})
	recorder := usecase.NewAuditRecorder(store, log)
	control := usecase.NewControlNumberGenerator(store)
	plantUseCase := usecase.NewPlantUseCase(store, recorder, control, log)

	tokens := token.NewJWTService("test-secret", time.Hour)
	bearer, err := tokens.GenerateToken(&domain.User{
		ID:    "user-1",
		Email: "grower@cultivo.local",
		Role:  domain.UserRoleCultivator,
	})
	require.NoError(t, err)

	router := mux.NewRouter()
	NewPlantHandler(plantUseCase).RegisterRoutes(router, middleware.NewAuthMiddleware(tokens))
	return router, bearer
}

func doRequest(router *mux.Router, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPlantHandlerCreate(t *testing.T) {
	router, bearer := newTestRouter(t)

	rec := doRequest(router, "POST", "/api/v1/plants", bearer,
		`{"strain":"ACDC","room":"veg-1","origin":"SEED"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Status)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ACDC", data["strain"])
	assert.Equal(t, "SEEDLING", data["stage"])
	assert.NotEmpty(t, data["controlNumber"])
}

func TestPlantHandlerRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, "POST", "/api/v1/plants", "",
		`{"strain":"ACDC","room":"veg-1","origin":"SEED"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(router, "POST", "/api/v1/plants", "garbage-token",
		`{"strain":"ACDC","room":"veg-1","origin":"SEED"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlantHandlerValidation(t *testing.T) {
	router, bearer := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"strain":`},
		{"missing strain", `{"room":"veg-1","origin":"SEED"}`},
		{"bad origin", `{"strain":"ACDC","room":"veg-1","origin":"CUTTING"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, "POST", "/api/v1/plants", bearer, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPlantHandlerGetNotFound(t *testing.T) {
	router, bearer := newTestRouter(t)

	rec := doRequest(router, "GET", "/api/v1/plants/missing", bearer, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlantHandlerAdvanceAndDestroy(t *testing.T) {
	router, bearer := newTestRouter(t)

	rec := doRequest(router, "POST", "/api/v1/plants", bearer,
		`{"strain":"ACDC","room":"veg-1","origin":"SEED"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	id := envelope.Data.(map[string]interface{})["id"].(string)

	rec = doRequest(router, "POST", "/api/v1/plants/"+id+"/advance", bearer, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, "POST", "/api/v1/plants/"+id+"/destroy", bearer, `{"reason":"pests"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// A destroyed plant cannot advance again.
	rec = doRequest(router, "POST", "/api/v1/plants/"+id+"/advance", bearer, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
