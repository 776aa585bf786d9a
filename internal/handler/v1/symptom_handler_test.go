package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carelink/carelink-api/internal/service"
)

func newSymptomRouter() *gin.Engine {
	r := gin.New()
	h := NewSymptomHandler(service.NewSymptomService(nil, zap.NewNop()))
	r.POST("/api/symptoms/analyze", h.Analyze)
	return r
}

func TestSymptomAnalyzeEndpoint(t *testing.T) {
	r := newSymptomRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/symptoms/analyze",
		strings.NewReader(`{"symptoms":["fever","headache"]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data service.SymptomAnalysis `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, service.SourceKeywords, body.Data.Source)
	require.NotEmpty(t, body.Data.PossibleConditions)
}

func TestSymptomAnalyzeEndpointRejectsEmptyList(t *testing.T) {
	r := newSymptomRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/symptoms/analyze",
		strings.NewReader(`{"symptoms":["  "]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSymptomAnalyzeEndpointRejectsMissingBody(t *testing.T) {
	r := newSymptomRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/symptoms/analyze", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
