package v1

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/carelink/carelink-api/internal/domain"
	"github.com/carelink/carelink-api/internal/domain/appointment"
	"github.com/carelink/carelink-api/internal/domain/pharmacy"
	"github.com/carelink/carelink-api/internal/domain/prescription"
	"github.com/carelink/carelink-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondServiceErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"pharmacy missing", pharmacy.ErrPharmacyNotFound, http.StatusNotFound},
		{"appointment missing", appointment.ErrAppointmentNotFound, http.StatusNotFound},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict},
		{"slot conflict", appointment.ErrAppointmentConflict, http.StatusConflict},
		{"bad stock status", pharmacy.ErrInvalidStockStatus, http.StatusBadRequest},
		{"bad quantity", pharmacy.ErrInvalidQuantity, http.StatusBadRequest},
		{"illegal transition", prescription.ErrInvalidStatusTransition, http.StatusBadRequest},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"locked out", service.ErrAccountLocked, http.StatusTooManyRequests},
		{"validation", &service.ValidationError{Fields: []string{"name must not be empty"}}, http.StatusBadRequest},
		{"wrapped sentinel", errors.Join(errors.New("context"), pharmacy.ErrStockNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tt.err)
			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestParseUUIDRejectsGarbage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	_, ok := parseUUID(c, "id")
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
