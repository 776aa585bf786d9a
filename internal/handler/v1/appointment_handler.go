package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelink/carelink-api/internal/domain/appointment"
	"github.com/carelink/carelink-api/internal/handler/middleware"
	"github.com/carelink/carelink-api/internal/service"
)

type AppointmentHandler struct {
	apptSvc *service.AppointmentService
}

func NewAppointmentHandler(apptSvc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{apptSvc: apptSvc}
}

type createAppointmentRequest struct {
	DoctorID     uuid.UUID `json:"doctor_id" binding:"required"`
	ScheduledAt  time.Time `json:"scheduled_at" binding:"required"`
	DurationMins int       `json:"duration_mins"`
	Reason       string    `json:"reason"`
	Notes        string    `json:"notes"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.apptSvc.Schedule(c.Request.Context(), claims.UserID, &service.ScheduleCommand{
		PatientUserID: claims.UserID,
		DoctorID:      req.DoctorID,
		ScheduledAt:   req.ScheduledAt,
		DurationMins:  req.DurationMins,
		Reason:        req.Reason,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.apptSvc.Get(c.Request.Context(), claims.UserID, claims.Role, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	q := &appointment.ListAppointmentsQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := appointment.ParseStatus(raw)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		q.Status = &status
	}

	page, err := h.apptSvc.List(c.Request.Context(), claims.UserID, claims.Role, q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

type updateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateAppointmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.apptSvc.UpdateStatus(c.Request.Context(), claims.UserID, claims.Role, id, req.Status, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.apptSvc.ListDoctors(c.Request.Context(), c.Query("specialty"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, doctors)
}

// confirm/cancel/complete are aliases over the status endpoint for clients
// that prefer verb routes.
func (h *AppointmentHandler) transitionTo(status appointment.Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.ClaimsFrom(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		id, ok := parseUUID(c, "id")
		if !ok {
			return
		}

		var reason string
		if status == appointment.StatusCancelled {
			var req struct {
				Reason string `json:"reason"`
			}
			// Body optional on cancel.
			_ = c.ShouldBindJSON(&req)
			reason = req.Reason
		}

		a, err := h.apptSvc.UpdateStatus(c.Request.Context(), claims.UserID, claims.Role, id, string(status), reason)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, a)
	}
}

func (h *AppointmentHandler) Confirm(c *gin.Context)  { h.transitionTo(appointment.StatusConfirmed)(c) }
func (h *AppointmentHandler) Cancel(c *gin.Context)   { h.transitionTo(appointment.StatusCancelled)(c) }
func (h *AppointmentHandler) Complete(c *gin.Context) { h.transitionTo(appointment.StatusCompleted)(c) }
