package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelink/carelink-api/internal/domain/medicalrecord"
	"github.com/carelink/carelink-api/internal/domain/prescription"
	"github.com/carelink/carelink-api/internal/handler/middleware"
	"github.com/carelink/carelink-api/internal/service"
)

type RecordHandler struct {
	consultSvc *service.ConsultationService
}

func NewRecordHandler(consultSvc *service.ConsultationService) *RecordHandler {
	return &RecordHandler{consultSvc: consultSvc}
}

type dosageRequest struct {
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

type prescriptionItemRequest struct {
	MedicineName string          `json:"medicine_name"`
	Quantity     int             `json:"quantity"`
	Instructions string          `json:"instructions"`
	Dosages      []dosageRequest `json:"dosages"`
}

type completeConsultationRequest struct {
	AppointmentID uuid.UUID                 `json:"appointment_id" binding:"required"`
	Diagnosis     string                    `json:"diagnosis" binding:"required"`
	Notes         string                    `json:"notes"`
	PharmacyID    *uuid.UUID                `json:"pharmacy_id"`
	Items         []prescriptionItemRequest `json:"items"`
}

// Create completes a consultation: writes the medical record and, when items
// are present, the prescription, atomically.
func (h *RecordHandler) Create(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req completeConsultationRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &service.CompleteConsultationCommand{
		AppointmentID: req.AppointmentID,
		Diagnosis:     req.Diagnosis,
		Notes:         req.Notes,
		PharmacyID:    req.PharmacyID,
	}
	for _, item := range req.Items {
		ic := prescription.ItemCommand{
			MedicineName: item.MedicineName,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		}
		for _, d := range item.Dosages {
			ic.Dosages = append(ic.Dosages, prescription.DosageCommand{
				Dosage:    d.Dosage,
				Frequency: d.Frequency,
				Duration:  d.Duration,
			})
		}
		cmd.Items = append(cmd.Items, ic)
	}

	record, err := h.consultSvc.CompleteConsultation(c.Request.Context(), claims.UserID, cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, record)
}

func (h *RecordHandler) Get(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	record, err := h.consultSvc.GetRecord(c.Request.Context(), claims.UserID, claims.Role, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, record)
}

func (h *RecordHandler) List(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	q := &medicalrecord.ListRecordsQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	page, err := h.consultSvc.ListRecords(c.Request.Context(), claims.UserID, claims.Role, q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}
