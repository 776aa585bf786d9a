package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/carelink/carelink-api/internal/service"
)

type AdminHandler struct {
	reportSvc *service.ReportService
}

func NewAdminHandler(reportSvc *service.ReportService) *AdminHandler {
	return &AdminHandler{reportSvc: reportSvc}
}

func (h *AdminHandler) AppointmentSummary(c *gin.Context) {
	summary, err := h.reportSvc.AppointmentSummary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, summary)
}
