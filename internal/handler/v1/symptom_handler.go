package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/carelink/carelink-api/internal/service"
)

type SymptomHandler struct {
	symptomSvc *service.SymptomService
}

func NewSymptomHandler(symptomSvc *service.SymptomService) *SymptomHandler {
	return &SymptomHandler{symptomSvc: symptomSvc}
}

type analyzeSymptomsRequest struct {
	Symptoms []string `json:"symptoms" binding:"required"`
}

func (h *SymptomHandler) Analyze(c *gin.Context) {
	var req analyzeSymptomsRequest
	if !bindJSON(c, &req) {
		return
	}

	analysis, err := h.symptomSvc.Analyze(c.Request.Context(), req.Symptoms)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, analysis)
}
