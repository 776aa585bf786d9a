package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelink/carelink-api/internal/domain/pharmacy"
	"github.com/carelink/carelink-api/internal/handler/middleware"
	"github.com/carelink/carelink-api/internal/service"
)

type PharmacyHandler struct {
	pharmSvc *service.PharmacyService
}

func NewPharmacyHandler(pharmSvc *service.PharmacyService) *PharmacyHandler {
	return &PharmacyHandler{pharmSvc: pharmSvc}
}

// GetOwn resolves the caller's pharmacy, auto-provisioning a placeholder on
// first access.
func (h *PharmacyHandler) GetOwn(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	p, err := h.pharmSvc.ResolvePharmacy(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

type updatePharmacyRequest struct {
	Name           *string                  `json:"name"`
	Address        *string                  `json:"address"`
	City           *string                  `json:"city"`
	State          *string                  `json:"state"`
	Pincode        *string                  `json:"pincode"`
	Latitude       *float64                 `json:"latitude"`
	Longitude      *float64                 `json:"longitude"`
	Phone          *string                  `json:"phone"`
	Email          *string                  `json:"email"`
	OperatingHours *pharmacy.OperatingHours `json:"operating_hours"`
	Services       *[]string                `json:"services"`
}

func (h *PharmacyHandler) Update(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updatePharmacyRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.pharmSvc.UpdatePharmacy(c.Request.Context(), claims.UserID, &pharmacy.UpdatePharmacyCommand{
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Pincode:        req.Pincode,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Phone:          req.Phone,
		Email:          req.Email,
		OperatingHours: req.OperatingHours,
		Services:       req.Services,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PharmacyHandler) Inventory(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := h.pharmSvc.Inventory(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, items)
}

type createBatchRequest struct {
	MedicineID  uuid.UUID `json:"medicine_id" binding:"required"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
}

func (h *PharmacyHandler) CreateBatch(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createBatchRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.pharmSvc.RecordBatch(c.Request.Context(), claims.UserID, &pharmacy.CreateBatchCommand{
		MedicineID:  req.MedicineID,
		BatchNumber: req.BatchNumber,
		Quantity:    req.Quantity,
		ExpiryDate:  req.ExpiryDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, b)
}

func (h *PharmacyHandler) Alerts(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	alerts, err := h.pharmSvc.Alerts(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, alerts)
}

type setStockStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *PharmacyHandler) SetStockStatus(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	stockID, ok := parseUUID(c, "stockId")
	if !ok {
		return
	}

	var req setStockStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.pharmSvc.SetStockStatus(c.Request.Context(), claims.UserID, stockID, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Message: "stock status updated"})
}

func (h *PharmacyHandler) ListPrescriptions(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	page, err := h.pharmSvc.ListPrescriptions(c.Request.Context(), claims.UserID,
		c.Query("status"),
		parseQueryInt(c, "page", 1),
		parseQueryInt(c, "page_size", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

type updatePrescriptionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *PharmacyHandler) UpdatePrescriptionStatus(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updatePrescriptionStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	rx, err := h.pharmSvc.DispensePrescription(c.Request.Context(), claims.UserID, id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, rx)
}

// SearchNearby is the public patient-facing pharmacy search. A storage
// failure surfaces as 503: no canned fallback results.
func (h *PharmacyHandler) SearchNearby(c *gin.Context) {
	lat, ok := parseQueryFloat(c, "latitude")
	if !ok {
		return
	}
	lon, ok := parseQueryFloat(c, "longitude")
	if !ok {
		return
	}
	radius, ok := parseQueryFloat(c, "radius")
	if !ok {
		return
	}

	q := &pharmacy.NearbyQuery{
		Latitude:  lat,
		Longitude: lon,
		Service:   c.Query("service"),
	}
	if radius != nil {
		q.RadiusKm = *radius
	}

	results, err := h.pharmSvc.SearchNearby(c.Request.Context(), q)
	if err != nil {
		var validErr *service.ValidationError
		if errors.As(err, &validErr) {
			respondServiceError(c, err)
			return
		}
		respondError(c, http.StatusServiceUnavailable, "pharmacy search is temporarily unavailable")
		return
	}
	respondOK(c, results)
}
