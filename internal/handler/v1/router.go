package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/carelink/carelink-api/internal/config"
	"github.com/carelink/carelink-api/internal/domain"
	"github.com/carelink/carelink-api/internal/handler/middleware"
	"github.com/carelink/carelink-api/pkg/auth"
)

type Handlers struct {
	Auth        *AuthHandler
	Appointment *AppointmentHandler
	Pharmacy    *PharmacyHandler
	Record      *RecordHandler
	Admin       *AdminHandler
	Symptom     *SymptomHandler
}

// RegisterRoutes mounts the v1 API under /api.
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtManager *auth.JWTManager, cfg *config.Config) {
	authn := middleware.Authenticate(jwtManager)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimit(cfg.RateLimit))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.GET("/me", authn, h.Auth.Me)
		authGroup.POST("/change-password", authn, h.Auth.ChangePassword)
	}

	// Public patient-facing search; no token required.
	api.GET("/pharmacies/for-patients", h.Pharmacy.SearchNearby)
	api.GET("/doctors", h.Appointment.ListDoctors)
	api.POST("/symptoms/analyze", h.Symptom.Analyze)

	appts := api.Group("/appointments", authn)
	{
		appts.POST("", middleware.RequireRole(domain.RolePatient), h.Appointment.Create)
		appts.GET("", h.Appointment.List)
		appts.GET("/:id", h.Appointment.Get)
		appts.PUT("/:id/status", h.Appointment.UpdateStatus)
		appts.PUT("/:id/approve", middleware.RequireRole(domain.RoleDoctor, domain.RoleAdmin), h.Appointment.Confirm)
		appts.PUT("/:id/reject", h.Appointment.Cancel)
		appts.PUT("/:id/complete", middleware.RequireRole(domain.RoleDoctor, domain.RoleAdmin), h.Appointment.Complete)
	}

	records := api.Group("/medical-records", authn)
	{
		records.POST("", middleware.RequireRole(domain.RoleDoctor), h.Record.Create)
		records.GET("", h.Record.List)
		records.GET("/:id", h.Record.Get)
	}

	pharm := api.Group("/pharmacy", authn, middleware.RequireRole(domain.RolePharmacist))
	{
		pharm.GET("/profile", h.Pharmacy.GetOwn)
		pharm.PUT("/profile", h.Pharmacy.Update)
		pharm.GET("/inventory", h.Pharmacy.Inventory)
		pharm.POST("/batches", h.Pharmacy.CreateBatch)
		pharm.GET("/alerts/low-stock", h.Pharmacy.Alerts)
		pharm.PUT("/stock/:stockId", h.Pharmacy.SetStockStatus)
		pharm.GET("/prescriptions", h.Pharmacy.ListPrescriptions)
		pharm.PATCH("/prescriptions/:id/status", h.Pharmacy.UpdatePrescriptionStatus)
	}

	admin := api.Group("/admin", authn, middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/appointments/summary", h.Admin.AppointmentSummary)
	}
}
