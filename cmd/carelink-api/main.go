package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/carelink/carelink-api/internal/config"
	v1 "github.com/carelink/carelink-api/internal/handler/v1"
	"github.com/carelink/carelink-api/internal/repository"
	"github.com/carelink/carelink-api/internal/server"
	"github.com/carelink/carelink-api/internal/service"
	"github.com/carelink/carelink-api/pkg/auth"
	"github.com/carelink/carelink-api/pkg/database"
	"github.com/carelink/carelink-api/pkg/logger"
	"github.com/carelink/carelink-api/pkg/metrics"
	"github.com/carelink/carelink-api/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("fatal", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			return err
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	collector := metrics.NewCollector(cfg.App.Name)
	jwtManager := auth.NewJWTManager(cfg.JWT)

	userRepo := repository.NewUserRepository(db)
	regRepo := repository.NewRegistrationRepository(db)
	patientRepo := repository.NewPatientProfileRepository(db)
	doctorRepo := repository.NewDoctorProfileRepository(db)
	pharmacistRepo := repository.NewPharmacistProfileRepository(db)
	pharmacyRepo := repository.NewPharmacyRepository(db)
	medicineRepo := repository.NewMedicineRepository(db)
	stockRepo := repository.NewStockRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	rxRepo := repository.NewPrescriptionRepository(db)
	recordRepo := repository.NewMedicalRecordRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	defer auditSvc.Shutdown()

	authSvc := service.NewAuthService(userRepo, regRepo, jwtManager, auditSvc, log)
	apptSvc := service.NewAppointmentService(apptRepo, patientRepo, doctorRepo, auditSvc, collector, log)
	pharmSvc := service.NewPharmacyService(userRepo, pharmacistRepo, pharmacyRepo, medicineRepo, stockRepo, rxRepo, auditSvc, collector, log)
	consultSvc := service.NewConsultationService(apptRepo, recordRepo, patientRepo, doctorRepo, pharmacyRepo, medicineRepo, auditSvc, collector, log)
	reportSvc := service.NewReportService(apptRepo, log)

	var analyzer service.Analyzer
	if cfg.Symptom.AnalyzerURL != "" {
		analyzer = service.NewHTTPAnalyzer(cfg.Symptom)
	}
	symptomSvc := service.NewSymptomService(analyzer, log)

	handlers := &v1.Handlers{
		Auth:        v1.NewAuthHandler(authSvc),
		Appointment: v1.NewAppointmentHandler(apptSvc),
		Pharmacy:    v1.NewPharmacyHandler(pharmSvc),
		Record:      v1.NewRecordHandler(consultSvc),
		Admin:       v1.NewAdminHandler(reportSvc),
		Symptom:     v1.NewSymptomHandler(symptomSvc),
	}

	srv := server.New(cfg, handlers, jwtManager, collector, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
