package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/carelink-api/internal/domain"
	"github.com/carelink/carelink-api/internal/domain/appointment"
	"github.com/carelink/carelink-api/internal/domain/doctor"
	"github.com/carelink/carelink-api/internal/domain/medicalrecord"
	"github.com/carelink/carelink-api/internal/domain/patient"
	"github.com/carelink/carelink-api/internal/domain/pharmacy"
	"github.com/carelink/carelink-api/internal/domain/prescription"
	"github.com/carelink/carelink-api/pkg/metrics"
)

// ConsultationService turns a confirmed appointment into its clinical
// outcome: a medical record, optionally with a prescription addressed to a
// pharmacy, written atomically.
type ConsultationService struct {
	apptRepo    appointment.Repository
	recordRepo  medicalrecord.Repository
	patientRepo patient.Repository
	doctorRepo  doctor.Repository
	pharmRepo   pharmacy.Repository
	medRepo     pharmacy.MedicineRepository
	auditSvc    *AuditService
	collector   *metrics.Collector
	log         *zap.Logger
}

func NewConsultationService(
	apptRepo appointment.Repository,
	recordRepo medicalrecord.Repository,
	patientRepo patient.Repository,
	doctorRepo doctor.Repository,
	pharmRepo pharmacy.Repository,
	medRepo pharmacy.MedicineRepository,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *ConsultationService {
	return &ConsultationService{
		apptRepo:    apptRepo,
		recordRepo:  recordRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		pharmRepo:   pharmRepo,
		medRepo:     medRepo,
		auditSvc:    auditSvc,
		collector:   collector,
		log:         log,
	}
}

// CompleteConsultationCommand is the doctor's write-up for one appointment.
// PharmacyID is required whenever Items is non-empty.
type CompleteConsultationCommand struct {
	AppointmentID uuid.UUID
	Diagnosis     string
	Notes         string
	PharmacyID    *uuid.UUID
	Items         []prescription.ItemCommand
}

// CompleteConsultation writes the medical record for a confirmed
// appointment, creates the prescription (when items are present) in the same
// transaction, and marks the appointment COMPLETED. Only the appointment's
// own doctor may complete it.
func (s *ConsultationService) CompleteConsultation(ctx context.Context, doctorUserID uuid.UUID, cmd *CompleteConsultationCommand) (*medicalrecord.MedicalRecord, error) {
	if strings.TrimSpace(cmd.Diagnosis) == "" {
		return nil, medicalrecord.ErrDiagnosisRequired
	}

	doctorProfile, err := s.doctorRepo.GetByUserID(ctx, doctorUserID)
	if err != nil {
		return nil, err
	}

	a, err := s.apptRepo.GetByID(ctx, cmd.AppointmentID)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorProfile.ID {
		return nil, ErrForbidden
	}
	if !a.CanTransitionTo(appointment.StatusCompleted) {
		return nil, appointment.ErrInvalidStatusTransition
	}

	var rx *prescription.Prescription
	if len(cmd.Items) > 0 {
		rx, err = s.buildPrescription(ctx, a, doctorProfile.ID, cmd)
		if err != nil {
			return nil, err
		}
	}

	record := &medicalrecord.MedicalRecord{
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		AppointmentID: a.ID,
		Diagnosis:     strings.TrimSpace(cmd.Diagnosis),
		Notes:         cmd.Notes,
		CreatedBy:     doctorUserID,
	}
	if err := s.recordRepo.CreateWithPrescription(ctx, record, rx); err != nil {
		return nil, fmt.Errorf("writing consultation outcome: %w", err)
	}

	if err := a.Complete(); err != nil {
		return nil, err
	}
	if err := s.apptRepo.UpdateStatus(ctx, a); err != nil {
		// The record is already committed; surface the error so the doctor
		// retries the completion rather than losing the write-up.
		return nil, fmt.Errorf("marking appointment completed: %w", err)
	}

	s.collector.AppointmentsTotal.WithLabelValues(string(appointment.StatusCompleted)).Inc()
	if rx != nil {
		s.collector.PrescriptionsIssued.Inc()
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       doctorUserID,
		UserRole:     string(domain.RoleDoctor),
		Action:       string(domain.ActionCreate),
		ResourceType: "medical_record",
		ResourceID:   record.ID.String(),
	})
	return record, nil
}

// buildPrescription resolves each item's medicine by normalized name
// (creating catalog entries as needed) and flattens dosage triples into
// stored instruction lines.
func (s *ConsultationService) buildPrescription(ctx context.Context, a *appointment.Appointment, doctorProfileID uuid.UUID, cmd *CompleteConsultationCommand) (*prescription.Prescription, error) {
	if cmd.PharmacyID == nil {
		return nil, prescription.ErrPharmacyRequired
	}
	if _, err := s.pharmRepo.GetByID(ctx, *cmd.PharmacyID); err != nil {
		return nil, err
	}

	items := make([]prescription.Item, 0, len(cmd.Items))
	for _, ic := range cmd.Items {
		if strings.TrimSpace(ic.MedicineName) == "" {
			return nil, &ValidationError{Fields: []string{"medicine name is required for every prescription item"}}
		}
		if ic.Quantity <= 0 {
			return nil, &ValidationError{Fields: []string{"prescription item quantity must be greater than zero"}}
		}

		med, err := s.medRepo.GetOrCreateByName(ctx, ic.MedicineName)
		if err != nil {
			return nil, fmt.Errorf("resolving medicine %q: %w", ic.MedicineName, err)
		}

		item := prescription.Item{
			MedicineID:   med.ID,
			Quantity:     ic.Quantity,
			Instructions: ic.Instructions,
		}
		for _, dc := range ic.Dosages {
			item.DosageInstructions = append(item.DosageInstructions, prescription.DosageInstruction{
				LanguageCode: prescription.DefaultLanguageCode,
				Text:         prescription.FlattenDosage(dc.Dosage, dc.Frequency, dc.Duration),
			})
		}
		items = append(items, item)
	}

	apptID := a.ID
	return &prescription.Prescription{
		PatientID:     a.PatientID,
		DoctorID:      doctorProfileID,
		PharmacyID:    *cmd.PharmacyID,
		AppointmentID: &apptID,
		Status:        prescription.StatusPending,
		Items:         items,
	}, nil
}

// GetRecord loads one medical record with party scoping: the patient and the
// doctor on the record, plus admins.
func (s *ConsultationService) GetRecord(ctx context.Context, actorID uuid.UUID, role domain.Role, id uuid.UUID) (*medicalrecord.MedicalRecord, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch role {
	case domain.RoleAdmin:
		return record, nil
	case domain.RolePatient:
		p, err := s.patientRepo.GetByUserID(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if record.PatientID != p.ID {
			return nil, ErrForbidden
		}
		return record, nil
	case domain.RoleDoctor:
		d, err := s.doctorRepo.GetByUserID(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if record.DoctorID != d.ID {
			return nil, ErrForbidden
		}
		return record, nil
	default:
		return nil, ErrForbidden
	}
}

// ListRecords returns the caller's medical records, newest first.
func (s *ConsultationService) ListRecords(ctx context.Context, actorID uuid.UUID, role domain.Role, q *medicalrecord.ListRecordsQuery) (*medicalrecord.PagedRecords, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}

	switch role {
	case domain.RolePatient:
		p, err := s.patientRepo.GetByUserID(ctx, actorID)
		if err != nil {
			return nil, err
		}
		q.PatientID = &p.ID
		q.DoctorID = nil
	case domain.RoleDoctor:
		d, err := s.doctorRepo.GetByUserID(ctx, actorID)
		if err != nil {
			return nil, err
		}
		q.DoctorID = &d.ID
		q.PatientID = nil
	case domain.RoleAdmin:
		// Unscoped.
	default:
		return nil, ErrForbidden
	}
	return s.recordRepo.List(ctx, q)
}
