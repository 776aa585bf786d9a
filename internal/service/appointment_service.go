package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/carelink-api/internal/domain"
	"github.com/carelink/carelink-api/internal/domain/appointment"
	"github.com/carelink/carelink-api/internal/domain/doctor"
	"github.com/carelink/carelink-api/internal/domain/patient"
	"github.com/carelink/carelink-api/pkg/metrics"
)

const (
	minAppointmentMins     = 5
	maxAppointmentMins     = 480
	defaultAppointmentMins = 30
)

type AppointmentService struct {
	apptRepo    appointment.Repository
	patientRepo patient.Repository
	doctorRepo  doctor.Repository
	auditSvc    *AuditService
	collector   *metrics.Collector
	log         *zap.Logger
}

func NewAppointmentService(
	apptRepo appointment.Repository,
	patientRepo patient.Repository,
	doctorRepo doctor.Repository,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		apptRepo:    apptRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		auditSvc:    auditSvc,
		collector:   collector,
		log:         log,
	}
}

// ScheduleCommand is the booking request as seen by the service layer.
// PatientUserID is the acting user for patient bookings; admins may book on
// behalf of a patient by passing that patient's user id.
type ScheduleCommand struct {
	PatientUserID uuid.UUID
	DoctorID      uuid.UUID
	ScheduledAt   time.Time
	DurationMins  int
	Reason        string
	Notes         string
}

// Schedule books a new appointment in PENDING state. The slot must be in the
// future and must not overlap another non-cancelled appointment of the same
// doctor.
func (s *AppointmentService) Schedule(ctx context.Context, actorID uuid.UUID, cmd *ScheduleCommand) (*appointment.Appointment, error) {
	if cmd.DurationMins == 0 {
		cmd.DurationMins = defaultAppointmentMins
	}
	if cmd.DurationMins < minAppointmentMins || cmd.DurationMins > maxAppointmentMins {
		return nil, appointment.ErrInvalidDuration
	}
	if !cmd.ScheduledAt.After(time.Now()) {
		return nil, appointment.ErrScheduledInPast
	}

	patientProfile, err := s.patientRepo.GetByUserID(ctx, cmd.PatientUserID)
	if err != nil {
		return nil, err
	}
	doctorProfile, err := s.doctorRepo.GetByID(ctx, cmd.DoctorID)
	if err != nil {
		return nil, err
	}

	end := cmd.ScheduledAt.Add(time.Duration(cmd.DurationMins) * time.Minute)
	conflict, err := s.apptRepo.HasConflict(ctx, doctorProfile.ID, cmd.ScheduledAt, end, nil)
	if err != nil {
		return nil, fmt.Errorf("checking appointment conflicts: %w", err)
	}
	if conflict {
		return nil, appointment.ErrAppointmentConflict
	}

	a := &appointment.Appointment{
		PatientID:    patientProfile.ID,
		DoctorID:     doctorProfile.ID,
		ScheduledAt:  cmd.ScheduledAt,
		DurationMins: cmd.DurationMins,
		Status:       appointment.StatusPending,
		Reason:       cmd.Reason,
		Notes:        cmd.Notes,
		CreatedBy:    actorID,
	}
	if err := s.apptRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.collector.AppointmentsTotal.WithLabelValues(string(appointment.StatusPending)).Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actorID,
		UserRole:     string(domain.RolePatient),
		Action:       string(domain.ActionCreate),
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
	})
	return a, nil
}

// Get loads one appointment, enforcing that the caller is a party to it.
// Admins may read any appointment.
func (s *AppointmentService) Get(ctx context.Context, actorID uuid.UUID, role domain.Role, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, role, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the caller's appointments, newest first. Patients and doctors
// are scoped to their own; admins see everything.
func (s *AppointmentService) List(ctx context.Context, actorID uuid.UUID, role domain.Role, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
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
	return s.apptRepo.List(ctx, q)
}

// UpdateStatus drives the appointment state machine. Doctors confirm and
// complete their own appointments; cancellation is open to either party.
// Every transition is checked against the transition table, so completed or
// cancelled appointments cannot be revived.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actorID uuid.UUID, role domain.Role, id uuid.UUID, rawStatus, reason string) (*appointment.Appointment, error) {
	status, err := appointment.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	a, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, role, a); err != nil {
		return nil, err
	}

	switch status {
	case appointment.StatusConfirmed:
		if role != domain.RoleDoctor && role != domain.RoleAdmin {
			return nil, ErrForbidden
		}
		err = a.Confirm()
	case appointment.StatusCompleted:
		if role != domain.RoleDoctor && role != domain.RoleAdmin {
			return nil, ErrForbidden
		}
		err = a.Complete()
	case appointment.StatusCancelled:
		err = a.Cancel(reason, actorID)
	default:
		return nil, appointment.ErrInvalidStatusTransition
	}
	if err != nil {
		return nil, err
	}

	if err := s.apptRepo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.collector.AppointmentsTotal.WithLabelValues(string(status)).Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actorID,
		UserRole:     string(role),
		Action:       string(domain.ActionUpdate),
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		Changes:      fmt.Sprintf(`{"status":%q}`, status),
	})
	return a, nil
}

// ListDoctors returns active doctors for the booking flow, optionally
// filtered by specialty.
func (s *AppointmentService) ListDoctors(ctx context.Context, specialty string) ([]*doctor.Profile, error) {
	return s.doctorRepo.ListBySpecialty(ctx, specialty)
}

// authorize verifies the actor is a party to the appointment. The profile
// lookup is by the actor's user id, so a doctor can never act on another
// doctor's schedule.
func (s *AppointmentService) authorize(ctx context.Context, actorID uuid.UUID, role domain.Role, a *appointment.Appointment) error {
	switch role {
	case domain.RoleAdmin:
		return nil
	case domain.RolePatient:
		p, err := s.patientRepo.GetByUserID(ctx, actorID)
		if err != nil {
			return err
		}
		if a.PatientID != p.ID {
			return ErrForbidden
		}
		return nil
	case domain.RoleDoctor:
		d, err := s.doctorRepo.GetByUserID(ctx, actorID)
		if err != nil {
			return err
		}
		if a.DoctorID != d.ID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}
