package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carelink/carelink-api/internal/domain"
	"github.com/carelink/carelink-api/internal/domain/appointment"
	"github.com/carelink/carelink-api/internal/domain/doctor"
	"github.com/carelink/carelink-api/internal/domain/patient"
)

func newAppointmentService(apptRepo *mockAppointmentRepo, patientRepo *mockPatientRepo, doctorRepo *mockDoctorRepo) *AppointmentService {
	return &AppointmentService{
		apptRepo:    apptRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		auditSvc:    newTestAuditService(),
		collector:   testCollector,
		log:         zap.NewNop(),
	}
}

func TestScheduleRejectsPastTime(t *testing.T) {
	svc := newAppointmentService(new(mockAppointmentRepo), new(mockPatientRepo), new(mockDoctorRepo))

	_, err := svc.Schedule(context.Background(), uuid.New(), &ScheduleCommand{
		PatientUserID: uuid.New(),
		DoctorID:      uuid.New(),
		ScheduledAt:   time.Now().Add(-time.Hour),
	})
	require.ErrorIs(t, err, appointment.ErrScheduledInPast)
}

func TestScheduleRejectsBadDuration(t *testing.T) {
	svc := newAppointmentService(new(mockAppointmentRepo), new(mockPatientRepo), new(mockDoctorRepo))

	_, err := svc.Schedule(context.Background(), uuid.New(), &ScheduleCommand{
		PatientUserID: uuid.New(),
		DoctorID:      uuid.New(),
		ScheduledAt:   time.Now().Add(24 * time.Hour),
		DurationMins:  600,
	})
	require.ErrorIs(t, err, appointment.ErrInvalidDuration)
}

func TestScheduleRejectsConflict(t *testing.T) {
	patientUserID := uuid.New()
	patientProfile := &patient.Profile{ID: uuid.New(), UserID: patientUserID}
	doctorProfile := &doctor.Profile{ID: uuid.New()}

	apptRepo := new(mockAppointmentRepo)
	patientRepo := new(mockPatientRepo)
	doctorRepo := new(mockDoctorRepo)

	patientRepo.On("GetByUserID", mock.Anything, patientUserID).Return(patientProfile, nil)
	doctorRepo.On("GetByID", mock.Anything, doctorProfile.ID).Return(doctorProfile, nil)
	apptRepo.On("HasConflict", mock.Anything, doctorProfile.ID, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)

	svc := newAppointmentService(apptRepo, patientRepo, doctorRepo)

	_, err := svc.Schedule(context.Background(), patientUserID, &ScheduleCommand{
		PatientUserID: patientUserID,
		DoctorID:      doctorProfile.ID,
		ScheduledAt:   time.Now().Add(24 * time.Hour),
	})
	require.ErrorIs(t, err, appointment.ErrAppointmentConflict)
	apptRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestScheduleCreatesPending(t *testing.T) {
	patientUserID := uuid.New()
	patientProfile := &patient.Profile{ID: uuid.New(), UserID: patientUserID}
	doctorProfile := &doctor.Profile{ID: uuid.New()}
	when := time.Now().Add(48 * time.Hour)

	apptRepo := new(mockAppointmentRepo)
	patientRepo := new(mockPatientRepo)
	doctorRepo := new(mockDoctorRepo)

	patientRepo.On("GetByUserID", mock.Anything, patientUserID).Return(patientProfile, nil)
	doctorRepo.On("GetByID", mock.Anything, doctorProfile.ID).Return(doctorProfile, nil)
	apptRepo.On("HasConflict", mock.Anything, doctorProfile.ID, when, when.Add(30*time.Minute), mock.Anything).
		Return(false, nil)
	apptRepo.On("Create", mock.Anything, mock.AnythingOfType("*appointment.Appointment")).Return(nil)

	svc := newAppointmentService(apptRepo, patientRepo, doctorRepo)

	a, err := svc.Schedule(context.Background(), patientUserID, &ScheduleCommand{
		PatientUserID: patientUserID,
		DoctorID:      doctorProfile.ID,
		ScheduledAt:   when,
		Reason:        "persistent cough",
	})
	require.NoError(t, err)
	require.Equal(t, appointment.StatusPending, a.Status)
	require.Equal(t, patientProfile.ID, a.PatientID)
	require.Equal(t, doctorProfile.ID, a.DoctorID)
	require.Equal(t, 30, a.DurationMins)
	apptRepo.AssertExpectations(t)
}

func TestUpdateStatusDoctorConfirms(t *testing.T) {
	doctorUserID := uuid.New()
	doctorProfile := &doctor.Profile{ID: uuid.New(), UserID: doctorUserID}
	a := &appointment.Appointment{ID: uuid.New(), DoctorID: doctorProfile.ID, Status: appointment.StatusPending}

	apptRepo := new(mockAppointmentRepo)
	doctorRepo := new(mockDoctorRepo)

	apptRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)
	doctorRepo.On("GetByUserID", mock.Anything, doctorUserID).Return(doctorProfile, nil)
	apptRepo.On("UpdateStatus", mock.Anything, a).Return(nil)

	svc := newAppointmentService(apptRepo, new(mockPatientRepo), doctorRepo)

	got, err := svc.UpdateStatus(context.Background(), doctorUserID, domain.RoleDoctor, a.ID, "confirmed", "")
	require.NoError(t, err)
	require.Equal(t, appointment.StatusConfirmed, got.Status)
}

func TestUpdateStatusPatientCannotConfirm(t *testing.T) {
	patientUserID := uuid.New()
	patientProfile := &patient.Profile{ID: uuid.New(), UserID: patientUserID}
	a := &appointment.Appointment{ID: uuid.New(), PatientID: patientProfile.ID, Status: appointment.StatusPending}

	apptRepo := new(mockAppointmentRepo)
	patientRepo := new(mockPatientRepo)

	apptRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)
	patientRepo.On("GetByUserID", mock.Anything, patientUserID).Return(patientProfile, nil)

	svc := newAppointmentService(apptRepo, patientRepo, new(mockDoctorRepo))

	_, err := svc.UpdateStatus(context.Background(), patientUserID, domain.RolePatient, a.ID, "CONFIRMED", "")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateStatusForeignDoctorRejected(t *testing.T) {
	doctorUserID := uuid.New()
	doctorProfile := &doctor.Profile{ID: uuid.New(), UserID: doctorUserID}
	a := &appointment.Appointment{ID: uuid.New(), DoctorID: uuid.New(), Status: appointment.StatusPending}

	apptRepo := new(mockAppointmentRepo)
	doctorRepo := new(mockDoctorRepo)

	apptRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)
	doctorRepo.On("GetByUserID", mock.Anything, doctorUserID).Return(doctorProfile, nil)

	svc := newAppointmentService(apptRepo, new(mockPatientRepo), doctorRepo)

	_, err := svc.UpdateStatus(context.Background(), doctorUserID, domain.RoleDoctor, a.ID, "confirmed", "")
	require.ErrorIs(t, err, ErrForbidden)
	apptRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	doctorUserID := uuid.New()
	doctorProfile := &doctor.Profile{ID: uuid.New(), UserID: doctorUserID}
	a := &appointment.Appointment{ID: uuid.New(), DoctorID: doctorProfile.ID, Status: appointment.StatusCancelled}

	apptRepo := new(mockAppointmentRepo)
	doctorRepo := new(mockDoctorRepo)

	apptRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)
	doctorRepo.On("GetByUserID", mock.Anything, doctorUserID).Return(doctorProfile, nil)

	svc := newAppointmentService(apptRepo, new(mockPatientRepo), doctorRepo)

	_, err := svc.UpdateStatus(context.Background(), doctorUserID, domain.RoleDoctor, a.ID, "completed", "")
	require.ErrorIs(t, err, appointment.ErrInvalidStatusTransition)
}

func TestListScopesByRole(t *testing.T) {
	apptRepo := new(mockAppointmentRepo)
	patientRepo := new(mockPatientRepo)

	patientUserID := uuid.New()
	patientProfile := &patient.Profile{ID: uuid.New(), UserID: patientUserID}
	patientRepo.On("GetByUserID", mock.Anything, patientUserID).Return(patientProfile, nil)

	apptRepo.On("List", mock.Anything, mock.MatchedBy(func(q *appointment.ListAppointmentsQuery) bool {
		return q.PatientID != nil && *q.PatientID == patientProfile.ID && q.DoctorID == nil
	})).Return(&appointment.PagedAppointments{}, nil)

	svc := newAppointmentService(apptRepo, patientRepo, new(mockDoctorRepo))

	_, err := svc.List(context.Background(), patientUserID, domain.RolePatient, &appointment.ListAppointmentsQuery{})
	require.NoError(t, err)
	apptRepo.AssertExpectations(t)
}
