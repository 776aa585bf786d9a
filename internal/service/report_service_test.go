package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carelink/carelink-api/internal/domain/appointment"
)

func TestAppointmentSummaryAggregates(t *testing.T) {
	apptRepo := new(mockAppointmentRepo)
	svc := NewReportService(apptRepo, zap.NewNop())

	counts := &appointment.StatusCounts{Total: 7, Pending: 2, Confirmed: 3, Completed: 1, Cancelled: 1}
	byDoctor := []*appointment.PartyCount{{PartyID: uuid.New(), Name: "Asha Rao", Count: 4}}
	byPatient := []*appointment.PartyCount{{PartyID: uuid.New(), Name: "Ben Kim", Count: 2}}
	recent := []*appointment.Appointment{{ID: uuid.New()}, {ID: uuid.New()}}

	apptRepo.On("CountByStatus", mock.Anything).Return(counts, nil)
	apptRepo.On("CountByDoctor", mock.Anything).Return(byDoctor, nil)
	apptRepo.On("CountByPatient", mock.Anything).Return(byPatient, nil)
	apptRepo.On("GetRecent", mock.Anything, 20).Return(recent, nil)

	summary, err := svc.AppointmentSummary(context.Background())
	require.NoError(t, err)
	require.Same(t, counts, summary.StatusCounts)
	require.Equal(t, byDoctor, summary.ByDoctor)
	require.Equal(t, byPatient, summary.ByPatient)
	require.Len(t, summary.Recent, 2)
}

func TestAppointmentSummaryPropagatesError(t *testing.T) {
	apptRepo := new(mockAppointmentRepo)
	svc := NewReportService(apptRepo, zap.NewNop())

	boom := errors.New("db down")
	apptRepo.On("CountByStatus", mock.Anything).Return(nil, boom)

	_, err := svc.AppointmentSummary(context.Background())
	require.ErrorIs(t, err, boom)
	apptRepo.AssertNotCalled(t, "GetRecent", mock.Anything, 20)
}
