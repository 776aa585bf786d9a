package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/carelink/carelink-api/internal/domain/appointment"
)

const recentAppointmentsLimit = 20

// AppointmentSummary is the admin dashboard aggregate.
type AppointmentSummary struct {
	StatusCounts *appointment.StatusCounts  `json:"status_counts"`
	ByDoctor     []*appointment.PartyCount  `json:"by_doctor"`
	ByPatient    []*appointment.PartyCount  `json:"by_patient"`
	Recent       []*appointment.Appointment `json:"recent"`
}

type ReportService struct {
	apptRepo appointment.Repository
	log      *zap.Logger
}

func NewReportService(apptRepo appointment.Repository, log *zap.Logger) *ReportService {
	return &ReportService{apptRepo: apptRepo, log: log}
}

// AppointmentSummary aggregates totals by status, per-doctor and per-patient
// breakdowns, and the most recently created appointments.
func (s *ReportService) AppointmentSummary(ctx context.Context) (*AppointmentSummary, error) {
	counts, err := s.apptRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byDoctor, err := s.apptRepo.CountByDoctor(ctx)
	if err != nil {
		return nil, err
	}
	byPatient, err := s.apptRepo.CountByPatient(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.apptRepo.GetRecent(ctx, recentAppointmentsLimit)
	if err != nil {
		return nil, err
	}

	return &AppointmentSummary{
		StatusCounts: counts,
		ByDoctor:     byDoctor,
		ByPatient:    byPatient,
		Recent:       recent,
	}, nil
}
