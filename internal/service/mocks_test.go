package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
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

// The prometheus default registry allows one registration per metric, so all
// tests in this package share a single collector.
var testCollector = metrics.NewCollector("test")

func newTestAuditService() *AuditService {
	repo := new(mockAuditRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewAuditService(repo, testCollector, zap.NewNop())
}

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error {
	args := m.Called(ctx, id, success)
	return args.Error(0)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

type mockPharmacistProfileRepo struct{ mock.Mock }

func (m *mockPharmacistProfileRepo) Create(ctx context.Context, p *pharmacy.PharmacistProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPharmacistProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*pharmacy.PharmacistProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pharmacy.PharmacistProfile), args.Error(1)
}

func (m *mockPharmacistProfileRepo) LinkPharmacy(ctx context.Context, profileID, pharmacyID uuid.UUID) error {
	args := m.Called(ctx, profileID, pharmacyID)
	return args.Error(0)
}

type mockPharmacyRepo struct{ mock.Mock }

func (m *mockPharmacyRepo) CreateForPharmacist(ctx context.Context, p *pharmacy.Pharmacy, profileID uuid.UUID) (*pharmacy.Pharmacy, error) {
	args := m.Called(ctx, p, profileID)
	if fn, ok := args.Get(0).(func(context.Context, *pharmacy.Pharmacy, uuid.UUID) *pharmacy.Pharmacy); ok {
		return fn(ctx, p, profileID), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pharmacy.Pharmacy), args.Error(1)
}

func (m *mockPharmacyRepo) GetByID(ctx context.Context, id uuid.UUID) (*pharmacy.Pharmacy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pharmacy.Pharmacy), args.Error(1)
}

func (m *mockPharmacyRepo) GetByPharmacistID(ctx context.Context, pharmacistID uuid.UUID) (*pharmacy.Pharmacy, error) {
	args := m.Called(ctx, pharmacistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pharmacy.Pharmacy), args.Error(1)
}

func (m *mockPharmacyRepo) Update(ctx context.Context, id uuid.UUID, cmd *pharmacy.UpdatePharmacyCommand) (*pharmacy.Pharmacy, error) {
	args := m.Called(ctx, id, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pharmacy.Pharmacy), args.Error(1)
}

func (m *mockPharmacyRepo) ListActiveWithPharmacist(ctx context.Context) ([]*pharmacy.NearbyPharmacy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pharmacy.NearbyPharmacy), args.Error(1)
}

type mockMedicineRepo struct{ mock.Mock }

func (m *mockMedicineRepo) GetOrCreateByName(ctx context.Context, name string) (*pharmacy.Medicine, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pharmacy.Medicine), args.Error(1)
}

func (m *mockMedicineRepo) GetByID(ctx context.Context, id uuid.UUID) (*pharmacy.Medicine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pharmacy.Medicine), args.Error(1)
}

func (m *mockMedicineRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*pharmacy.Medicine, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*pharmacy.Medicine), args.Error(1)
}

type mockStockRepo struct{ mock.Mock }

func (m *mockStockRepo) CreateBatch(ctx context.Context, b *pharmacy.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockStockRepo) GetStock(ctx context.Context, stockID uuid.UUID) (*pharmacy.Stock, error) {
	args := m.Called(ctx, stockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pharmacy.Stock), args.Error(1)
}

func (m *mockStockRepo) ListStock(ctx context.Context, pharmacyID uuid.UUID) ([]*pharmacy.Stock, error) {
	args := m.Called(ctx, pharmacyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pharmacy.Stock), args.Error(1)
}

func (m *mockStockRepo) SetStockStatus(ctx context.Context, stockID uuid.UUID, status pharmacy.StockStatus) error {
	args := m.Called(ctx, stockID, status)
	return args.Error(0)
}

func (m *mockStockRepo) ListBatches(ctx context.Context, pharmacyID uuid.UUID, medicineIDs []uuid.UUID) ([]*pharmacy.Batch, error) {
	args := m.Called(ctx, pharmacyID, medicineIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pharmacy.Batch), args.Error(1)
}

func (m *mockStockRepo) ListExpiringBatches(ctx context.Context, pharmacyID uuid.UUID, before time.Time) ([]*pharmacy.Batch, error) {
	args := m.Called(ctx, pharmacyID, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pharmacy.Batch), args.Error(1)
}

func (m *mockStockRepo) ListLowStock(ctx context.Context, pharmacyID uuid.UUID) ([]*pharmacy.Stock, error) {
	args := m.Called(ctx, pharmacyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pharmacy.Stock), args.Error(1)
}

type mockPrescriptionRepo struct{ mock.Mock }

func (m *mockPrescriptionRepo) Create(ctx context.Context, p *prescription.Prescription) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPrescriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prescription.Prescription), args.Error(1)
}

func (m *mockPrescriptionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status prescription.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockPrescriptionRepo) List(ctx context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prescription.PagedPrescriptions), args.Error(1)
}

type mockAppointmentRepo struct{ mock.Mock }

func (m *mockAppointmentRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appointment.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appointment.PagedAppointments), args.Error(1)
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAppointmentRepo) HasConflict(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, doctorID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAppointmentRepo) CountByStatus(ctx context.Context) (*appointment.StatusCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appointment.StatusCounts), args.Error(1)
}

func (m *mockAppointmentRepo) CountByDoctor(ctx context.Context) ([]*appointment.PartyCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*appointment.PartyCount), args.Error(1)
}

func (m *mockAppointmentRepo) CountByPatient(ctx context.Context) ([]*appointment.PartyCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*appointment.PartyCount), args.Error(1)
}

func (m *mockAppointmentRepo) GetRecent(ctx context.Context, limit int) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*appointment.Appointment), args.Error(1)
}

type mockPatientRepo struct{ mock.Mock }

func (m *mockPatientRepo) Create(ctx context.Context, p *patient.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patient.Profile), args.Error(1)
}

func (m *mockPatientRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*patient.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patient.Profile), args.Error(1)
}

func (m *mockPatientRepo) Update(ctx context.Context, p *patient.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type mockDoctorRepo struct{ mock.Mock }

func (m *mockDoctorRepo) Create(ctx context.Context, p *doctor.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockDoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*doctor.Profile), args.Error(1)
}

func (m *mockDoctorRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*doctor.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*doctor.Profile), args.Error(1)
}

func (m *mockDoctorRepo) ListBySpecialty(ctx context.Context, specialty string) ([]*doctor.Profile, error) {
	args := m.Called(ctx, specialty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*doctor.Profile), args.Error(1)
}

type mockRecordRepo struct{ mock.Mock }

func (m *mockRecordRepo) CreateWithPrescription(ctx context.Context, r *medicalrecord.MedicalRecord, p *prescription.Prescription) error {
	args := m.Called(ctx, r, p)
	return args.Error(0)
}

func (m *mockRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*medicalrecord.MedicalRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*medicalrecord.MedicalRecord), args.Error(1)
}

func (m *mockRecordRepo) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*medicalrecord.MedicalRecord, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*medicalrecord.MedicalRecord), args.Error(1)
}

func (m *mockRecordRepo) List(ctx context.Context, q *medicalrecord.ListRecordsQuery) (*medicalrecord.PagedRecords, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*medicalrecord.PagedRecords), args.Error(1)
}
