package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carelink/carelink-api/internal/domain/appointment"
	"github.com/carelink/carelink-api/internal/domain/doctor"
	"github.com/carelink/carelink-api/internal/domain/medicalrecord"
	"github.com/carelink/carelink-api/internal/domain/pharmacy"
	"github.com/carelink/carelink-api/internal/domain/prescription"
)

func newConsultationService(
	apptRepo *mockAppointmentRepo,
	recordRepo *mockRecordRepo,
	doctorRepo *mockDoctorRepo,
	pharmRepo *mockPharmacyRepo,
	medRepo *mockMedicineRepo,
) *ConsultationService {
	return &ConsultationService{
		apptRepo:    apptRepo,
		recordRepo:  recordRepo,
		patientRepo: new(mockPatientRepo),
		doctorRepo:  doctorRepo,
		pharmRepo:   pharmRepo,
		medRepo:     medRepo,
		auditSvc:    newTestAuditService(),
		collector:   testCollector,
		log:         zap.NewNop(),
	}
}

func TestCompleteConsultationRequiresDiagnosis(t *testing.T) {
	svc := newConsultationService(new(mockAppointmentRepo), new(mockRecordRepo), new(mockDoctorRepo), new(mockPharmacyRepo), new(mockMedicineRepo))

	_, err := svc.CompleteConsultation(context.Background(), uuid.New(), &CompleteConsultationCommand{
		AppointmentID: uuid.New(),
		Diagnosis:     "   ",
	})
	require.ErrorIs(t, err, medicalrecord.ErrDiagnosisRequired)
}

func TestCompleteConsultationForeignDoctor(t *testing.T) {
	doctorUserID := uuid.New()
	doctorProfile := &doctor.Profile{ID: uuid.New(), UserID: doctorUserID}
	a := &appointment.Appointment{ID: uuid.New(), DoctorID: uuid.New(), Status: appointment.StatusConfirmed}

	apptRepo := new(mockAppointmentRepo)
	doctorRepo := new(mockDoctorRepo)
	doctorRepo.On("GetByUserID", mock.Anything, doctorUserID).Return(doctorProfile, nil)
	apptRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)

	svc := newConsultationService(apptRepo, new(mockRecordRepo), doctorRepo, new(mockPharmacyRepo), new(mockMedicineRepo))

	_, err := svc.CompleteConsultation(context.Background(), doctorUserID, &CompleteConsultationCommand{
		AppointmentID: a.ID,
		Diagnosis:     "acute bronchitis",
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCompleteConsultationRequiresPharmacyForItems(t *testing.T) {
	doctorUserID := uuid.New()
	doctorProfile := &doctor.Profile{ID: uuid.New(), UserID: doctorUserID}
	a := &appointment.Appointment{ID: uuid.New(), DoctorID: doctorProfile.ID, Status: appointment.StatusConfirmed}

	apptRepo := new(mockAppointmentRepo)
	doctorRepo := new(mockDoctorRepo)
	doctorRepo.On("GetByUserID", mock.Anything, doctorUserID).Return(doctorProfile, nil)
	apptRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)

	svc := newConsultationService(apptRepo, new(mockRecordRepo), doctorRepo, new(mockPharmacyRepo), new(mockMedicineRepo))

	_, err := svc.CompleteConsultation(context.Background(), doctorUserID, &CompleteConsultationCommand{
		AppointmentID: a.ID,
		Diagnosis:     "acute bronchitis",
		Items: []prescription.ItemCommand{
			{MedicineName: "Amoxicillin", Quantity: 14},
		},
	})
	require.ErrorIs(t, err, prescription.ErrPharmacyRequired)
}

func TestCompleteConsultationWritesRecordAndPrescription(t *testing.T) {
	doctorUserID := uuid.New()
	doctorProfile := &doctor.Profile{ID: uuid.New(), UserID: doctorUserID}
	pharmacyID := uuid.New()
	med := &pharmacy.Medicine{ID: uuid.New(), Name: "Amoxicillin"}
	a := &appointment.Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  doctorProfile.ID,
		Status:    appointment.StatusConfirmed,
	}

	apptRepo := new(mockAppointmentRepo)
	recordRepo := new(mockRecordRepo)
	doctorRepo := new(mockDoctorRepo)
	pharmRepo := new(mockPharmacyRepo)
	medRepo := new(mockMedicineRepo)

	doctorRepo.On("GetByUserID", mock.Anything, doctorUserID).Return(doctorProfile, nil)
	apptRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)
	pharmRepo.On("GetByID", mock.Anything, pharmacyID).Return(&pharmacy.Pharmacy{ID: pharmacyID}, nil)
	medRepo.On("GetOrCreateByName", mock.Anything, "Amoxicillin").Return(med, nil)

	var gotRecord *medicalrecord.MedicalRecord
	var gotRx *prescription.Prescription
	recordRepo.On("CreateWithPrescription", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotRecord = args.Get(1).(*medicalrecord.MedicalRecord)
			gotRx = args.Get(2).(*prescription.Prescription)
		}).
		Return(nil)
	apptRepo.On("UpdateStatus", mock.Anything, a).Return(nil)

	svc := newConsultationService(apptRepo, recordRepo, doctorRepo, pharmRepo, medRepo)

	record, err := svc.CompleteConsultation(context.Background(), doctorUserID, &CompleteConsultationCommand{
		AppointmentID: a.ID,
		Diagnosis:     " acute bronchitis ",
		Notes:         "follow up in two weeks",
		PharmacyID:    &pharmacyID,
		Items: []prescription.ItemCommand{
			{
				MedicineName: "Amoxicillin",
				Quantity:     14,
				Dosages: []prescription.DosageCommand{
					{Dosage: "1 tablet", Frequency: "twice daily", Duration: "7 days"},
				},
			},
		},
	})
	require.NoError(t, err)
	require.Same(t, gotRecord, record)

	require.Equal(t, "acute bronchitis", record.Diagnosis)
	require.Equal(t, a.PatientID, record.PatientID)
	require.Equal(t, a.ID, record.AppointmentID)

	require.NotNil(t, gotRx)
	require.Equal(t, prescription.StatusPending, gotRx.Status)
	require.Equal(t, pharmacyID, gotRx.PharmacyID)
	require.Len(t, gotRx.Items, 1)
	require.Equal(t, med.ID, gotRx.Items[0].MedicineID)
	require.Len(t, gotRx.Items[0].DosageInstructions, 1)
	require.Equal(t, "en", gotRx.Items[0].DosageInstructions[0].LanguageCode)
	require.Equal(t, "1 tablet - twice daily for 7 days", gotRx.Items[0].DosageInstructions[0].Text)

	// The appointment ended up COMPLETED.
	require.Equal(t, appointment.StatusCompleted, a.Status)
	recordRepo.AssertExpectations(t)
	apptRepo.AssertExpectations(t)
}

func TestCompleteConsultationWithoutItemsSkipsPrescription(t *testing.T) {
	doctorUserID := uuid.New()
	doctorProfile := &doctor.Profile{ID: uuid.New(), UserID: doctorUserID}
	a := &appointment.Appointment{ID: uuid.New(), DoctorID: doctorProfile.ID, Status: appointment.StatusConfirmed}

	apptRepo := new(mockAppointmentRepo)
	recordRepo := new(mockRecordRepo)
	doctorRepo := new(mockDoctorRepo)

	doctorRepo.On("GetByUserID", mock.Anything, doctorUserID).Return(doctorProfile, nil)
	apptRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)
	recordRepo.On("CreateWithPrescription", mock.Anything, mock.Anything, (*prescription.Prescription)(nil)).Return(nil)
	apptRepo.On("UpdateStatus", mock.Anything, a).Return(nil)

	svc := newConsultationService(apptRepo, recordRepo, doctorRepo, new(mockPharmacyRepo), new(mockMedicineRepo))

	record, err := svc.CompleteConsultation(context.Background(), doctorUserID, &CompleteConsultationCommand{
		AppointmentID: a.ID,
		Diagnosis:     "seasonal allergies",
	})
	require.NoError(t, err)
	require.Nil(t, record.PrescriptionID)
	recordRepo.AssertExpectations(t)
}

func TestCompleteConsultationRejectsUnconfirmedAppointment(t *testing.T) {
	doctorUserID := uuid.New()
	doctorProfile := &doctor.Profile{ID: uuid.New(), UserID: doctorUserID}
	a := &appointment.Appointment{ID: uuid.New(), DoctorID: doctorProfile.ID, Status: appointment.StatusPending}

	apptRepo := new(mockAppointmentRepo)
	doctorRepo := new(mockDoctorRepo)
	doctorRepo.On("GetByUserID", mock.Anything, doctorUserID).Return(doctorProfile, nil)
	apptRepo.On("GetByID", mock.Anything, a.ID).Return(a, nil)

	svc := newConsultationService(apptRepo, new(mockRecordRepo), doctorRepo, new(mockPharmacyRepo), new(mockMedicineRepo))

	_, err := svc.CompleteConsultation(context.Background(), doctorUserID, &CompleteConsultationCommand{
		AppointmentID: a.ID,
		Diagnosis:     "acute bronchitis",
	})
	require.ErrorIs(t, err, appointment.ErrInvalidStatusTransition)
}
