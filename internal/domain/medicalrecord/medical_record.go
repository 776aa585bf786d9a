package medicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is the outcome of a completed consultation. Once created,
// records cannot be deleted or edited.
type MedicalRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	PatientID     uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID      uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`
	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;index"`

	Diagnosis string `gorm:"column:diagnosis;type:text;not null"`
	Notes     string `gorm:"column:notes;type:text"`

	PrescriptionID *uuid.UUID `gorm:"column:prescription_id;type:uuid;index"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (MedicalRecord) TableName() string {
	return "clinical.medical_records"
}

type ListRecordsQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Page      int
	PageSize  int
}

type PagedRecords struct {
	Records    []*MedicalRecord
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
