package medicalrecord

import (
	"context"

	"github.com/google/uuid"

	"github.com/carelink/carelink-api/internal/domain/prescription"
)

type Repository interface {
	// CreateWithPrescription persists the record and, when p is non-nil,
	// the prescription with its items and dosage instructions in a single
	// transaction. A failure leaves neither behind.
	CreateWithPrescription(ctx context.Context, r *MedicalRecord, p *prescription.Prescription) error

	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*MedicalRecord, error)
	List(ctx context.Context, q *ListRecordsQuery) (*PagedRecords, error)
}
