package prescription

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusDispensed Status = "DISPENSED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusDispensed:
		return true
	}
	return false
}

// ParseStatus normalizes a client-supplied status string. Anything outside
// the two-element enum is rejected.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Prescription is created at consultation completion, addressed to exactly
// one pharmacy chosen by the prescribing doctor. Items and their dosage
// instructions are owned exclusively by the prescription and written in the
// same transaction as the consultation's medical record.
type Prescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID     uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID      uuid.UUID  `gorm:"column:doctor_id;type:uuid;not null;index"`
	PharmacyID    uuid.UUID  `gorm:"column:pharmacy_id;type:uuid;not null;index"`
	AppointmentID *uuid.UUID `gorm:"column:appointment_id;type:uuid;index"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'PENDING';index"`

	Items []Item `gorm:"foreignKey:PrescriptionID"`
}

func (Prescription) TableName() string {
	return "clinical.prescriptions"
}

// CanTransitionTo enforces the only legal transition: PENDING → DISPENSED.
func (p *Prescription) CanTransitionTo(newStatus Status) bool {
	return p.Status == StatusPending && newStatus == StatusDispensed
}

type Item struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PrescriptionID uuid.UUID `gorm:"column:prescription_id;type:uuid;not null;index"`
	MedicineID     uuid.UUID `gorm:"column:medicine_id;type:uuid;not null;index"`
	Quantity       int       `gorm:"column:quantity;not null"`
	Instructions   string    `gorm:"column:instructions;type:text"`

	DosageInstructions []DosageInstruction `gorm:"foreignKey:PrescriptionItemID"`
}

func (Item) TableName() string {
	return "clinical.prescription_items"
}

// DosageInstruction is one localized/phased instruction line for an item.
type DosageInstruction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PrescriptionItemID uuid.UUID `gorm:"column:prescription_item_id;type:uuid;not null;index"`
	LanguageCode       string    `gorm:"column:language_code;type:varchar(10);not null;default:'en'"`
	Text               string    `gorm:"column:text;type:text;not null"`
}

func (DosageInstruction) TableName() string {
	return "clinical.dosage_instructions"
}

// DefaultLanguageCode is the language dosage triples are flattened into.
const DefaultLanguageCode = "en"

// FlattenDosage renders a {dosage, frequency, duration} triple into the
// stored display string.
func FlattenDosage(dosage, frequency, duration string) string {
	return fmt.Sprintf("%s - %s for %s", dosage, frequency, duration)
}

type ItemCommand struct {
	MedicineName string
	Quantity     int
	Instructions string
	Dosages      []DosageCommand
}

type DosageCommand struct {
	Dosage    string
	Frequency string
	Duration  string
}

type ListPrescriptionsQuery struct {
	PatientID  *uuid.UUID
	DoctorID   *uuid.UUID
	PharmacyID *uuid.UUID
	Status     *Status
	Page       int
	PageSize   int
}

type PagedPrescriptions struct {
	Prescriptions []*Prescription
	TotalCount    int64
	Page          int
	PageSize      int
	TotalPages    int
}
