package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)

	// UpdateStatus persists a status change together with its bookkeeping fields.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// HasConflict checks whether a doctor already has an appointment that overlaps.
	HasConflict(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)

	// CountByStatus returns grouped appointment counts for reporting.
	CountByStatus(ctx context.Context) (*StatusCounts, error)

	// CountByDoctor and CountByPatient return per-party appointment totals.
	CountByDoctor(ctx context.Context) ([]*PartyCount, error)
	CountByPatient(ctx context.Context) ([]*PartyCount, error)

	// GetRecent returns the most recently created appointments.
	GetRecent(ctx context.Context, limit int) ([]*Appointment, error)
}
