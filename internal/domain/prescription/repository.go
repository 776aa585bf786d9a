package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the prescription with its nested items and dosage
	// instructions as one unit.
	Create(ctx context.Context, p *Prescription) error

	// GetByID loads the prescription with items and instructions preloaded.
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	List(ctx context.Context, q *ListPrescriptionsQuery) (*PagedPrescriptions, error)
}
