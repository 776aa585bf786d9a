package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// ListBySpecialty returns active doctors, optionally filtered by specialty.
	ListBySpecialty(ctx context.Context, specialty string) ([]*Profile, error)
}
