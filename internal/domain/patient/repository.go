package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new profile. Returns ErrProfileExists on duplicate UserID.
	Create(ctx context.Context, p *Profile) error

	// GetByID retrieves a profile by primary key. Returns ErrProfileNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)

	// GetByUserID retrieves the profile linked to a user account.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// Update persists mutable profile fields.
	Update(ctx context.Context, p *Profile) error
}
