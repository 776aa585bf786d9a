package pharmacy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *PharmacistProfile) error

	// GetByUserID returns ErrProfileNotFound when the user has no
	// pharmacist profile.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*PharmacistProfile, error)

	// LinkPharmacy backfills the profile's PharmacyID.
	LinkPharmacy(ctx context.Context, profileID, pharmacyID uuid.UUID) error
}

type Repository interface {
	// CreateForPharmacist inserts a pharmacy and links it to the profile in
	// one transaction. If a pharmacy for the pharmacist already exists
	// (unique constraint on pharmacist_id), the existing row is returned
	// instead — concurrent first calls cannot both create.
	CreateForPharmacist(ctx context.Context, p *Pharmacy, profileID uuid.UUID) (*Pharmacy, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	GetByPharmacistID(ctx context.Context, pharmacistID uuid.UUID) (*Pharmacy, error)
	Update(ctx context.Context, id uuid.UUID, cmd *UpdatePharmacyCommand) (*Pharmacy, error)

	// ListActiveWithPharmacist returns active pharmacies joined with the
	// owning pharmacist's user name, for the patient-facing search.
	ListActiveWithPharmacist(ctx context.Context) ([]*NearbyPharmacy, error)
}

type MedicineRepository interface {
	// GetOrCreateByName resolves a medicine by normalized name, creating it
	// with GenericName = name when no match exists.
	GetOrCreateByName(ctx context.Context, name string) (*Medicine, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Medicine, error)
}

type StockRepository interface {
	// CreateBatch inserts the batch and recomputes the (pharmacy, medicine)
	// stock flag from batch totals inside the same transaction.
	CreateBatch(ctx context.Context, b *Batch) error

	GetStock(ctx context.Context, stockID uuid.UUID) (*Stock, error)
	ListStock(ctx context.Context, pharmacyID uuid.UUID) ([]*Stock, error)
	SetStockStatus(ctx context.Context, stockID uuid.UUID, status StockStatus) error

	// ListBatches returns all batches for the pharmacy restricted to the
	// given medicine ids; nil ids means all.
	ListBatches(ctx context.Context, pharmacyID uuid.UUID, medicineIDs []uuid.UUID) ([]*Batch, error)

	// ListExpiringBatches returns batches expiring before the deadline,
	// soonest first.
	ListExpiringBatches(ctx context.Context, pharmacyID uuid.UUID, before time.Time) ([]*Batch, error)

	// ListLowStock returns stock rows flagged LOW_STOCK or OUT_OF_STOCK.
	ListLowStock(ctx context.Context, pharmacyID uuid.UUID) ([]*Stock, error)
}
