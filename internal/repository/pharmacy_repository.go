package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carelink/carelink-api/internal/domain/pharmacy"
)

type PharmacistProfileRepository struct {
	db *gorm.DB
}

func NewPharmacistProfileRepository(db *gorm.DB) *PharmacistProfileRepository {
	return &PharmacistProfileRepository{db: db}
}

func (r *PharmacistProfileRepository) Create(ctx context.Context, p *pharmacy.PharmacistProfile) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pharmacy.ErrProfileExists
		}
		return err
	}
	return nil
}

func (r *PharmacistProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*pharmacy.PharmacistProfile, error) {
	var p pharmacy.PharmacistProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pharmacy.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PharmacistProfileRepository) LinkPharmacy(ctx context.Context, profileID, pharmacyID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&pharmacy.PharmacistProfile{}).
		Where("id = ?", profileID).
		Update("pharmacy_id", pharmacyID).Error
}

type PharmacyRepository struct {
	db *gorm.DB
}

func NewPharmacyRepository(db *gorm.DB) *PharmacyRepository {
	return &PharmacyRepository{db: db}
}

// CreateForPharmacist inserts the pharmacy and backfills the profile link in
// one transaction. The unique constraint on pharmacist_id is the race guard:
// when two first-access calls collide, the loser's insert fails with a
// duplicate key and the winner's row is returned instead.
func (r *PharmacyRepository) CreateForPharmacist(ctx context.Context, p *pharmacy.Pharmacy, profileID uuid.UUID) (*pharmacy.Pharmacy, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Model(&pharmacy.PharmacistProfile{}).
			Where("id = ?", profileID).
			Update("pharmacy_id", p.ID).Error
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, getErr := r.GetByPharmacistID(ctx, p.PharmacistID)
		if getErr != nil {
			return nil, getErr
		}
		linkErr := r.db.WithContext(ctx).Model(&pharmacy.PharmacistProfile{}).
			Where("id = ?", profileID).
			Update("pharmacy_id", existing.ID).Error
		if linkErr != nil {
			return nil, linkErr
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (r *PharmacyRepository) GetByID(ctx context.Context, id uuid.UUID) (*pharmacy.Pharmacy, error) {
	var p pharmacy.Pharmacy
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pharmacy.ErrPharmacyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PharmacyRepository) GetByPharmacistID(ctx context.Context, pharmacistID uuid.UUID) (*pharmacy.Pharmacy, error) {
	var p pharmacy.Pharmacy
	err := r.db.WithContext(ctx).Where("pharmacist_id = ?", pharmacistID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pharmacy.ErrPharmacyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PharmacyRepository) Update(ctx context.Context, id uuid.UUID, cmd *pharmacy.UpdatePharmacyCommand) (*pharmacy.Pharmacy, error) {
	updates := map[string]any{}
	if cmd.Name != nil {
		updates["name"] = *cmd.Name
	}
	if cmd.Address != nil {
		updates["address"] = *cmd.Address
	}
	if cmd.City != nil {
		updates["city"] = *cmd.City
	}
	if cmd.State != nil {
		updates["state"] = *cmd.State
	}
	if cmd.Pincode != nil {
		updates["pincode"] = *cmd.Pincode
	}
	if cmd.Latitude != nil {
		updates["latitude"] = *cmd.Latitude
	}
	if cmd.Longitude != nil {
		updates["longitude"] = *cmd.Longitude
	}
	if cmd.Phone != nil {
		updates["phone"] = *cmd.Phone
	}
	if cmd.Email != nil {
		updates["email"] = *cmd.Email
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p pharmacy.Pharmacy
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pharmacy.ErrPharmacyNotFound
			}
			return err
		}

		if len(updates) > 0 {
			if err := tx.Model(&p).Updates(updates).Error; err != nil {
				return err
			}
		}

		// JSON-serialized columns go through Save so the serializer runs.
		if cmd.OperatingHours != nil {
			p.OperatingHours = *cmd.OperatingHours
		}
		if cmd.Services != nil {
			p.Services = *cmd.Services
		}
		if cmd.OperatingHours != nil || cmd.Services != nil {
			return tx.Save(&p).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// nearbyRow is the join projection behind the patient-facing search.
type nearbyRow struct {
	pharmacy.Pharmacy
	PharmacistFirstName string `gorm:"column:pharmacist_first_name"`
	PharmacistLastName  string `gorm:"column:pharmacist_last_name"`
}

func (r *PharmacyRepository) ListActiveWithPharmacist(ctx context.Context) ([]*pharmacy.NearbyPharmacy, error) {
	var rows []nearbyRow
	err := r.db.WithContext(ctx).
		Table("pharmacy.pharmacies AS p").
		Select("p.*, u.first_name AS pharmacist_first_name, u.last_name AS pharmacist_last_name").
		Joins("JOIN pharmacy.pharmacist_profiles pp ON pp.id = p.pharmacist_id").
		Joins("JOIN auth.users u ON u.id = pp.user_id").
		Where("p.is_active AND p.deleted_at IS NULL").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*pharmacy.NearbyPharmacy, 0, len(rows))
	for _, row := range rows {
		hours := row.OperatingHours
		if hours == nil {
			hours = pharmacy.OperatingHours{}
		}
		services := row.Services
		if services == nil {
			services = []string{}
		}

		results = append(results, &pharmacy.NearbyPharmacy{
			ID:             row.ID,
			Name:           row.Name,
			Address:        row.Address,
			City:           row.City,
			State:          row.State,
			Pincode:        row.Pincode,
			Latitude:       row.Latitude,
			Longitude:      row.Longitude,
			Phone:          row.Phone,
			Email:          row.Email,
			OperatingHours: hours,
			Services:       services,
			PharmacistName: joinName(row.PharmacistFirstName, row.PharmacistLastName),
		})
	}

	return results, nil
}

func joinName(first, last string) string {
	switch {
	case first == "" && last == "":
		return ""
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
