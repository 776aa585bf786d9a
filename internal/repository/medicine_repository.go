package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carelink/carelink-api/internal/domain/pharmacy"
)

type MedicineRepository struct {
	db *gorm.DB
}

func NewMedicineRepository(db *gorm.DB) *MedicineRepository {
	return &MedicineRepository{db: db}
}

// GetOrCreateByName resolves a medicine on the normalized name column, so
// matching is case-insensitive regardless of database collation. On a miss a
// new catalog entry is created with GenericName defaulting to the name. Two
// concurrent misses for the same name race on the unique name_key index; the
// loser re-fetches the winner's row.
func (r *MedicineRepository) GetOrCreateByName(ctx context.Context, name string) (*pharmacy.Medicine, error) {
	key := pharmacy.NormalizeName(name)

	var m pharmacy.Medicine
	err := r.db.WithContext(ctx).Where("name_key = ?", key).First(&m).Error
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	m = pharmacy.Medicine{
		Name:        strings.TrimSpace(name),
		GenericName: strings.TrimSpace(name),
		NameKey:     key,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing pharmacy.Medicine
			if err := r.db.WithContext(ctx).Where("name_key = ?", key).First(&existing).Error; err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}

	return &m, nil
}

func (r *MedicineRepository) GetByID(ctx context.Context, id uuid.UUID) (*pharmacy.Medicine, error) {
	var m pharmacy.Medicine
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pharmacy.ErrMedicineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MedicineRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*pharmacy.Medicine, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*pharmacy.Medicine{}, nil
	}

	var medicines []*pharmacy.Medicine
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&medicines).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*pharmacy.Medicine, len(medicines))
	for _, m := range medicines {
		byID[m.ID] = m
	}
	return byID, nil
}
