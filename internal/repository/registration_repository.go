package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/carelink/carelink-api/internal/domain"
	"github.com/carelink/carelink-api/internal/domain/doctor"
	"github.com/carelink/carelink-api/internal/domain/patient"
	"github.com/carelink/carelink-api/internal/domain/pharmacy"
)

// RegistrationRepository creates a user together with its role profile in a
// single transaction, so a half-registered account cannot exist.
type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Register(
	ctx context.Context,
	u *domain.User,
	patientProfile *patient.Profile,
	doctorProfile *doctor.Profile,
	pharmacistProfile *pharmacy.PharmacistProfile,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}

		switch {
		case patientProfile != nil:
			patientProfile.UserID = u.ID
			return tx.Create(patientProfile).Error
		case doctorProfile != nil:
			doctorProfile.UserID = u.ID
			return tx.Create(doctorProfile).Error
		case pharmacistProfile != nil:
			pharmacistProfile.UserID = u.ID
			return tx.Create(pharmacistProfile).Error
		}
		return nil
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrEmailTaken
	}
	return err
}
