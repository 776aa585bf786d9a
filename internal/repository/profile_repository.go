package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carelink/carelink-api/internal/domain/doctor"
	"github.com/carelink/carelink-api/internal/domain/patient"
)

type PatientProfileRepository struct {
	db *gorm.DB
}

func NewPatientProfileRepository(db *gorm.DB) *PatientProfileRepository {
	return &PatientProfileRepository{db: db}
}

func (r *PatientProfileRepository) Create(ctx context.Context, p *patient.Profile) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return patient.ErrProfileExists
		}
		return err
	}
	return nil
}

func (r *PatientProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Profile, error) {
	var p patient.Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PatientProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*patient.Profile, error) {
	var p patient.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PatientProfileRepository) Update(ctx context.Context, p *patient.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

type DoctorProfileRepository struct {
	db *gorm.DB
}

func NewDoctorProfileRepository(db *gorm.DB) *DoctorProfileRepository {
	return &DoctorProfileRepository{db: db}
}

func (r *DoctorProfileRepository) Create(ctx context.Context, p *doctor.Profile) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return doctor.ErrProfileExists
		}
		return err
	}
	return nil
}

func (r *DoctorProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Profile, error) {
	var p doctor.Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, doctor.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *DoctorProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*doctor.Profile, error) {
	var p doctor.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, doctor.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *DoctorProfileRepository) ListBySpecialty(ctx context.Context, specialty string) ([]*doctor.Profile, error) {
	q := r.db.WithContext(ctx).Model(&doctor.Profile{})
	if specialty != "" {
		q = q.Where("specialty = ?", specialty)
	}

	var profiles []*doctor.Profile
	if err := q.Order("created_at").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
