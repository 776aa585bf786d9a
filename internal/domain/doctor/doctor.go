package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the practice data for a user with the doctor role.
type Profile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`

	Specialty       string  `gorm:"column:specialty;type:varchar(100);index"`
	LicenseNumber   string  `gorm:"column:license_number;type:varchar(50);uniqueIndex"`
	YearsExperience int     `gorm:"column:years_experience;default:0"`
	ConsultationFee float64 `gorm:"column:consultation_fee;default:0"`
	Bio             string  `gorm:"column:bio;type:text"`
}

func (Profile) TableName() string {
	return "clinical.doctor_profiles"
}

type CreateProfileCommand struct {
	UserID          uuid.UUID
	Specialty       string
	LicenseNumber   string
	YearsExperience int
	ConsultationFee float64
	Bio             string
}
