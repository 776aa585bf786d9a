package patient

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

type ContactInfo struct {
	Phone   string `gorm:"column:phone;type:varchar(20)"`
	Address string `gorm:"column:address;type:text"`
	City    string `gorm:"column:city;type:varchar(100)"`
	State   string `gorm:"column:state;type:varchar(50)"`
	Pincode string `gorm:"column:pincode;type:varchar(20)"`
}

// Profile holds the patient-specific data for a user with the patient role.
// Exactly one profile exists per patient user.
type Profile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"` // Soft delete

	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`

	DateOfBirth *time.Time `gorm:"column:date_of_birth"`
	Gender      Gender     `gorm:"column:gender;type:varchar(20);default:'unknown'"`
	BloodGroup  string     `gorm:"column:blood_group;type:varchar(5)"`

	ContactInfo

	Allergies         []string `gorm:"column:allergies;serializer:json"`
	ChronicConditions []string `gorm:"column:chronic_conditions;serializer:json"`
}

func (Profile) TableName() string {
	return "clinical.patient_profiles"
}

func (p *Profile) Age() int {
	if p.DateOfBirth == nil {
		return 0
	}
	now := time.Now()
	years := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		years--
	}
	return years
}

type CreateProfileCommand struct {
	UserID      uuid.UUID
	DateOfBirth *time.Time
	Gender      Gender
	BloodGroup  string
	Phone       string
	Address     string
	City        string
	State       string
	Pincode     string
}
