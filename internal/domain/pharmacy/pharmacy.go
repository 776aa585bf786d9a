package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// DayHours is the open/close window for a single weekday.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	IsOpen bool   `json:"is_open"`
}

// OperatingHours maps lowercase weekday names ("monday" .. "sunday") to hours.
type OperatingHours map[string]DayHours

// PharmacistProfile holds the pharmacist-specific data for a user with the
// pharmacist role. PharmacyID is nil until the pharmacy is provisioned.
type PharmacistProfile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	LicenseNumber string     `gorm:"column:license_number;type:varchar(50)"`
	PharmacyID    *uuid.UUID `gorm:"column:pharmacy_id;type:uuid;index"`
}

func (PharmacistProfile) TableName() string {
	return "pharmacy.pharmacist_profiles"
}

// Pharmacy is owned by exactly one pharmacist. The unique index on
// PharmacistID is what makes first-access provisioning race-safe: a concurrent
// duplicate insert fails and the caller re-fetches instead of double-creating.
type Pharmacy struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Name    string `gorm:"column:name;type:varchar(255);not null"`
	Address string `gorm:"column:address;type:text;not null"`
	City    string `gorm:"column:city;type:varchar(100)"`
	State   string `gorm:"column:state;type:varchar(50)"`
	Pincode string `gorm:"column:pincode;type:varchar(20)"`

	// (0,0) is the sentinel for "location not yet configured"; such
	// pharmacies never appear in proximity results.
	Latitude  float64 `gorm:"column:latitude;default:0"`
	Longitude float64 `gorm:"column:longitude;default:0"`

	Phone string `gorm:"column:phone;type:varchar(20)"`
	Email string `gorm:"column:email;type:varchar(255)"`

	OperatingHours OperatingHours `gorm:"column:operating_hours;serializer:json"`
	Services       []string       `gorm:"column:services;serializer:json"`

	IsActive     bool      `gorm:"column:is_active;default:true;index"`
	PharmacistID uuid.UUID `gorm:"column:pharmacist_id;type:uuid;not null;uniqueIndex"`
}

func (Pharmacy) TableName() string {
	return "pharmacy.pharmacies"
}

// HasLocation reports whether coordinates have been configured.
func (p *Pharmacy) HasLocation() bool {
	return p.Latitude != 0 || p.Longitude != 0
}

// OffersService reports whether the pharmacy lists the named service.
func (p *Pharmacy) OffersService(service string) bool {
	for _, s := range p.Services {
		if s == service {
			return true
		}
	}
	return false
}

type UpdatePharmacyCommand struct {
	Name           *string
	Address        *string
	City           *string
	State          *string
	Pincode        *string
	Latitude       *float64
	Longitude      *float64
	Phone          *string
	Email          *string
	OperatingHours *OperatingHours
	Services       *[]string
}

// NearbyQuery filters the patient-facing pharmacy search.
type NearbyQuery struct {
	Latitude  *float64
	Longitude *float64
	RadiusKm  float64
	Service   string
}

// NearbyPharmacy is one row of a proximity search result.
type NearbyPharmacy struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Address        string         `json:"address"`
	City           string         `json:"city"`
	State          string         `json:"state"`
	Pincode        string         `json:"pincode"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	OperatingHours OperatingHours `json:"operating_hours"`
	Services       []string       `json:"services"`
	PharmacistName string         `json:"pharmacist_name"`

	// DistanceKm is set only when the caller supplied a location.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
