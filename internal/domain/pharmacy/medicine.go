package pharmacy

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Medicine is the canonical drug catalog. Rows accumulate monotonically and
// are never deleted. NameKey is the lowercased name; resolution always
// compares on it so matching stays case-insensitive regardless of the
// database backend's collation.
type Medicine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name        string `gorm:"column:name;type:varchar(255);not null"`
	GenericName string `gorm:"column:generic_name;type:varchar(255)"`
	NameKey     string `gorm:"column:name_key;type:varchar(255);uniqueIndex;not null"`
}

func (Medicine) TableName() string {
	return "pharmacy.medicines"
}

// NormalizeName produces the lookup key for a medicine name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
