package pharmacy

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type StockStatus string

const (
	StatusInStock    StockStatus = "IN_STOCK"
	StatusLowStock   StockStatus = "LOW_STOCK"
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

func (s StockStatus) IsValid() bool {
	switch s {
	case StatusInStock, StatusLowStock, StatusOutOfStock:
		return true
	}
	return false
}

// ParseStockStatus normalizes a client-supplied status string.
func ParseStockStatus(raw string) (StockStatus, error) {
	s := StockStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidStockStatus
	}
	return s, nil
}

// lowStockThreshold is the quantity at or below which stock is flagged low.
const lowStockThreshold = 10

// StatusForQuantity derives the stock flag from a total batch quantity:
// sum > 10 IN_STOCK, 0 < sum <= 10 LOW_STOCK, sum == 0 OUT_OF_STOCK.
func StatusForQuantity(total int) StockStatus {
	switch {
	case total > lowStockThreshold:
		return StatusInStock
	case total > 0:
		return StatusLowStock
	default:
		return StatusOutOfStock
	}
}

// Stock is a pharmacy's availability flag for one medicine, unique per
// (pharmacy, medicine). The flag is persisted, and every batch mutation
// recomputes it in the same transaction so it cannot drift from batch totals.
type Stock struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PharmacyID uuid.UUID   `gorm:"column:pharmacy_id;type:uuid;not null;uniqueIndex:idx_stock_pharmacy_medicine"`
	MedicineID uuid.UUID   `gorm:"column:medicine_id;type:uuid;not null;uniqueIndex:idx_stock_pharmacy_medicine"`
	Status     StockStatus `gorm:"column:status;type:varchar(20);not null;default:'OUT_OF_STOCK';index"`
}

func (Stock) TableName() string {
	return "pharmacy.stocks"
}

// Batch is a dated, quantified physical lot of a medicine held by one
// pharmacy. Many batches may exist per (pharmacy, medicine) pair.
type Batch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PharmacyID  uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;index"`
	MedicineID  uuid.UUID `gorm:"column:medicine_id;type:uuid;not null;index"`
	BatchNumber string    `gorm:"column:batch_number;type:varchar(100);not null"`
	Quantity    int       `gorm:"column:quantity;not null"`
	ExpiryDate  time.Time `gorm:"column:expiry_date;not null;index"`
}

func (Batch) TableName() string {
	return "pharmacy.medicine_batches"
}

// ExpiresWithin reports whether the batch expires inside the given window.
func (b *Batch) ExpiresWithin(window time.Duration, now time.Time) bool {
	return !b.ExpiryDate.Before(now) && b.ExpiryDate.Before(now.Add(window))
}

type CreateBatchCommand struct {
	MedicineID  uuid.UUID
	BatchNumber string
	Quantity    int
	ExpiryDate  time.Time
}

// InventoryItem is the per-medicine inventory view: the persisted stock flag
// joined with live batch totals.
type InventoryItem struct {
	StockID       uuid.UUID   `json:"stock_id"`
	MedicineID    uuid.UUID   `json:"medicine_id"`
	Name          string      `json:"name"`
	GenericName   string      `json:"generic_name"`
	Status        StockStatus `json:"status"`
	TotalQuantity int         `json:"total_quantity"`
	SoonestExpiry *time.Time  `json:"soonest_expiry"`
}

// StockAlerts is the pharmacist alert view: low/out-of-stock flags plus
// batches expiring within the alert window, soonest first.
type StockAlerts struct {
	LowStock      []*InventoryItem `json:"low_stock"`
	ExpiringSoon  []*ExpiringBatch `json:"expiring_soon"`
	WindowEndsAt  time.Time        `json:"window_ends_at"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

type ExpiringBatch struct {
	BatchID      uuid.UUID `json:"batch_id"`
	MedicineID   uuid.UUID `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	BatchNumber  string    `json:"batch_number"`
	Quantity     int       `json:"quantity"`
	ExpiryDate   time.Time `json:"expiry_date"`
}
