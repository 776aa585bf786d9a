package pharmacy

import "errors"

var (
	ErrProfileNotFound    = errors.New("pharmacist profile not found")
	ErrProfileExists      = errors.New("pharmacist profile already exists for this user")
	ErrPharmacyNotFound   = errors.New("pharmacy not found")
	ErrMedicineNotFound   = errors.New("medicine not found")
	ErrStockNotFound      = errors.New("stock entry not found")
	ErrInvalidStockStatus = errors.New("invalid stock status")
	ErrInvalidQuantity    = errors.New("batch quantity must be greater than zero")
	ErrExpiryRequired     = errors.New("batch expiry date is required")
	ErrBatchNumberEmpty   = errors.New("batch number is required")
)
