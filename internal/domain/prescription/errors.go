package prescription

import "errors"

var (
	ErrPrescriptionNotFound    = errors.New("prescription not found")
	ErrInvalidStatus           = errors.New("invalid prescription status")
	ErrInvalidStatusTransition = errors.New("prescription can only move from PENDING to DISPENSED")
	ErrPharmacyRequired        = errors.New("pharmacy is required when prescription items are present")
)
