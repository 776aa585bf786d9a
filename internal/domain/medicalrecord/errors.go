package medicalrecord

import "errors"

var (
	ErrRecordNotFound    = errors.New("medical record not found")
	ErrDiagnosisRequired = errors.New("diagnosis is required")
)
