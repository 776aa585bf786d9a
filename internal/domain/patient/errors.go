package patient

import "errors"

var (
	ErrProfileNotFound = errors.New("patient profile not found")
	ErrProfileExists   = errors.New("patient profile already exists for this user")
	ErrInvalidGender   = errors.New("invalid gender value")
)
