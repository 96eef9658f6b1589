package appointments

import (
	"errors"

	"farm-vet-appointments/internal/scheduling"
)

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidTimeFormat       = scheduling.ErrInvalidTimeFormat
	ErrInvalidDuration         = errors.New("duration must be between 15 and 240 minutes")
	ErrMissingRequiredIdentity = errors.New("either animal_id or animal_name is required")
	ErrSchedulingConflict      = errors.New("vet already has an appointment at that time")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrNotCancellable          = errors.New("appointment cannot be cancelled")
	ErrNotReschedulable        = errors.New("appointment cannot be rescheduled")
	ErrNotFound                = errors.New("appointment not found")
	ErrForbidden               = errors.New("forbidden")
)
