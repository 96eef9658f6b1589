package scheduling

import "errors"

var (
	ErrInvalidTimeFormat   = errors.New("invalid time format, expected HH:MM")
	ErrInvalidAvailability = errors.New("invalid availability")
)
