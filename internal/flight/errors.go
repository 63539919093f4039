package flight

import "errors"

var (
	ErrNotFound        = errors.New("flight not found")
	ErrDuplicateFlight = errors.New("flight number already exists for this departure time")
	ErrInvalidSort     = errors.New("unsupported sort field")
	ErrDepartureInPast = errors.New("departure must be in the future")
	ErrArrivalOrder    = errors.New("arrival must be after departure")
	ErrDateInPast      = errors.New("departure date cannot be in the past")
)
