package scheduling

import "errors"

// Validation errors: rejected before any mutation, recoverable by the caller.
var (
	ErrMisalignedTime    = errors.New("time is not aligned to the counsel unit")
	ErrInvertedRange     = errors.New("start time must not be after end time")
	ErrEndTooLate        = errors.New("end time exceeds the last bookable slot for this unit")
	ErrOverlappingHours  = errors.New("counsel hours overlap for the same day of week")
	ErrInvalidSlotIndex  = errors.New("slot index out of range")
	ErrUnalignedSlot     = errors.New("slot index is not a valid start for this unit")
	ErrOutsideLeadWindow = errors.New("date is outside the reservable window for this counsel")
)

// Conflict errors: expected under load, retryable with a different slot.
var (
	ErrSlotUnavailable = errors.New("time slot is not available")
	ErrDayContended    = errors.New("day is being modified by another request, try again")
)

// State errors: the requested transition is not on the lifecycle graph.
var ErrInvalidTransition = errors.New("invalid reservation status transition")
