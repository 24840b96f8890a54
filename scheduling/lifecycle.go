package scheduling

// Reservation lifecycle: PENDING -> CONFIRMED -> COMPLETED, with PENDING and
// CONFIRMED both cancelable. COMPLETED and CANCELED are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusCompleted, StatusCanceled},
}

// CanTransition reports whether from -> to is on the lifecycle graph.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status change without applying it.
func Transition(from, to string) error {
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

// Terminal reports whether a reservation can no longer change state.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusCanceled
}

// InstitutionAdvance reports whether the institution side may move a
// reservation from -> to. Institutions confirm and complete; cancellation
// goes through the cancel path so the slot release shares its transaction.
func InstitutionAdvance(from, to string) bool {
	return CanTransition(from, to) && to != StatusCanceled
}
