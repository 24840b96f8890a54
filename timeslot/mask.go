package timeslot

import "errors"

// SlotState is the materialized status of one 30-minute slot on one date.
type SlotState byte

const (
	Closed SlotState = '0' // not offered by the weekly template
	Open   SlotState = '1' // offered and free
	Taken  SlotState = '2' // offered and reserved
)

var ErrBadMask = errors.New("day mask must be 48 state characters")

// DayMask is the full state of one service day: 48 slot states stored as a
// fixed-length character string so the database column keeps O(1) indexing.
type DayMask [SlotsPerDay]SlotState

// NewDayMask returns a mask with every slot Closed.
func NewDayMask() DayMask {
	var m DayMask
	for i := range m {
		m[i] = Closed
	}
	return m
}

// ParseDayMask decodes the persisted 48-character column value.
func ParseDayMask(s string) (DayMask, error) {
	var m DayMask
	if len(s) != SlotsPerDay {
		return m, ErrBadMask
	}
	for i := 0; i < SlotsPerDay; i++ {
		switch SlotState(s[i]) {
		case Closed, Open, Taken:
			m[i] = SlotState(s[i])
		default:
			return m, ErrBadMask
		}
	}
	return m, nil
}

// String encodes the mask for persistence.
func (m DayMask) String() string {
	b := make([]byte, SlotsPerDay)
	for i, s := range m {
		b[i] = byte(s)
	}
	return string(b)
}

// State returns the state of slot i.
func (m DayMask) State(i int) SlotState {
	return m[i]
}

// OpenCount returns how many slots are currently bookable.
func (m DayMask) OpenCount() int {
	n := 0
	for _, s := range m {
		if s == Open {
			n++
		}
	}
	return n
}
