package timeslot

import (
	"errors"
	"fmt"
	"time"
)

// A day is divided into 48 fixed 30-minute slots, indexed 0..47 from midnight.
const (
	SlotsPerDay = 48
	SlotMinutes = 30
)

// Unit is the minimum bookable block for a counsel service.
type Unit string

const (
	UnitHalf Unit = "HALF" // one 30-minute slot
	UnitFull Unit = "FULL" // two consecutive 30-minute slots
)

var ErrMisalignedTime = errors.New("time is not aligned to a 30-minute slot boundary")

// Step returns how many consecutive slots one booking unit spans.
func Step(u Unit) int {
	if u == UnitFull {
		return 2
	}
	return 1
}

// Index maps a wall-clock time of day to its slot index.
func Index(t time.Time) (int, error) {
	if t.Minute()%SlotMinutes != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return 0, ErrMisalignedTime
	}
	return t.Hour()*2 + t.Minute()/SlotMinutes, nil
}

// IndexOfClock parses "HH:MM" and maps it to a slot index.
func IndexOfClock(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, ErrMisalignedTime
	}
	return Index(t)
}

// StartOf returns the offset from midnight at which slot i begins.
func StartOf(i int) time.Duration {
	return time.Duration(i) * SlotMinutes * time.Minute
}

// EndOf returns the offset from midnight at which slot i ends.
func EndOf(i int) time.Duration {
	return StartOf(i) + SlotMinutes*time.Minute
}

// Clock formats an offset from midnight as "HH:MM".
func Clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// Label renders a slot as a human-readable half-open range, e.g. "09:00 - 09:30".
func Label(i int) string {
	return Clock(StartOf(i)) + " - " + Clock(EndOf(i))
}

// InRange reports whether i is a valid slot index.
func InRange(i int) bool {
	return i >= 0 && i < SlotsPerDay
}

// Aligned reports whether slot i is a valid start for a booking of the given
// unit. FULL bookings must start on the hour and leave room for their pair.
func Aligned(i int, u Unit) bool {
	if !InRange(i) {
		return false
	}
	if u == UnitFull {
		return i%2 == 0 && i+1 < SlotsPerDay
	}
	return true
}

// LastStart returns the highest valid start index for the given unit:
// 47 for HALF, 46 for FULL (the pair 46/47 is the final bookable hour).
func LastStart(u Unit) int {
	return SlotsPerDay - Step(u)
}
