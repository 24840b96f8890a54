package scheduling

import (
	"time"

	"github.com/caringlab/care_connect/timeslot"
)

// HourRule is one recurring weekly open-hours rule for a counsel service.
// Start and End are "HH:MM" clock strings; End is the last bookable start
// time of the rule, so coverage runs Start..End inclusive by unit step.
type HourRule struct {
	Day   time.Weekday
	Start string
	End   string
}

// indexedRule is an HourRule resolved to slot indices.
type indexedRule struct {
	day        time.Weekday
	start, end int
}

func resolveRule(unit timeslot.Unit, r HourRule) (indexedRule, error) {
	start, err := timeslot.IndexOfClock(r.Start)
	if err != nil {
		return indexedRule{}, ErrMisalignedTime
	}
	end, err := timeslot.IndexOfClock(r.End)
	if err != nil {
		return indexedRule{}, ErrMisalignedTime
	}
	if unit == timeslot.UnitFull && (start%2 != 0 || end%2 != 0) {
		return indexedRule{}, ErrMisalignedTime
	}
	if start > end {
		return indexedRule{}, ErrInvertedRange
	}
	if end > timeslot.LastStart(unit) {
		return indexedRule{}, ErrEndTooLate
	}
	return indexedRule{day: r.Day, start: start, end: end}, nil
}

// covered visits every slot index a rule declares open: bookable starts run
// Start..End inclusive stepping by the unit, and a FULL start also covers
// its pair slot so claiming the hour finds both halves open.
func (r indexedRule) covered(unit timeslot.Unit, visit func(i int)) {
	step := timeslot.Step(unit)
	for i := r.start; i <= r.end; i += step {
		for j := i; j < i+step && j < timeslot.SlotsPerDay; j++ {
			visit(j)
		}
	}
}

// ValidateHours checks a full replacement set of hour rules: every rule must
// be aligned to the unit and in range, and no two rules for the same day of
// week may cover the same slot. Nothing is applied if any rule fails.
func ValidateHours(unit timeslot.Unit, rules []HourRule) error {
	var taken [7][timeslot.SlotsPerDay]bool
	for _, r := range rules {
		ir, err := resolveRule(unit, r)
		if err != nil {
			return err
		}
		collided := false
		ir.covered(unit, func(i int) {
			if taken[ir.day][i] {
				collided = true
			}
			taken[ir.day][i] = true
		})
		if collided {
			return ErrOverlappingHours
		}
	}
	return nil
}

// ProjectDay materializes the weekly rules onto a fresh all-closed day mask
// for one weekday. Only rules matching the weekday contribute; everything
// they cover becomes Open. Rules are assumed already validated.
func ProjectDay(unit timeslot.Unit, rules []HourRule, day time.Weekday) timeslot.DayMask {
	mask := timeslot.NewDayMask()
	for _, r := range rules {
		if r.Day != day {
			continue
		}
		ir, err := resolveRule(unit, r)
		if err != nil {
			continue
		}
		ir.covered(unit, func(i int) {
			mask[i] = timeslot.Open
		})
	}
	return mask
}

// CheckLeadWindow enforces minDays <= (date - today) <= maxDays, counting in
// whole calendar days.
func CheckLeadWindow(minDays, maxDays int, date, today time.Time) error {
	d := daysBetween(today, date)
	if d < minDays || d > maxDays {
		return ErrOutsideLeadWindow
	}
	return nil
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
