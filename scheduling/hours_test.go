package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/caringlab/care_connect/timeslot"
)

func TestValidateHours(t *testing.T) {
	tests := []struct {
		name  string
		unit  timeslot.Unit
		rules []HourRule
		want  error
	}{
		{
			name: "disjoint same day",
			unit: timeslot.UnitHalf,
			rules: []HourRule{
				{Day: time.Monday, Start: "09:00", End: "11:30"},
				{Day: time.Monday, Start: "14:00", End: "17:30"},
			},
		},
		{
			name: "same range different days",
			unit: timeslot.UnitHalf,
			rules: []HourRule{
				{Day: time.Monday, Start: "09:00", End: "17:30"},
				{Day: time.Tuesday, Start: "09:00", End: "17:30"},
			},
		},
		{
			name: "overlap same day",
			unit: timeslot.UnitHalf,
			rules: []HourRule{
				{Day: time.Monday, Start: "09:00", End: "12:00"},
				{Day: time.Monday, Start: "11:30", End: "14:00"},
			},
			want: ErrOverlappingHours,
		},
		{
			name: "shared boundary slot collides",
			unit: timeslot.UnitHalf,
			rules: []HourRule{
				{Day: time.Monday, Start: "09:00", End: "10:00"},
				{Day: time.Monday, Start: "10:00", End: "11:00"},
			},
			want: ErrOverlappingHours,
		},
		{
			name: "misaligned clock",
			unit: timeslot.UnitHalf,
			rules: []HourRule{
				{Day: time.Monday, Start: "09:15", End: "11:00"},
			},
			want: ErrMisalignedTime,
		},
		{
			name: "full unit requires hour alignment",
			unit: timeslot.UnitFull,
			rules: []HourRule{
				{Day: time.Monday, Start: "09:30", End: "11:00"},
			},
			want: ErrMisalignedTime,
		},
		{
			name: "half end at last slot",
			unit: timeslot.UnitHalf,
			rules: []HourRule{
				{Day: time.Monday, Start: "23:00", End: "23:30"},
			},
		},
		{
			name: "full end past last pair",
			unit: timeslot.UnitFull,
			rules: []HourRule{
				{Day: time.Monday, Start: "22:00", End: "23:30"},
			},
			want: ErrMisalignedTime,
		},
		{
			name: "full end at last pair",
			unit: timeslot.UnitFull,
			rules: []HourRule{
				{Day: time.Monday, Start: "22:00", End: "23:00"},
			},
		},
		{
			name: "inverted range",
			unit: timeslot.UnitHalf,
			rules: []HourRule{
				{Day: time.Monday, Start: "14:00", End: "09:00"},
			},
			want: ErrInvertedRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHours(tt.unit, tt.rules)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProjectDay(t *testing.T) {
	rules := []HourRule{
		{Day: time.Monday, Start: "09:00", End: "10:30"},
		{Day: time.Tuesday, Start: "14:00", End: "17:30"},
	}

	mask := ProjectDay(timeslot.UnitHalf, rules, time.Monday)

	// Monday's rule covers 09:00..10:30 inclusive: slots 18..21.
	for i := 18; i <= 21; i++ {
		if mask.State(i) != timeslot.Open {
			t.Errorf("slot %d should be open", i)
		}
	}
	if mask.State(17) != timeslot.Closed || mask.State(22) != timeslot.Closed {
		t.Error("slots outside the rule should stay closed")
	}
	// Tuesday's rule must not leak into Monday.
	if mask.State(28) != timeslot.Closed {
		t.Error("other weekday's rule leaked into projection")
	}
}

func TestProjectDay_FullUnitSteps(t *testing.T) {
	rules := []HourRule{
		{Day: time.Friday, Start: "09:00", End: "11:00"},
	}

	mask := ProjectDay(timeslot.UnitFull, rules, time.Friday)

	// FULL starts 18, 20, 22 and each start's pair slot are all open.
	for i := 18; i <= 23; i++ {
		if mask.State(i) != timeslot.Open {
			t.Errorf("slot %d should be open", i)
		}
	}
	if mask.State(17) != timeslot.Closed || mask.State(24) != timeslot.Closed {
		t.Error("slots outside the rule should stay closed")
	}
}

func TestProjectDay_NoRules(t *testing.T) {
	mask := ProjectDay(timeslot.UnitHalf, nil, time.Sunday)
	if mask.OpenCount() != 0 {
		t.Fatalf("projection with no rules should be fully closed, got %d open", mask.OpenCount())
	}
}

func TestCheckLeadWindow(t *testing.T) {
	today := time.Date(2026, 3, 9, 15, 30, 0, 0, time.UTC)
	day := func(offset int) time.Time { return today.AddDate(0, 0, offset) }

	tests := []struct {
		name    string
		min, max int
		date    time.Time
		wantErr bool
	}{
		{"at min boundary", 1, 14, day(1), false},
		{"at max boundary", 1, 14, day(14), false},
		{"one before min", 1, 14, day(0), true},
		{"one past max", 1, 14, day(15), true},
		{"same day allowed when min zero", 0, 7, day(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLeadWindow(tt.min, tt.max, tt.date, today)
			if tt.wantErr && !errors.Is(err, ErrOutsideLeadWindow) {
				t.Fatalf("expected ErrOutsideLeadWindow, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
