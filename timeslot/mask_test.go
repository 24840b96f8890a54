package timeslot

import (
	"strings"
	"testing"
)

func TestDayMask_EncodeDecode(t *testing.T) {
	mask := NewDayMask()
	mask[0] = Open
	mask[1] = Taken
	mask[47] = Open

	decoded, err := ParseDayMask(mask.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != mask {
		t.Fatal("mask did not survive encode/decode")
	}
	if decoded.State(0) != Open || decoded.State(1) != Taken || decoded.State(2) != Closed {
		t.Fatal("unexpected slot states after decode")
	}
}

func TestParseDayMask_Invalid(t *testing.T) {
	tests := []string{
		"",
		strings.Repeat("1", 47),
		strings.Repeat("1", 49),
		strings.Repeat("1", 47) + "x",
	}
	for _, s := range tests {
		if _, err := ParseDayMask(s); err == nil {
			t.Errorf("ParseDayMask(%q): expected error", s)
		}
	}
}

func TestNewDayMask_AllClosed(t *testing.T) {
	mask := NewDayMask()
	if mask.String() != strings.Repeat("0", SlotsPerDay) {
		t.Fatalf("fresh mask should be all closed, got %q", mask.String())
	}
	if mask.OpenCount() != 0 {
		t.Fatalf("fresh mask open count = %d", mask.OpenCount())
	}
}
