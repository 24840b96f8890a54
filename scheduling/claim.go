package scheduling

import "github.com/caringlab/care_connect/timeslot"

// Claim transitions the slot at index (and its pair for FULL units) from
// Open to Taken. The mask is only mutated when every targeted slot is Open;
// callers must hold the day's row lock for the duration of check and write.
func Claim(mask *timeslot.DayMask, index int, unit timeslot.Unit) error {
	if !timeslot.InRange(index) {
		return ErrInvalidSlotIndex
	}
	if !timeslot.Aligned(index, unit) {
		return ErrUnalignedSlot
	}
	step := timeslot.Step(unit)
	for i := index; i < index+step; i++ {
		if mask[i] != timeslot.Open {
			return ErrSlotUnavailable
		}
	}
	for i := index; i < index+step; i++ {
		mask[i] = timeslot.Taken
	}
	return nil
}

// Release flips a previously claimed slot (and its pair for FULL units) back
// to Open. Slots that are not Taken are left untouched; a canceled
// reservation must never reopen a slot the template closed.
func Release(mask *timeslot.DayMask, index int, unit timeslot.Unit) error {
	if !timeslot.InRange(index) {
		return ErrInvalidSlotIndex
	}
	step := timeslot.Step(unit)
	for i := index; i < index+step && i < timeslot.SlotsPerDay; i++ {
		if mask[i] == timeslot.Taken {
			mask[i] = timeslot.Open
		}
	}
	return nil
}
