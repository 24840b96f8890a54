package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation claims one booking unit on a CounselDay: the slot at
// SlotIndex, plus its pair for FULL-unit counsels. At most one
// non-canceled reservation may reference a slot at a time.
type Reservation struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CounselDayID    uuid.UUID `gorm:"not null;index" json:"counsel_day_id"`
	MemberID        uuid.UUID `gorm:"not null;index" json:"member_id"`
	CareRecipientID uuid.UUID `gorm:"not null" json:"care_recipient_id"`
	SlotIndex       int       `gorm:"not null" json:"slot_index"`
	Status          string    `gorm:"size:20;not null;default:'pending'" json:"status"`

	CounselDay    CounselDay    `gorm:"foreignkey:CounselDayID" json:"counsel_day,omitempty"`
	Member        Member        `gorm:"foreignkey:MemberID" json:"member,omitempty"`
	CareRecipient CareRecipient `gorm:"foreignkey:CareRecipientID" json:"care_recipient,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
