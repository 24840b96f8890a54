package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CareRecipient is the person counsel is booked for, managed by a member.
type CareRecipient struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MemberID  uuid.UUID `gorm:"not null" json:"-"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	BirthDate *time.Time `json:"birth_date"`
	Gender    *string   `gorm:"size:10" json:"gender"`
	CareNotes *string   `gorm:"type:text" json:"care_notes"`

	Member Member `gorm:"foreignkey:MemberID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
