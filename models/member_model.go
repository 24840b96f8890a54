package models

import (
	"time"

	"github.com/google/uuid"
)

type Member struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Phone    *string   `gorm:"size:30" json:"phone"`

	CareRecipients []CareRecipient `gorm:"foreignkey:MemberID" json:"care_recipients,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
