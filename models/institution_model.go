package models

import (
	"time"

	"github.com/google/uuid"
)

type Institution struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Phone       *string   `gorm:"size:30" json:"phone"`

	Counsels []Counsel `gorm:"foreignkey:InstitutionID" json:"counsels,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InstitutionAdmin struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InstitutionID uuid.UUID `gorm:"not null" json:"institution_id"`
	FullName      string    `gorm:"size:255;not null" json:"full_name"`
	Email         string    `gorm:"size:255;not null;unique" json:"email"`
	Password      string    `gorm:"not null" json:"-"`

	Institution Institution `gorm:"foreignkey:InstitutionID" json:"institution,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
