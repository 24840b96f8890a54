package models

import (
	"time"

	"github.com/caringlab/care_connect/timeslot"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Counsel is a bookable counsel service offered by an institution. The
// reservable window is expressed in whole days from today, inclusive on
// both ends, with MaxLeadDays >= MinLeadDays.
type Counsel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InstitutionID uuid.UUID `gorm:"not null;index" json:"institution_id"`
	Title         string    `gorm:"size:100;not null" json:"title"`
	Description   *string   `gorm:"size:500" json:"description"`
	MinLeadDays   int       `gorm:"not null;default:0" json:"min_lead_days"`
	MaxLeadDays   int       `gorm:"not null;default:30" json:"max_lead_days"`
	Unit          timeslot.Unit `gorm:"size:10;not null" json:"unit"`
	Active        bool      `gorm:"not null;default:true" json:"active"`

	Institution Institution  `gorm:"foreignkey:InstitutionID" json:"-"`
	Hours       []CounselHour `gorm:"foreignkey:CounselID;constraint:OnDelete:CASCADE" json:"hours,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CounselHour is one recurring weekly open-hours rule. EndTime is the last
// bookable start of the rule, aligned to the counsel's unit.
type CounselHour struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CounselID uuid.UUID `gorm:"not null;index" json:"-"`
	DayOfWeek int       `gorm:"not null" json:"day_of_week"`
	StartTime string    `gorm:"size:5;not null" json:"start_time"`
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`

	CreatedAt time.Time `json:"-"`
}
