package models

import (
	"time"

	"github.com/google/uuid"
)

// CounselDay is the materialized per-date slot state for one counsel
// service: 48 slot states stored as a fixed 48-character string
// ('0' closed, '1' open, '2' taken). Exactly one row exists per
// (counsel, date); it is created lazily on first access and never deleted.
//
// Replacing a counsel's weekly hours does NOT rewrite existing rows:
// availability already published for a specific date stays as materialized.
type CounselDay struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CounselID   uuid.UUID `gorm:"not null;uniqueIndex:idx_counsel_service_date" json:"counsel_id"`
	ServiceDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_counsel_service_date" json:"service_date"`
	Slots       string    `gorm:"type:varchar(48);not null" json:"slots"`

	Counsel Counsel `gorm:"foreignkey:CounselID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
