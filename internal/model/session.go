package model

import "time"

// Session statuses.
const (
	SessionActive = "active"
	SessionEnded  = "ended"
)

// Session records one physical workstation login. The match against a
// reservation is decided once, when the session is created, and never
// re-evaluated.
type Session struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        string     `gorm:"size:64;not null;index" json:"userId"`
	LabID         int64      `gorm:"not null;index:idx_sessions_lab_device,priority:1" json:"labId"`
	Device        int        `gorm:"not null;index:idx_sessions_lab_device,priority:2" json:"device"`
	StartedAt     time.Time  `gorm:"not null" json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
	ReservationID *int64     `json:"reservationId,omitempty"`
	Status        string     `gorm:"size:16;not null;default:active" json:"status"`
}
