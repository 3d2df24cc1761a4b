package model

import "time"

// ClassRequest kinds.
const (
	KindSingle    = "single"
	KindRecurring = "recurring"
)

// ClassRequest states. Only approved requests occupy schedule inventory.
const (
	StatePending  = "pending"
	StateApproved = "approved"
	StateRejected = "rejected"
)

// ClassRequest is a professor-submitted request for a lab time block,
// either on a single date or recurring weekly over a bounded range.
// A recurring request is one row; its dated occurrences are derived,
// never materialized.
type ClassRequest struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	RequesterID string `gorm:"size:64;not null;index" json:"requesterId"`
	LabID       int64  `gorm:"not null;index" json:"labId"`
	Title       string `gorm:"size:256;not null" json:"title"`
	Kind        string `gorm:"size:16;not null" json:"kind"`
	StartTime   string `gorm:"size:5;not null" json:"startTime"`
	EndTime     string `gorm:"size:5;not null" json:"endTime"`
	State       string `gorm:"size:16;not null;default:pending" json:"state"`

	// Single kind.
	Date string `gorm:"size:10" json:"date,omitempty"`

	// Recurring kind. Weekdays is a comma-separated day list ("1,3,5"),
	// Monday=1 through Saturday=6, Sunday=0 or 7.
	RangeStart string `gorm:"size:10" json:"rangeStart,omitempty"`
	RangeEnd   string `gorm:"size:10" json:"rangeEnd,omitempty"`
	Weekdays   string `gorm:"size:32" json:"weekdays,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cancellation voids one occurrence of an approved request. The parent
// request and its other occurrences are untouched. At most one row may
// exist per (request, date).
type Cancellation struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	RequestID int64     `gorm:"not null;uniqueIndex:idx_cancellations_request_date,priority:1" json:"requestId"`
	Date      string    `gorm:"size:10;not null;uniqueIndex:idx_cancellations_request_date,priority:2" json:"date"`
	Reason    string    `gorm:"size:512" json:"reason"`
	Actor     string    `gorm:"size:64;not null" json:"actor"`
	CreatedAt time.Time `json:"createdAt"`
}
