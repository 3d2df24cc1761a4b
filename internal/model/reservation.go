package model

import "time"

// Reservation statuses.
const (
	ReservationActive   = "active"
	ReservationFinished = "finished"
)

// Reservation categories. Anything else is an individual booking carrying
// the requester's career tag.
const (
	CategoryClassBlock  = "class-block"
	CategoryMaintenance = "maintenance"
)

// Reservation represents one PC/time-slot booking.
type Reservation struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"size:64;not null;index:idx_reservations_user_date,priority:1" json:"userId"`
	Category  string `gorm:"size:32;not null" json:"category"`
	LabID     int64  `gorm:"not null" json:"labId"`
	PC        int    `gorm:"not null;index:idx_reservations_pc_date,priority:1" json:"pc"`
	Date      string `gorm:"size:10;not null;index:idx_reservations_pc_date,priority:2;index:idx_reservations_user_date,priority:2" json:"date"`
	StartTime string `gorm:"size:5;not null" json:"startTime"`
	EndTime   string `gorm:"size:5;not null" json:"endTime"`
	Status    string `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsClassBlock reports whether the reservation is an administrative class block.
func (r Reservation) IsClassBlock() bool { return r.Category == CategoryClassBlock }

// IsMaintenance reports whether the reservation is a maintenance block.
func (r Reservation) IsMaintenance() bool { return r.Category == CategoryMaintenance }
