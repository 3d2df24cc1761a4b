package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/config"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/model"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/timeslot"
)

// ReservationFilter narrows ListReservations.
type ReservationFilter struct {
	Date   string
	LabID  int64
	PC     int
	UserID string
	Status string
}

// ReservationUpdate carries the mutable fields of a reservation; nil
// fields are left unchanged. Time/PC changes re-run the overlap check.
type ReservationUpdate struct {
	PC        *int
	Date      *string
	StartTime *string
	EndTime   *string
}

// RequestFilter narrows ListRequests.
type RequestFilter struct {
	LabID       int64
	State       string
	RequesterID string
}

// Occurrence is one derived calendar date of an approved request,
// flagged when a cancellation voids it.
type Occurrence struct {
	Date      string `json:"date"`
	Cancelled bool   `json:"cancelled"`
	Reason    string `json:"reason,omitempty"`
}

// CancelParams identifies one occurrence to void.
type CancelParams struct {
	RequestID     int64
	Date          string
	Reason        string
	Actor         string
	AdminOverride bool
}

// LoginEvent is a workstation login reported by a lab device.
type LoginEvent struct {
	UserID string
	LabID  int64
	Device int
	At     time.Time
}

// ScheduleBlock is one occupied block the rendering collaborator paints.
type ScheduleBlock struct {
	RequestID int64  `json:"requestId"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	AdmitReservation(ctx context.Context, res *model.Reservation) error
	GetReservation(ctx context.Context, id int64) (model.Reservation, error)
	ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error)
	UpdateReservation(ctx context.Context, id int64, upd ReservationUpdate) (model.Reservation, error)
	FinishReservation(ctx context.Context, id int64) error
	DeleteReservation(ctx context.Context, id int64) error
	FinishDay(ctx context.Context, date string) (int64, error)

	CreateRequest(ctx context.Context, req *model.ClassRequest) error
	GetRequest(ctx context.Context, id int64) (model.ClassRequest, error)
	ListRequests(ctx context.Context, f RequestFilter) ([]model.ClassRequest, error)
	UpdateRequest(ctx context.Context, id int64, upd *model.ClassRequest) (model.ClassRequest, error)
	DecideRequest(ctx context.Context, id int64, approve bool) (model.ClassRequest, error)
	DeleteRequest(ctx context.Context, id int64) error
	Occurrences(ctx context.Context, id int64) ([]Occurrence, error)

	CancelOccurrence(ctx context.Context, p CancelParams) (model.Cancellation, error)
	ListCancellations(ctx context.Context, requestID int64, date string) ([]model.Cancellation, error)

	OpenSession(ctx context.Context, ev LoginEvent) (model.Session, error)
	EndSession(ctx context.Context, id int64, at *time.Time) (model.Session, error)

	ListLabs(ctx context.Context) ([]model.Lab, error)
	GetLab(ctx context.Context, id int64) (model.Lab, error)
	SetLabFreeUse(ctx context.Context, id int64, freeUse bool) (model.Lab, error)

	Schedule(ctx context.Context, labID int64, from, to string) ([]ScheduleBlock, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db        *gorm.DB
	tolBefore int // minutes of tolerance before a reservation's start
	tolAfter  int // minutes of tolerance after a reservation's end
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, matcher config.MatcherConfig) Store {
	return &gormStore{
		db:        db,
		tolBefore: matcher.ToleranceBeforeMinutes,
		tolAfter:  matcher.ToleranceAfterMinutes,
	}
}

// DB exposes the underlying connection for handlers and tests.
func (s *gormStore) DB() *gorm.DB { return s.db }

func today() string {
	return time.Now().Format(timeslot.DateLayout)
}

func labByID(tx *gorm.DB, id int64) (model.Lab, error) {
	var lab model.Lab
	if err := tx.First(&lab, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lab, validationf("unknown lab %d", id)
		}
		return lab, err
	}
	return lab, nil
}
