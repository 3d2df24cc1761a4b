package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/model"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/timeslot"
)

// OpenSession reconciles a workstation login against the reservation that
// justified it. Any stale active session on the same device is force-ended
// first; the match is decided once, here, and never re-evaluated.
func (s *gormStore) OpenSession(ctx context.Context, ev LoginEvent) (model.Session, error) {
	var session model.Session
	if ev.UserID == "" {
		return session, validationf("user id is required")
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lab, err := labByID(tx, ev.LabID)
		if err != nil {
			return err
		}
		if !lab.OwnsPC(ev.Device) {
			return validationf("device %d is outside lab %d range %d-%d", ev.Device, lab.ID, lab.FirstPC, lab.LastPC)
		}

		// A device hosts one active session at a time; force-end leftovers.
		if err := tx.Model(&model.Session{}).
			Where("lab_id = ? AND device = ? AND status = ?", ev.LabID, ev.Device, model.SessionActive).
			Updates(map[string]any{"status": model.SessionEnded, "ended_at": ev.At}).Error; err != nil {
			return err
		}

		date := ev.At.Format(timeslot.DateLayout)
		var candidates []model.Reservation
		if err := tx.Where("pc = ? AND user_id = ? AND date = ? AND status = ?",
			ev.Device, ev.UserID, date, model.ReservationActive).
			Order("start_time").Find(&candidates).Error; err != nil {
			return err
		}

		matched := s.matchReservation(candidates, timeslot.MinuteOfDay(ev.At))

		session = model.Session{
			UserID:    ev.UserID,
			LabID:     ev.LabID,
			Device:    ev.Device,
			StartedAt: ev.At,
			Status:    model.SessionActive,
		}
		if matched != nil {
			id := matched.ID
			session.ReservationID = &id
		}
		return tx.Create(&session).Error
	})
	return session, err
}

// matchReservation picks, among reservations whose window widened by the
// configured tolerances contains the login minute, the one whose nominal
// start is closest to the login.
func (s *gormStore) matchReservation(candidates []model.Reservation, loginMinute int) *model.Reservation {
	var best *model.Reservation
	bestDist := 0
	for i := range candidates {
		c := candidates[i]
		start, errS := timeslot.ParseClock(c.StartTime)
		end, errE := timeslot.ParseClock(c.EndTime)
		if errS != nil || errE != nil {
			continue
		}
		if loginMinute < start-s.tolBefore || loginMinute > end+s.tolAfter {
			continue
		}
		dist := loginMinute - start
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best = &candidates[i]
			bestDist = dist
		}
	}
	return best
}

// EndSession marks the session ended at the given or current instant. It
// does not re-validate against the matched reservation.
func (s *gormStore) EndSession(ctx context.Context, id int64, at *time.Time) (model.Session, error) {
	var session model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if session.Status != model.SessionActive {
			return statef("session %d has already ended", id)
		}
		endedAt := time.Now()
		if at != nil {
			endedAt = *at
		}
		session.EndedAt = &endedAt
		session.Status = model.SessionEnded
		return tx.Save(&session).Error
	})
	return session, err
}
