package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/model"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/timeslot"
)

// AdmitReservation validates a proposed booking and commits it, applying
// the precedence rules between individual, class-block, and maintenance
// reservations. The overlap check and the insert run in one transaction.
func (s *gormStore) AdmitReservation(ctx context.Context, res *model.Reservation) error {
	if res.Date == "" {
		res.Date = today()
	}
	if err := validateWindow(res.Date, res.StartTime, res.EndTime); err != nil {
		return err
	}
	res.StartTime, res.EndTime = normalizeClock(res.StartTime), normalizeClock(res.EndTime)
	if res.Date < today() {
		return validationf("date %s is in the past", res.Date)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lab, err := labByID(tx, res.LabID)
		if err != nil {
			return err
		}
		if !lab.OwnsPC(res.PC) {
			return validationf("PC %d is outside lab %d range %d-%d", res.PC, lab.ID, lab.FirstPC, lab.LastPC)
		}

		// Maintenance blocks coexist with anything.
		if res.IsMaintenance() {
			res.Status = model.ReservationActive
			return tx.Create(res).Error
		}

		if err := checkReservationCollisions(tx, res, lab, 0); err != nil {
			return err
		}

		res.Status = model.ReservationActive
		return tx.Create(res).Error
	})
}

// checkReservationCollisions applies steps 3-5 of the admission rules:
// PC-level precedence first, then the same-user same-lab rule. excludeID
// skips the reservation's own prior row on updates.
func checkReservationCollisions(tx *gorm.DB, res *model.Reservation, lab model.Lab, excludeID int64) error {
	pcCollisions, err := overlappingReservations(tx, res, excludeID, "pc = ?", res.PC)
	if err != nil {
		return err
	}
	for _, c := range pcCollisions {
		if c.IsMaintenance() {
			continue
		}
		// Class blocks stack with class blocks only; any pairing that
		// involves an individual reservation rejects, in either direction.
		if res.IsClassBlock() && c.IsClassBlock() {
			continue
		}
		return &ConflictError{Reason: fmt.Sprintf("PC %d already booked %s-%s", res.PC, c.StartTime, c.EndTime), Date: res.Date}
	}

	// One user may not hold two overlapping individual reservations in a
	// lab, even on different machines. Class-block proposals skip this:
	// an administrator lays blocks across many PCs at once.
	if !res.IsClassBlock() {
		userCollisions, err := overlappingReservations(tx, res, excludeID,
			"user_id = ? AND pc BETWEEN ? AND ?", res.UserID, lab.FirstPC, lab.LastPC)
		if err != nil {
			return err
		}
		for _, c := range userCollisions {
			if c.IsMaintenance() || c.IsClassBlock() {
				continue
			}
			return &ConflictError{Reason: fmt.Sprintf("user %s already holds an overlapping reservation on PC %d", res.UserID, c.PC), Date: res.Date}
		}
	}
	return nil
}

// overlappingReservations fetches active reservations on res's date whose
// half-open window collides with res's. Zero-padded "HH:MM" strings
// compare correctly in SQL.
func overlappingReservations(tx *gorm.DB, res *model.Reservation, excludeID int64, cond string, args ...any) ([]model.Reservation, error) {
	q := tx.Where("date = ? AND status = ?", res.Date, model.ReservationActive).
		Where("start_time < ? AND end_time > ?", res.EndTime, res.StartTime).
		Where(cond, args...)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var collisions []model.Reservation
	if err := q.Find(&collisions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch colliding reservations: %w", err)
	}
	return collisions, nil
}

func (s *gormStore) GetReservation(ctx context.Context, id int64) (model.Reservation, error) {
	var res model.Reservation
	err := s.db.WithContext(ctx).First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return res, ErrNotFound
	}
	return res, err
}

func (s *gormStore) ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).Model(&model.Reservation{})
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}
	if f.LabID != 0 {
		q = q.Where("lab_id = ?", f.LabID)
	}
	if f.PC != 0 {
		q = q.Where("pc = ?", f.PC)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var reservations []model.Reservation
	err := q.Order("date, start_time, pc").Find(&reservations).Error
	return reservations, err
}

// UpdateReservation applies a time/PC change after re-running the
// collision check, excluding the reservation's own prior row.
func (s *gormStore) UpdateReservation(ctx context.Context, id int64, upd ReservationUpdate) (model.Reservation, error) {
	var res model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if res.Status != model.ReservationActive {
			return statef("reservation %d is already finished", id)
		}

		if upd.PC != nil {
			res.PC = *upd.PC
		}
		if upd.Date != nil {
			res.Date = *upd.Date
		}
		if upd.StartTime != nil {
			res.StartTime = *upd.StartTime
		}
		if upd.EndTime != nil {
			res.EndTime = *upd.EndTime
		}
		if err := validateWindow(res.Date, res.StartTime, res.EndTime); err != nil {
			return err
		}
		res.StartTime, res.EndTime = normalizeClock(res.StartTime), normalizeClock(res.EndTime)

		lab, err := labByID(tx, res.LabID)
		if err != nil {
			return err
		}
		if !lab.OwnsPC(res.PC) {
			return validationf("PC %d is outside lab %d range %d-%d", res.PC, lab.ID, lab.FirstPC, lab.LastPC)
		}
		if !res.IsMaintenance() {
			if err := checkReservationCollisions(tx, &res, lab, res.ID); err != nil {
				return err
			}
		}
		return tx.Save(&res).Error
	})
	return res, err
}

// FinishReservation flips an active reservation to finished.
func (s *gormStore) FinishReservation(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res model.Reservation
		if err := tx.First(&res, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if res.Status != model.ReservationActive {
			return statef("reservation %d is already finished", id)
		}
		return tx.Model(&res).Update("status", model.ReservationFinished).Error
	})
}

func (s *gormStore) DeleteReservation(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&model.Reservation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FinishDay releases every active non-maintenance reservation on the
// given date. Used for the end-of-day reset.
func (s *gormStore) FinishDay(ctx context.Context, date string) (int64, error) {
	if date == "" {
		date = today()
	}
	if _, err := timeslot.ParseDate(date); err != nil {
		return 0, validationf("invalid date %q", date)
	}
	result := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("date = ? AND status = ? AND category <> ?", date, model.ReservationActive, model.CategoryMaintenance).
		Update("status", model.ReservationFinished)
	return result.RowsAffected, result.Error
}

// validateWindow rejects malformed dates and zero-or-negative windows
// before any store access.
func validateWindow(date, startTime, endTime string) error {
	if _, err := timeslot.ParseDate(date); err != nil {
		return validationf("invalid date %q", date)
	}
	start, err := timeslot.ParseClock(startTime)
	if err != nil {
		return validationf("invalid start time %q", startTime)
	}
	end, err := timeslot.ParseClock(endTime)
	if err != nil {
		return validationf("invalid end time %q", endTime)
	}
	if end <= start {
		return validationf("end time %s must be after start time %s", endTime, startTime)
	}
	return nil
}

// normalizeClock re-renders a validated clock string zero-padded so that
// lexicographic SQL comparisons stay correct.
func normalizeClock(s string) string {
	minutes, err := timeslot.ParseClock(s)
	if err != nil {
		return s
	}
	return timeslot.FormatClock(minutes)
}
