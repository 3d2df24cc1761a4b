package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/model"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/timeslot"
)

// CancelOccurrence voids one calendar date of an approved request without
// touching the parent or its other occurrences. A second cancellation of
// the same (request, date) pair is a state error; weekday membership for
// recurring requests is the caller's check.
func (s *gormStore) CancelOccurrence(ctx context.Context, p CancelParams) (model.Cancellation, error) {
	var cancellation model.Cancellation
	if _, err := timeslot.ParseDate(p.Date); err != nil {
		return cancellation, validationf("invalid date %q", p.Date)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.ClassRequest
		if err := tx.First(&req, p.RequestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if req.State != model.StateApproved {
			return statef("request %d is %s, only approved requests can be cancelled", req.ID, req.State)
		}
		if !p.AdminOverride && req.RequesterID != p.Actor {
			return ErrNotOwner
		}

		switch req.Kind {
		case model.KindSingle:
			if p.Date != req.Date {
				return validationf("date %s is not the request's date %s", p.Date, req.Date)
			}
		case model.KindRecurring:
			if p.Date < req.RangeStart || p.Date > req.RangeEnd {
				return validationf("date %s is outside the request's range %s..%s", p.Date, req.RangeStart, req.RangeEnd)
			}
		}

		var count int64
		if err := tx.Model(&model.Cancellation{}).
			Where("request_id = ? AND date = ?", p.RequestID, p.Date).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return statef("occurrence %s of request %d is already cancelled", p.Date, p.RequestID)
		}

		cancellation = model.Cancellation{
			RequestID: p.RequestID,
			Date:      p.Date,
			Reason:    p.Reason,
			Actor:     p.Actor,
		}
		return tx.Create(&cancellation).Error
	})
	return cancellation, err
}

// ListCancellations returns the ledger entries for a request, optionally
// narrowed to one date. The renderer uses it to suppress voided blocks.
func (s *gormStore) ListCancellations(ctx context.Context, requestID int64, date string) ([]model.Cancellation, error) {
	q := s.db.WithContext(ctx).Where("request_id = ?", requestID)
	if date != "" {
		q = q.Where("date = ?", date)
	}
	var cancellations []model.Cancellation
	err := q.Order("date").Find(&cancellations).Error
	return cancellations, err
}
