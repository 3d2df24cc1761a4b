package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/model"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/timeslot"
)

// CreateRequest validates a candidate class request, proves it free of
// conflicts against approved inventory, and persists it as pending.
func (s *gormStore) CreateRequest(ctx context.Context, req *model.ClassRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := labByID(tx, req.LabID); err != nil {
			return err
		}
		if err := checkRequestConflict(tx, req, 0); err != nil {
			return err
		}
		req.State = model.StatePending
		return tx.Create(req).Error
	})
}

// checkRequestConflict checks every occurrence of the candidate against
// approved requests for the same lab and reports the first conflicting
// date in ascending order. Pending and rejected requests never block.
func checkRequestConflict(tx *gorm.DB, req *model.ClassRequest, excludeID int64) error {
	dates := occurrenceDates(req)

	q := tx.Where("lab_id = ? AND state = ?", req.LabID, model.StateApproved).
		Where("start_time < ? AND end_time > ?", req.EndTime, req.StartTime)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var approved []model.ClassRequest
	if err := q.Find(&approved).Error; err != nil {
		return fmt.Errorf("failed to fetch approved requests: %w", err)
	}
	if len(approved) == 0 {
		return nil
	}

	for _, d := range dates {
		for _, a := range approved {
			if requestCoversDate(a, d) {
				return &ConflictError{Reason: fmt.Sprintf("lab %d already scheduled %s-%s", req.LabID, a.StartTime, a.EndTime), Date: d.Format(timeslot.DateLayout)}
			}
		}
	}
	return nil
}

// occurrenceDates expands the candidate into its ascending calendar dates.
func occurrenceDates(req *model.ClassRequest) []time.Time {
	if req.Kind == model.KindSingle {
		d, err := timeslot.ParseDate(req.Date)
		if err != nil {
			return nil
		}
		return []time.Time{d}
	}
	start, errS := timeslot.ParseDate(req.RangeStart)
	end, errE := timeslot.ParseDate(req.RangeEnd)
	days, errW := timeslot.ParseWeekdays(req.Weekdays)
	if errS != nil || errE != nil || errW != nil {
		return nil
	}
	return timeslot.Expand(start, end, days)
}

// requestCoversDate reports whether an approved request occupies the
// given calendar date.
func requestCoversDate(req model.ClassRequest, d time.Time) bool {
	ds := d.Format(timeslot.DateLayout)
	if req.Kind == model.KindSingle {
		return req.Date == ds
	}
	if ds < req.RangeStart || ds > req.RangeEnd {
		return false
	}
	days, err := timeslot.ParseWeekdays(req.Weekdays)
	if err != nil {
		return false
	}
	return days[d.Weekday()]
}

func (s *gormStore) GetRequest(ctx context.Context, id int64) (model.ClassRequest, error) {
	var req model.ClassRequest
	err := s.db.WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return req, ErrNotFound
	}
	return req, err
}

func (s *gormStore) ListRequests(ctx context.Context, f RequestFilter) ([]model.ClassRequest, error) {
	q := s.db.WithContext(ctx).Model(&model.ClassRequest{})
	if f.LabID != 0 {
		q = q.Where("lab_id = ?", f.LabID)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.RequesterID != "" {
		q = q.Where("requester_id = ?", f.RequesterID)
	}
	var requests []model.ClassRequest
	err := q.Order("id").Find(&requests).Error
	return requests, err
}

// UpdateRequest replaces the schedule fields of a still-pending request,
// re-running the conflict check with the request's own id excluded.
func (s *gormStore) UpdateRequest(ctx context.Context, id int64, upd *model.ClassRequest) (model.ClassRequest, error) {
	var req model.ClassRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if req.State != model.StatePending {
			return statef("request %d is %s and immutable", id, req.State)
		}

		req.Title = upd.Title
		req.Kind = upd.Kind
		req.StartTime = upd.StartTime
		req.EndTime = upd.EndTime
		req.Date = upd.Date
		req.RangeStart = upd.RangeStart
		req.RangeEnd = upd.RangeEnd
		req.Weekdays = upd.Weekdays
		if err := validateRequest(&req); err != nil {
			return err
		}
		if err := checkRequestConflict(tx, &req, req.ID); err != nil {
			return err
		}
		return tx.Save(&req).Error
	})
	return req, err
}

// DecideRequest transitions a pending request to approved or rejected,
// exactly once.
func (s *gormStore) DecideRequest(ctx context.Context, id int64, approve bool) (model.ClassRequest, error) {
	var req model.ClassRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if req.State != model.StatePending {
			return statef("request %d has already been %s", id, req.State)
		}
		// Approved inventory may have grown since the request was
		// submitted; prove it conflict-free again before approval.
		if approve {
			if err := checkRequestConflict(tx, &req, req.ID); err != nil {
				return err
			}
			req.State = model.StateApproved
		} else {
			req.State = model.StateRejected
		}
		return tx.Model(&req).Update("state", req.State).Error
	})
	return req, err
}

// DeleteRequest removes the request and its cancellation ledger entries.
func (s *gormStore) DeleteRequest(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.ClassRequest{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("request_id = ?", id).Delete(&model.Cancellation{}).Error
	})
}

// Occurrences expands a request into its dated occurrences, flagging the
// ones a cancellation voids. This is the rendering collaborator's feed.
func (s *gormStore) Occurrences(ctx context.Context, id int64) ([]Occurrence, error) {
	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	cancellations, err := s.ListCancellations(ctx, id, "")
	if err != nil {
		return nil, err
	}
	cancelled := make(map[string]string, len(cancellations))
	for _, c := range cancellations {
		cancelled[c.Date] = c.Reason
	}

	dates := occurrenceDates(&req)
	occurrences := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		ds := d.Format(timeslot.DateLayout)
		reason, isCancelled := cancelled[ds]
		occurrences = append(occurrences, Occurrence{Date: ds, Cancelled: isCancelled, Reason: reason})
	}
	return occurrences, nil
}

// validateRequest rejects malformed candidates before any store access.
func validateRequest(req *model.ClassRequest) error {
	if req.Title == "" {
		return validationf("title is required")
	}
	start, err := timeslot.ParseClock(req.StartTime)
	if err != nil {
		return validationf("invalid start time %q", req.StartTime)
	}
	end, err := timeslot.ParseClock(req.EndTime)
	if err != nil {
		return validationf("invalid end time %q", req.EndTime)
	}
	if end <= start {
		return validationf("end time %s must be after start time %s", req.EndTime, req.StartTime)
	}
	req.StartTime, req.EndTime = timeslot.FormatClock(start), timeslot.FormatClock(end)

	switch req.Kind {
	case model.KindSingle:
		if _, err := timeslot.ParseDate(req.Date); err != nil {
			return validationf("invalid date %q", req.Date)
		}
		req.RangeStart, req.RangeEnd, req.Weekdays = "", "", ""
	case model.KindRecurring:
		rangeStart, err := timeslot.ParseDate(req.RangeStart)
		if err != nil {
			return validationf("invalid range start %q", req.RangeStart)
		}
		rangeEnd, err := timeslot.ParseDate(req.RangeEnd)
		if err != nil {
			return validationf("invalid range end %q", req.RangeEnd)
		}
		if rangeEnd.Before(rangeStart) {
			return validationf("range end %s precedes range start %s", req.RangeEnd, req.RangeStart)
		}
		days, err := timeslot.ParseWeekdays(req.Weekdays)
		if err != nil {
			return validationf("invalid weekdays %q", req.Weekdays)
		}
		if len(days) == 0 {
			return validationf("recurring request needs at least one weekday")
		}
		if len(timeslot.Expand(rangeStart, rangeEnd, days)) == 0 {
			return validationf("request produces no occurrences in %s..%s", req.RangeStart, req.RangeEnd)
		}
		req.Weekdays = timeslot.FormatWeekdays(days)
		req.Date = ""
	default:
		return validationf("unknown request kind %q", req.Kind)
	}
	return nil
}
