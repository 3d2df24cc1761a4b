package store

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/model"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/timeslot"
)

func (s *gormStore) ListLabs(ctx context.Context) ([]model.Lab, error) {
	var labs []model.Lab
	err := s.db.WithContext(ctx).Order("id").Find(&labs).Error
	return labs, err
}

func (s *gormStore) GetLab(ctx context.Context, id int64) (model.Lab, error) {
	var lab model.Lab
	err := s.db.WithContext(ctx).First(&lab, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return lab, ErrNotFound
	}
	return lab, err
}

// SetLabFreeUse persists the free/unrestricted-use flag and returns the
// updated row. Broadcasting the toggle is the push collaborator's job.
func (s *gormStore) SetLabFreeUse(ctx context.Context, id int64, freeUse bool) (model.Lab, error) {
	var lab model.Lab
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lab, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		lab.FreeUse = freeUse
		return tx.Model(&lab).Update("free_use", freeUse).Error
	})
	return lab, err
}

// Schedule produces the occupied blocks of a lab between two dates:
// every non-cancelled occurrence of every approved request. This is the
// source of truth the rendering collaborator paints.
func (s *gormStore) Schedule(ctx context.Context, labID int64, from, to string) ([]ScheduleBlock, error) {
	fromDate, err := timeslot.ParseDate(from)
	if err != nil {
		return nil, validationf("invalid from date %q", from)
	}
	toDate, err := timeslot.ParseDate(to)
	if err != nil {
		return nil, validationf("invalid to date %q", to)
	}
	if toDate.Before(fromDate) {
		return nil, validationf("to date %s precedes from date %s", to, from)
	}

	var approved []model.ClassRequest
	if err := s.db.WithContext(ctx).
		Where("lab_id = ? AND state = ?", labID, model.StateApproved).
		Where("(kind = ? AND date BETWEEN ? AND ?) OR (kind = ? AND range_start <= ? AND range_end >= ?)",
			model.KindSingle, from, to, model.KindRecurring, to, from).
		Find(&approved).Error; err != nil {
		return nil, err
	}

	blocks := make([]ScheduleBlock, 0)
	for _, req := range approved {
		cancellations, err := s.ListCancellations(ctx, req.ID, "")
		if err != nil {
			return nil, err
		}
		cancelled := make(map[string]bool, len(cancellations))
		for _, c := range cancellations {
			cancelled[c.Date] = true
		}

		for _, d := range occurrenceDates(&req) {
			ds := d.Format(timeslot.DateLayout)
			if ds < from || ds > to || cancelled[ds] {
				continue
			}
			blocks = append(blocks, ScheduleBlock{
				RequestID: req.ID,
				Title:     req.Title,
				Date:      ds,
				StartTime: req.StartTime,
				EndTime:   req.EndTime,
			})
		}
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Date != blocks[j].Date {
			return blocks[i].Date < blocks[j].Date
		}
		if blocks[i].StartTime != blocks[j].StartTime {
			return blocks[i].StartTime < blocks[j].StartTime
		}
		return blocks[i].RequestID < blocks[j].RequestID
	})
	return blocks, nil
}
