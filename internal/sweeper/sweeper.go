package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/config"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/store"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/timeslot"
)

// Service runs the end-of-day reset: once past the configured local
// time, every active non-maintenance reservation for the day is released.
type Service struct {
	cfg   *config.Config
	store store.Store
	loc   *time.Location
}

// NewService creates a new sweeper service.
func NewService(cfg *config.Config, s store.Store) *Service {
	loc := time.Local
	if cfg.Sweeper.Timezone != "" {
		if parsed, err := time.LoadLocation(cfg.Sweeper.Timezone); err != nil {
			log.Printf("Warning: invalid sweeper timezone %q: %v. Using local time.", cfg.Sweeper.Timezone, err)
		} else {
			loc = parsed
		}
	}
	return &Service{cfg: cfg, store: s, loc: loc}
}

// Run starts the sweep loop. It ticks at the configured interval and
// fires at most once per calendar day.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sweeper.Enabled {
		log.Println("Sweeper is disabled. Not starting.")
		return
	}
	runAt, err := timeslot.ParseClock(s.cfg.Sweeper.RunAt)
	if err != nil {
		log.Printf("Sweeper run_at %q is invalid: %v. Not starting.", s.cfg.Sweeper.RunAt, err)
		return
	}
	log.Printf("Starting sweeper service, end-of-day reset at %s...", s.cfg.Sweeper.RunAt)

	interval := time.Duration(s.cfg.Sweeper.IntervalSeconds) * time.Second
	timer := time.NewTimer(interval)
	defer timer.Stop()

	var lastSweptDate string
	for {
		select {
		case <-ctx.Done():
			log.Println("Sweeper service shutting down.")
			return
		case <-timer.C:
			now := time.Now().In(s.loc)
			date := now.Format(timeslot.DateLayout)
			if date != lastSweptDate && timeslot.MinuteOfDay(now) >= runAt {
				released, err := s.store.FinishDay(ctx, date)
				if err != nil {
					log.Printf("End-of-day sweep failed for %s: %v", date, err)
				} else {
					log.Printf("End-of-day sweep released %d reservations for %s", released, date)
					lastSweptDate = date
				}
			}
			timer.Reset(interval)
		}
	}
}
