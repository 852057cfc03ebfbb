package reminder

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler fires Engine.Evaluate at fixed wall-clock times each day.
// Ticks are non-reentrant: if an evaluation is still running when the
// next time arrives, that tick is skipped.
type Scheduler struct {
	engine  *Engine
	times   []time.Duration // offsets from local midnight
	log     *logrus.Entry
	running atomic.Bool
	now     func() time.Time
}

// ClockOffsets converts "HH:MM" strings into offsets from midnight.
// Invalid entries were already rejected by config loading.
func ClockOffsets(clocks []string) []time.Duration {
	offsets := make([]time.Duration, 0, len(clocks))
	for _, c := range clocks {
		t, err := time.Parse("15:04", c)
		if err != nil {
			continue
		}
		offsets = append(offsets, time.Duration(t.Hour())*time.Hour+time.Duration(t.Minute())*time.Minute)
	}
	return offsets
}

// NewScheduler builds a scheduler for the given daily fire times.
func NewScheduler(engine *Engine, times []time.Duration, log *logrus.Entry) *Scheduler {
	return &Scheduler{
		engine: engine,
		times:  times,
		log:    log,
		now:    time.Now,
	}
}

// Run blocks until the context is cancelled, evaluating at every
// configured time of day.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := s.nextFire(s.now())
		s.log.WithField("at", next.Format(time.RFC3339)).Debug("next reminder pass scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		s.tick(ctx)
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("previous reminder pass still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	start := s.now()
	if err := s.engine.Evaluate(ctx, start); err != nil {
		s.log.WithError(err).Error("reminder pass failed")
		return
	}
	s.log.WithField("took", s.now().Sub(start).String()).Info("reminder pass finished")
}

// nextFire returns the earliest configured fire time strictly after now,
// rolling over to the first time of the following day.
func (s *Scheduler) nextFire(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var next time.Time
	for _, off := range s.times {
		candidate := midnight.Add(off)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	if next.IsZero() {
		// No times configured, default to a day from now.
		next = now.AddDate(0, 0, 1)
	}
	return next
}
