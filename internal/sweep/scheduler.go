// Package sweep runs the periodic maintenance jobs: completing past
// bookings, sending reminders, expiring waiting-list notifications,
// deactivating expired packages and purging stale waiting entries.
package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/logger"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/metrics"
)

type BookingSweeper interface {
	CompletePastBookings(ctx context.Context) (int64, error)
	SendUpcomingReminders(ctx context.Context) (int, error)
}

type PackageSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

type WaitlistSweeper interface {
	ExpireNotifications(ctx context.Context) (int, error)
	PurgeOld(ctx context.Context) (int64, error)
}

// Scheduler drives each job on its own ticker. A job that is still running
// when its ticker fires again is skipped for that tick, not queued.
type Scheduler struct {
	bookings BookingSweeper
	packages PackageSweeper
	waitlist WaitlistSweeper

	hourly     time.Duration
	notifyTick time.Duration
	daily      time.Duration

	running sync.Map
	wg      sync.WaitGroup
}

func NewScheduler(bookings BookingSweeper, packages PackageSweeper, waitlist WaitlistSweeper) *Scheduler {
	return &Scheduler{
		bookings:   bookings,
		packages:   packages,
		waitlist:   waitlist,
		hourly:     time.Hour,
		notifyTick: 5 * time.Minute,
		daily:      24 * time.Hour,
	}
}

// Start launches the tickers and blocks until ctx is cancelled and every
// in-flight job has finished.
func (s *Scheduler) Start(ctx context.Context) {
	logger.Info("sweep scheduler started",
		"hourly", s.hourly.String(),
		"notifications", s.notifyTick.String(),
		"daily", s.daily.String(),
	)

	s.wg.Add(3)
	go s.loop(ctx, s.hourly, s.runHourly)
	go s.loop(ctx, s.notifyTick, s.runNotificationExpiry)
	go s.loop(ctx, s.daily, s.runDaily)

	s.wg.Wait()
	logger.Info("sweep scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, run func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}

func (s *Scheduler) runHourly(ctx context.Context) {
	s.runJob(ctx, "complete_bookings", func(ctx context.Context) (int, error) {
		n, err := s.bookings.CompletePastBookings(ctx)
		return int(n), err
	})
	s.runJob(ctx, "booking_reminders", s.bookings.SendUpcomingReminders)
}

func (s *Scheduler) runNotificationExpiry(ctx context.Context) {
	s.runJob(ctx, "expire_notifications", s.waitlist.ExpireNotifications)
}

func (s *Scheduler) runDaily(ctx context.Context) {
	s.runJob(ctx, "expire_packages", func(ctx context.Context) (int, error) {
		n, err := s.packages.SweepExpired(ctx)
		return int(n), err
	})
	s.runJob(ctx, "purge_waitlist", func(ctx context.Context) (int, error) {
		n, err := s.waitlist.PurgeOld(ctx)
		return int(n), err
	})
}

func (s *Scheduler) runJob(ctx context.Context, name string, job func(context.Context) (int, error)) {
	if _, loaded := s.running.LoadOrStore(name, struct{}{}); loaded {
		logger.Debug("sweep job still running, skipping tick", "job", name)
		return
	}
	defer s.running.Delete(name)

	start := time.Now()
	processed, err := job(ctx)
	if err != nil {
		metrics.RecordSweepRun(name, "error", 0)
		logger.Error("sweep job failed", "job", name, "error", err)
		return
	}

	metrics.RecordSweepRun(name, "ok", processed)
	if processed > 0 {
		logger.Info("sweep job finished",
			"job", name,
			"processed", processed,
			"duration", time.Since(start).String(),
		)
	}
}
