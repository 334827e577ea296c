package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/openshelf/internal/config"
)

// StreakSweeper resets reading streaks for users who have gone stale.
type StreakSweeper interface {
	SweepExpiredStreaks() (int64, error)
}

// StreakSweepScheduler runs the streak sweep on a cron schedule so that
// users who stop reading see their streak drop without needing another
// progress write to trigger it.
type StreakSweepScheduler struct {
	stats StreakSweeper
	cfg   config.Maintenance

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

// NewStreakSweepScheduler creates a new scheduler instance
func NewStreakSweepScheduler(stats StreakSweeper, cfg config.Maintenance) *StreakSweepScheduler {
	return &StreakSweepScheduler{
		stats: stats,
		cfg:   cfg,
		cron:  cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if the sweep is enabled
func (s *StreakSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.StreakSweepEnabled {
		log.Printf("Streak sweep scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.StreakSweepSchedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule streak sweep with '%s': %w", s.cfg.StreakSweepSchedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Streak sweep scheduler: started with schedule '%s'", s.cfg.StreakSweepSchedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *StreakSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Streak sweep scheduler: stopped")
}

// RunNow triggers an immediate sweep
func (s *StreakSweepScheduler) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is active
func (s *StreakSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sweep will occur
func (s *StreakSweepScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSweep performs the actual sweep
func (s *StreakSweepScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Streak sweep: skipped (already running)")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	startTime := time.Now()
	reset, err := s.stats.SweepExpiredStreaks()
	if err != nil {
		log.Printf("Streak sweep: failed: %v", err)
		return
	}

	log.Printf("Streak sweep: reset %d stale streaks in %v",
		reset, time.Since(startTime).Round(time.Millisecond))
}
