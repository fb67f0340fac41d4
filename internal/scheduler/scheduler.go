package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages the daily cron task.
type Scheduler struct {
	Cron   *cron.Cron
	Runner *Runner
	Ctx    context.Context
	Now    func() time.Time
}

// NewScheduler creates a new Scheduler. Cron specs carry a seconds field
// and are evaluated in UTC.
func NewScheduler(ctx context.Context, runner *Runner) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		Runner: runner,
		Ctx:    ctx,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register registers the daily run.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.RunNow); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the daily run immediately (manual trigger / run_on_start).
func (s *Scheduler) RunNow() {
	if _, err := s.Runner.RunDaily(s.Ctx, s.Now()); err != nil {
		log.Error().Err(err).Msg("daily run failed")
		s.Runner.notify(s.Ctx, fmt.Sprintf("❌ RiskDial daily run failed: %v", err))
	}
}
