package monitors

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/constants"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a cron schedule. An overrunning job makes the next
// tick a no-op instead of stacking runs.
type Scheduler struct {
	Cron        *cron.Cron
	Logger      *log.Logger
	StopTimeout time.Duration
}

// NewScheduler builds a scheduler logging through the cron logger.
func NewScheduler() *Scheduler {
	logger := cron.PrintfLogger(utils.CronLogger)

	return &Scheduler{
		Cron: cron.New(
			cron.WithChain(
				cron.SkipIfStillRunning(logger),
			),
			cron.WithLogger(logger),
		),
		Logger:      utils.CronLogger,
		StopTimeout: constants.CronShutdownWait,
	}
}

// Run schedules job and blocks until ctx is cancelled, then waits for the
// running job up to StopTimeout. Job errors are logged, not returned.
func (s *Scheduler) Run(ctx context.Context, spec string, name string, job func(context.Context) error) error {
	if !utils.IsValidCron(spec) {
		return fmt.Errorf("invalid cron schedule %q", spec)
	}

	_, err := s.Cron.AddFunc(spec, func() {
		// Check if context is cancelled before running the job
		if ctx.Err() != nil {
			return
		}
		if err := job(ctx); err != nil {
			s.Logger.Printf("[CRON] %s failed: %v", name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}

	s.Logger.Printf("[CRON] %s scheduled with %q", name, spec)
	s.Cron.Start()

	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop halts the scheduler and waits for running jobs to complete (with timeout).
func (s *Scheduler) Stop() {
	s.Logger.Println("[CRON] stopping scheduler")
	done := s.Cron.Stop()

	select {
	case <-done.Done():
		s.Logger.Println("[CRON] all jobs completed")
	case <-time.After(s.StopTimeout):
		s.Logger.Println("[CRON] shutdown timed out waiting for jobs")
	}
}
