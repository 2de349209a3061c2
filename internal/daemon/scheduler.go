package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron for the single daily posting job.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler evaluating times in loc.
func NewScheduler(loc *time.Location) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleDailyPost registers task to run once per day at hour:minute.
// Singleton mode keeps a slow publish from overlapping the next tick, so
// posting runs are always serialized.
func (s *Scheduler) ScheduleDailyPost(hour, minute int, task func()) (gocron.Job, error) {
	job, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(hour), uint(minute), 0),
		)),
		gocron.NewTask(task),
		gocron.WithName("daily-post"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create daily post job: %w", err)
	}
	return job, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// NextRun returns the next scheduled run time, if a job is registered.
func (s *Scheduler) NextRun() (time.Time, bool) {
	jobs := s.scheduler.Jobs()
	if len(jobs) == 0 {
		return time.Time{}, false
	}
	next, err := jobs[0].NextRun()
	if err != nil {
		return time.Time{}, false
	}
	return next, true
}
