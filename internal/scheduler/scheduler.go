// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of scheduled maintenance work. Name is used for logging
// and must be stable across restarts.
type Job interface {
	Run() error
	Name() string
}

// Scheduler wraps a cron runner with logged job execution. Scheduled job
// failures are logged and swallowed; a failing maintenance job must never
// take the service down.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates an empty scheduler. Jobs start firing only after Start.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins dispatching registered jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Background scheduler started")
}

// Stop halts dispatching and blocks until in-flight jobs finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Background scheduler stopped")
}

// AddJob registers a job against a standard 5-field cron expression (or a
// descriptor like "@hourly"), e.g. "*/30 * * * *" for the WAL checkpoint
// or "30 3 * * *" for the nightly snapshot cleanup.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Job starting")

		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
			return
		}

		s.log.Debug().Str("job", job.Name()).Msg("Job finished")
	})

	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately, outside its schedule. Unlike scheduled
// runs the error is returned to the caller.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job on demand")
	return job.Run()
}
