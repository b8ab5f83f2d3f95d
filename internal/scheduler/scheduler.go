// Package scheduler provides cron-based scheduling for the intake bot.
//
// It is used for periodic maintenance jobs such as the session reaper sweep.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Scheduler provides cron-based job scheduling.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a cron scheduler.
func NewScheduler() *Scheduler {
	// Use standard 5-field cron parser (min, hour, dom, month, dow) and enable recovery
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task using the provided cron expression.
// It returns an error if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) error {
	_, err := s.cron.AddFunc(expr, task)
	return err
}

// AddEveryMinutes schedules a task to run every n minutes.
func (s *Scheduler) AddEveryMinutes(n int, task func()) error {
	if n <= 0 {
		return fmt.Errorf("interval must be positive, got %d", n)
	}
	return s.AddJob(fmt.Sprintf("*/%d * * * *", n), task)
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
