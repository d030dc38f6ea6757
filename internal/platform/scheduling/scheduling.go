// Package scheduling runs the optional in-process cron trigger for the
// missed-dose check. Deployments that trigger the job over HTTP (platform
// cron hitting POST /internal/check-missed) leave it disabled.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is the unit of work a Cron runs on each tick.
type Job func(ctx context.Context) error

// Cron wraps a robfig/cron runner around a single job.
type Cron struct {
	runner  *cron.Cron
	logger  zerolog.Logger
	timeout time.Duration
}

// New builds a Cron that runs job on the given standard 5-field cron
// schedule (e.g. "*/15 * * * *"). Each run gets a fresh context bounded by
// timeout; overlapping runs are skipped.
func New(schedule string, job Job, timeout time.Duration, logger zerolog.Logger) (*Cron, error) {
	c := &Cron{
		runner:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: timeout,
	}

	_, err := c.runner.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			c.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("scheduled job failed")
			return
		}
		c.logger.Info().Dur("elapsed", time.Since(start)).Msg("scheduled job completed")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	return c, nil
}

// Start begins running the schedule in a background goroutine.
func (c *Cron) Start() {
	c.runner.Start()
	c.logger.Info().Msg("cron scheduler started")
}

// Stop halts the schedule and waits for any in-flight run to finish.
func (c *Cron) Stop() {
	ctx := c.runner.Stop()
	<-ctx.Done()
	c.logger.Info().Msg("cron scheduler stopped")
}
