package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"dappstore.GO/core/logger"
)

// JobTimeout bounds one run of a scheduled job.
const JobTimeout = 10 * time.Minute

// Start schedules jobs plus every registered job and starts the scheduler.
// A run still in progress makes the next tick of the same job skip.
func Start(ctx context.Context, jobs map[string]Job, log *slog.Logger) (*cron.Cron, error) {
	log = logger.OrDiscard(log).With("component", "cron")
	cl := cronLogger{log}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	all := Jobs()
	for name, j := range jobs {
		all[name] = j
	}
	for name, j := range all {
		if j.Schedule == "" {
			log.Info("job disabled", "job", name)
			continue
		}
		name, run := name, j.Run
		if _, err := c.AddFunc(j.Schedule, func() { RunJob(ctx, log, name, run) }); err != nil {
			return nil, fmt.Errorf("registering job %s: %w", name, err)
		}
		log.Info("job scheduled", "job", name, "schedule", j.Schedule)
	}
	c.Start()
	return c, nil
}

// RunJob runs one job with a bounded context and logs its outcome.
func RunJob(ctx context.Context, log *slog.Logger, name string, run func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, JobTimeout)
	defer cancel()
	start := time.Now()
	err := run(ctx)
	if err != nil {
		log.Error("job failed", "job", name, "error", err, "elapsed", time.Since(start))
		return err
	}
	log.Info("job done", "job", name, "elapsed", time.Since(start))
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ log *slog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
