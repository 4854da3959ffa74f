// Package scheduler contains the poll-loop that turns due jobs into runs
// and the periodic cleanup passes.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dataforge/internal/store"

	"github.com/google/uuid"
)

// JobClaimer claims batches of due jobs.
type JobClaimer interface {
	ClaimDueJobs(ctx context.Context, limit int, claimTTL time.Duration) ([]uuid.UUID, error)
}

// Lifecycle is the subset of lifecycle transitions the scheduler drives.
type Lifecycle interface {
	TriggerJob(ctx context.Context, jobID uuid.UUID) (*store.JobRun, error)
	PurgeExpired(ctx context.Context, entityType store.EntityType, retentionDays int) (int64, error)
	CleanupNotifications(ctx context.Context, retentionDays int) (int64, error)
}

// Config holds configuration for the scheduler daemon.
type Config struct {
	PollInterval time.Duration
	MaxBackoff   time.Duration // Maximum backoff when no jobs are due (default: 1m)
	BatchSize    int
	ClaimTTL     time.Duration // How long a claimed job is invisible to other instances

	CleanupInterval           time.Duration
	TrashRetentionDays        int
	NotificationRetentionDays int
}

// Scheduler drives the pull-loop: claim due jobs, start a run for each,
// and periodically purge expired trash and stale notifications.
type Scheduler struct {
	jobs      JobClaimer
	lifecycle Lifecycle
	config    Config
	log       *slog.Logger
	done      chan struct{}
}

// New creates a new scheduler.
func New(jobs JobClaimer, lm Lifecycle, config Config, log *slog.Logger) *Scheduler {
	if config.PollInterval <= 0 {
		config.PollInterval = 10 * time.Second
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 1 * time.Minute
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if config.ClaimTTL <= 0 {
		config.ClaimTTL = 5 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 1 * time.Hour
	}

	return &Scheduler{
		jobs:      jobs,
		lifecycle: lm,
		config:    config,
		log:       log,
		done:      make(chan struct{}),
	}
}

// Run starts the poll loop. It blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler starting",
		"poll_interval", s.config.PollInterval,
		"batch_size", s.config.BatchSize,
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runCleanup(ctx)
	}()

	// Backoff increases while nothing is due, resets when work is found.
	currentBackoff := s.config.PollInterval

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			close(s.done)
			return ctx.Err()

		case <-time.After(currentBackoff):
			n := s.pollOnce(ctx)
			if n == 0 {
				currentBackoff = currentBackoff * 2
				if currentBackoff > s.config.MaxBackoff {
					currentBackoff = s.config.MaxBackoff
				}
				continue
			}
			currentBackoff = s.config.PollInterval
		}
	}
}

// Done returns a channel that is closed when the scheduler has fully stopped.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// pollOnce claims one batch of due jobs and starts a run for each.
// Returns the number of claimed jobs.
func (s *Scheduler) pollOnce(ctx context.Context) int {
	ids, err := s.jobs.ClaimDueJobs(ctx, s.config.BatchSize, s.config.ClaimTTL)
	if err != nil {
		s.log.Error("claim due jobs failed", "error", err)
		return 0
	}
	if len(ids) == 0 {
		return 0
	}

	s.log.Info("claimed due jobs", "count", len(ids))

	for _, id := range ids {
		if _, err := s.lifecycle.TriggerJob(ctx, id); err != nil {
			// A job whose previous run is still open stays claimed; its
			// next_run was pushed forward by the claim TTL and it becomes
			// due again once that passes.
			var conflict *store.StateConflictError
			if errors.As(err, &conflict) {
				s.log.Warn("skipping job with open run", "job_id", id)
				continue
			}
			s.log.Error("trigger job failed", "job_id", id, "error", err)
		}
	}
	return len(ids)
}

// runCleanup periodically purges expired trash and old notifications.
func (s *Scheduler) runCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupOnce(ctx)
		}
	}
}

func (s *Scheduler) cleanupOnce(ctx context.Context) {
	for _, entityType := range []store.EntityType{store.EntitySource, store.EntityDataset, store.EntityJob} {
		if _, err := s.lifecycle.PurgeExpired(ctx, entityType, s.config.TrashRetentionDays); err != nil {
			s.log.Error("purge expired failed", "entity_type", entityType, "error", err)
		}
	}
	if _, err := s.lifecycle.CleanupNotifications(ctx, s.config.NotificationRetentionDays); err != nil {
		s.log.Error("notification cleanup failed", "error", err)
	}
}
