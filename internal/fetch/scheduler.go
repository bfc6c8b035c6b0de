package fetch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Stats summarizes one scheduled batch.
type Stats struct {
	// OK counts successful fetches.
	OK int64
	// Soft counts expected failures.
	Soft int64
	// Hard counts unexpected failures.
	Hard int64
}

// Total returns the number of completed tasks.
func (s Stats) Total() int64 {
	return s.OK + s.Soft + s.Hard
}

// Scheduler fans fetch operations out under a global concurrency ceiling.
// The ceiling spans the whole batch, not per host; the registry tolerates
// wide fan-out but publisher servers appreciate the pacing delay.
type Scheduler struct {
	fetcher *Fetcher
	logger  *slog.Logger
	limit   int64
	delay   time.Duration
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the structured logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithDelay sets a pause before each task acquires a slot. It spaces out
// request starts so a batch against one host does not arrive as a burst.
func WithDelay(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.delay = d
	}
}

// NewScheduler creates a Scheduler with the given concurrency ceiling.
// A limit below one is treated as one.
func NewScheduler(f *Fetcher, limit int64, opts ...SchedulerOption) *Scheduler {
	if limit < 1 {
		limit = 1
	}
	s := &Scheduler{
		fetcher: f,
		logger:  slog.New(slog.DiscardHandler),
		limit:   limit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAll runs every descriptor through the fetcher, at most limit at a
// time, and waits for all of them. Per-task outcomes are delivered to the
// handle callback when one is given; failures never cancel siblings.
// Context cancellation stops unstarted tasks but lets running ones finish.
func (s *Scheduler) FetchAll(ctx context.Context, descs []Descriptor, opts Options, handle func(Descriptor, Result)) Stats {
	sem := semaphore.NewWeighted(s.limit)
	var (
		wg   sync.WaitGroup
		ok   atomic.Int64
		soft atomic.Int64
		hard atomic.Int64
	)

	for _, desc := range descs {
		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
			}
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			s.logger.InfoContext(ctx, "batch cancelled",
				"remaining", len(descs)-int(ok.Load()+soft.Load()+hard.Load()))
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			result := s.fetcher.FetchOrCache(ctx, desc, opts)
			switch result.Outcome {
			case OutcomeOK:
				ok.Add(1)
			case OutcomeSoftFailure:
				soft.Add(1)
			case OutcomeHardFailure:
				hard.Add(1)
				s.logger.WarnContext(ctx, "hard fetch failure",
					"url", desc.URL, "error", result.Reason)
			}
			if handle != nil {
				handle(desc, result)
			}
		}()
	}
	wg.Wait()

	stats := Stats{OK: ok.Load(), Soft: soft.Load(), Hard: hard.Load()}
	s.logger.InfoContext(ctx, "batch complete",
		"total", stats.Total(), "ok", stats.OK, "soft", stats.Soft, "hard", stats.Hard)
	return stats
}
