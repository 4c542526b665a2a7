// Package scheduler runs named background jobs on fixed intervals.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/igorsilveira/faqbot/pkg/telemetry"
)

type Job struct {
	Name string
	// Schedule is "@hourly", "@daily", "@weekly", "@every <duration>" or a
	// bare duration such as "30s".
	Schedule string
	Func     func(ctx context.Context) error
}

type Scheduler struct {
	mu   sync.Mutex
	jobs []entry
}

type entry struct {
	job      Job
	interval time.Duration
}

func New() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Add(job Job) error {
	interval, err := parseSchedule(job.Schedule)
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q: %w", job.Schedule, err)
	}
	if interval <= 0 {
		return fmt.Errorf("scheduler: invalid schedule %q: interval must be positive", job.Schedule)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, entry{job: job, interval: interval})
	return nil
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Run blocks until ctx is done, running each job every interval. A job
// never overlaps with its own previous run.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	jobs := slices.Clone(s.jobs)
	s.mu.Unlock()

	logger := telemetry.FromContext(ctx)
	logger.Info("scheduler started", slog.Int("jobs", len(jobs)))

	var wg sync.WaitGroup
	for _, e := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop(ctx, e, logger)
		}()
	}
	wg.Wait()
}

func loop(ctx context.Context, e entry, logger *slog.Logger) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx, e.job, logger)
		}
	}
}

func run(ctx context.Context, job Job, logger *slog.Logger) {
	start := time.Now()
	if err := job.Func(ctx); err != nil {
		telemetry.Metrics.ErrorsTotal.WithLabelValues("scheduler").Inc()
		logger.Error("scheduler: job failed",
			slog.String("job", job.Name),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Debug("scheduler: job finished",
		slog.String("job", job.Name),
		slog.Duration("took", time.Since(start)),
	)
}

func parseSchedule(s string) (time.Duration, error) {
	switch s {
	case "@hourly":
		return time.Hour, nil
	case "@daily":
		return 24 * time.Hour, nil
	case "@weekly":
		return 7 * 24 * time.Hour, nil
	}

	if rest, ok := strings.CutPrefix(s, "@every "); ok {
		return time.ParseDuration(strings.TrimSpace(rest))
	}
	return time.ParseDuration(s)
}
