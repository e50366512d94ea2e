// Package scheduler runs the auto-archive sweep on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often the sweep runs unless configured otherwise.
const DefaultInterval = time.Hour

// Archiver performs one archive sweep and reports how many items it archived.
type Archiver interface {
	AutoArchive(ctx context.Context) (int, error)
}

// Stats holds sweep counters.
type Stats struct {
	Runs          int64      `json:"runs"`
	Errors        int64      `json:"errors"`
	TotalArchived int64      `json:"total_archived"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

// Scheduler owns the recurring sweep. Stop cancels it and waits for the
// running sweep to return.
type Scheduler struct {
	archiver Archiver
	interval time.Duration

	mu     sync.Mutex
	stats  Stats
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a scheduler. A non-positive interval falls back to DefaultInterval.
func New(archiver Archiver, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{archiver: archiver, interval: interval}
}

// Interval returns the sweep interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Start runs the scheduler in a background goroutine. Calling Start on a
// running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		s.Run(ctx)
	}(s.done)

	slog.Info("auto-archive scheduler started", "interval", s.interval)
}

// Stop cancels the background loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Info("auto-archive scheduler stopped")
}

// RunOnce performs a single sweep and records the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	n, err := s.archiver.AutoArchive(ctx)
	now := time.Now()

	s.mu.Lock()
	s.stats.Runs++
	s.stats.LastRunAt = &now
	if err != nil {
		s.stats.Errors++
		s.stats.LastError = err.Error()
	} else {
		s.stats.TotalArchived += int64(n)
		s.stats.LastError = ""
	}
	s.mu.Unlock()

	switch {
	case err != nil:
		slog.Error("auto-archive failed", "error", err)
	case n > 0:
		slog.Info("auto-archived items", "count", n)
	default:
		slog.Debug("auto-archive found nothing to archive")
	}
	return n, err
}

// Stats returns a snapshot of the sweep counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	if stats.LastRunAt != nil {
		t := *stats.LastRunAt
		stats.LastRunAt = &t
	}
	return stats
}
