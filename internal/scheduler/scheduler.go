// Package scheduler runs the periodic refresh of every stored component.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ortelius/component-monitor/internal/services"
)

// DefaultSchedule fires daily at 03:00 UTC.
const DefaultSchedule = "0 3 * * *"

// Refresher refreshes every component.
type Refresher interface {
	RefreshAll(ctx context.Context, trigger string) (*services.RefreshSummary, error)
}

// Scheduler triggers Refresher.RefreshAll on a cron schedule evaluated in UTC.
// A run still in progress when the next one is due causes that run to be skipped.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New parses spec and returns a stopped scheduler.
func New(spec string, refresher Refresher, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spec == "" {
		spec = DefaultSchedule
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, refresher: refresher, logger: logger, ctx: ctx, cancel: cancel}

	if _, err := c.AddFunc(spec, s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	s.logger.Info("Scheduled refresh starting")
	summary, err := s.refresher.RefreshAll(s.ctx, "schedule")
	if err != nil {
		s.logger.Error("Scheduled refresh failed", zap.Error(err))
		return
	}
	s.logger.Info("Scheduled refresh finished", zap.Int("refreshed", summary.Count), zap.Int("failed", len(summary.Failed)))
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Refresh scheduler started", zap.Time("next", s.Next()))
}

// Next returns when the refresh fires next, or the zero time when stopped.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop cancels a running refresh and waits for it to return, or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
