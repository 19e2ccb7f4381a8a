package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ironbridge-it/website-api/pkg/logging"
)

// Sweepable is a limiter that can forget expired or idle keys.
type Sweepable interface {
	Sweep(now time.Time) int
}

// Sweeper periodically evicts expired windows so the map does not grow without bound.
type Sweeper struct {
	cron   *cron.Cron
	logger *logging.Logger
}

// NewSweeper schedules Sweep on every target using a cron spec such as "@every 5m".
func NewSweeper(spec string, logger *logging.Logger, targets ...Sweepable) (*Sweeper, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("ratelimit: sweep target required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		now := time.Now()
		removed := 0
		for _, target := range targets {
			if target != nil {
				removed += target.Sweep(now)
			}
		}
		if removed > 0 {
			logger.Debug("rate limit windows swept", "removed", removed)
		}
	}); err != nil {
		return nil, fmt.Errorf("ratelimit: schedule sweep %q: %w", spec, err)
	}
	return &Sweeper{cron: c, logger: logger}, nil
}

// Run starts the schedule and blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("rate limit sweeper started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
