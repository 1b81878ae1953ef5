package service

import (
	"context"
	"time"

	"github.com/dom/mini-crm/internal/metrics"
	"go.uber.org/zap"
)

// Sweeper periodically removes expired refresh tokens outside the request
// path.
type Sweeper struct {
	refresh  *RefreshTokenService
	interval time.Duration
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewSweeper(refresh *RefreshTokenService, interval time.Duration, log *zap.Logger, m *metrics.Metrics) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		refresh:  refresh,
		interval: interval,
		log:      log.With(zap.String("component", "sweeper")),
		metrics:  m,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done. A
// non-positive interval disables the loop after the first sweep.
func (s *Sweeper) Run(ctx context.Context) {
	s.SweepOnce(ctx)
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) int64 {
	removed, err := s.refresh.SweepExpired(ctx)
	if err != nil {
		s.log.Error("refresh token sweep failed", zap.Error(err))
		return 0
	}
	if removed > 0 {
		s.log.Info("expired refresh tokens removed", zap.Int64("count", removed))
	}
	if s.metrics != nil {
		s.metrics.RefreshTokensSweptTotal.Add(float64(removed))
	}
	return removed
}
