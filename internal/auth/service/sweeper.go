package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/domain"
	"github.com/isurusajith68/stockwise-aiims-server/internal/metrics"
)

// Sweeper deletes revocation-ledger entries whose tokens have already
// expired naturally. Without it the ledger grows by one row per logout
// forever.
type Sweeper struct {
	revocations domain.RevocationRepository
	interval    time.Duration
	log         *zap.Logger
}

func NewSweeper(revocations domain.RevocationRepository, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		revocations: revocations,
		interval:    interval,
		log:         log,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("token sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	count, err := s.revocations.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.log.Error("failed to sweep expired tokens", zap.Error(err))
		return
	}

	metrics.TokensSwept.Add(float64(count))
	s.log.Info("swept expired tokens from blacklist", zap.Int64("count", count))
}
