package sched

import (
	"context"
	"time"

	"meal-subscriptions/internal/infra/metrics"
	"meal-subscriptions/internal/usecase"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// PoolStats reports total, idle and acquired connections.
type PoolStats func() (total, idle, inUse int32)

// FromPool adapts a pgx pool to PoolStats.
func FromPool(pool *pgxpool.Pool) PoolStats {
	return func() (int32, int32, int32) {
		s := pool.Stat()
		return s.TotalConns(), s.IdleConns(), s.AcquiredConns()
	}
}

// StatsWorker periodically refreshes the subscription and pool gauges. It never writes domain data.
type StatsWorker struct {
	interval time.Duration
	stats    usecase.StatsUseCase
	pool     PoolStats
	log      *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, stats usecase.StatsUseCase, pool PoolStats, logger *zerolog.Logger) *StatsWorker {
	l := logger.With().Str("component", "StatsWorker").Logger()
	return &StatsWorker{
		interval: interval,
		stats:    stats,
		pool:     pool,
		log:      &l,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	if w.pool != nil {
		metrics.SetDBPoolStats(w.pool())
	}
	counts, err := w.stats.CountByStatus(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("stats worker error")
		}
		return
	}
	metrics.SetSubscriptionsTotal(counts)
	w.log.Debug().Interface("counts", counts).Msg("subscription gauges refreshed")
}
