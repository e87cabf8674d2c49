package worker

import (
	"context"
	"time"

	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/service/benchmark"
	"github.com/revlens-lab/revlens/pkg/service/rollup"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
)

// RefreshWorker periodically recomputes quota performance caches and
// refreshes cached benchmarks for the configured tenants.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type RefreshWorker struct {
	repo       interfaces.Repository
	aggregator *rollup.Aggregator
	calculator *benchmark.Calculator
	tenants    []types.TenantID
	interval   time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// NewRefreshWorker creates a worker refreshing rollups and benchmarks
func NewRefreshWorker(repo interfaces.Repository, tenants []types.TenantID, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		repo:       repo,
		aggregator: rollup.New(repo),
		calculator: benchmark.New(repo),
		tenants:    tenants,
		interval:   interval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background refresh loop. The initial refresh and the
// periodic ones both run in a goroutine so server startup is not blocked.
func (w *RefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("rollup refresh worker starting",
		"interval", w.interval.String(), "tenants", len(w.tenants))

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *RefreshWorker) Stop() {
	logging.Default().Info("rollup refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("rollup refresh worker stopped")
}

func (w *RefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)

		case <-w.stopCh:
			logging.Default().Info("rollup refresh worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("rollup refresh worker context cancelled")
			return
		}
	}
}

// refresh performs a single cycle. Failures on one quota or benchmark are
// logged and do not stop the rest of the cycle.
func (w *RefreshWorker) refresh(ctx context.Context) {
	logger := logging.From(ctx)
	start := time.Now()

	var quotas, benchmarks int
	for _, tenantID := range w.tenants {
		quotas += w.refreshQuotas(ctx, tenantID)
		benchmarks += w.refreshBenchmarks(ctx, tenantID)
	}

	logger.Info("refresh cycle completed",
		"quotas", quotas,
		"benchmarks", benchmarks,
		"duration", time.Since(start).String())
}

func (w *RefreshWorker) refreshQuotas(ctx context.Context, tenantID types.TenantID) int {
	logger := logging.From(ctx)

	quotas, err := w.repo.Quota().List(ctx, tenantID)
	if err != nil {
		logger.Error("failed to list quotas (will retry next interval)",
			"tenantID", tenantID, "error", err.Error())
		return 0
	}

	refreshed := 0
	for _, q := range quotas {
		if _, err := w.aggregator.RollupQuota(ctx, q.ID); err != nil {
			logger.Error("quota rollup failed (will retry next interval)",
				"quotaID", q.ID, "error", err.Error())
			continue
		}
		refreshed++
	}
	return refreshed
}

// refreshBenchmarks recomputes every benchmark already cached for the
// tenant. New scopes enter the cache through the calculate API; the
// worker only keeps existing ones fresh.
func (w *RefreshWorker) refreshBenchmarks(ctx context.Context, tenantID types.TenantID) int {
	logger := logging.From(ctx)

	cached, err := w.repo.Benchmark().List(ctx, tenantID)
	if err != nil {
		logger.Error("failed to list benchmarks (will retry next interval)",
			"tenantID", tenantID, "error", err.Error())
		return 0
	}

	refreshed := 0
	for _, bm := range cached {
		if _, err := w.calculator.Calculate(ctx, bm.TenantID, bm.IndustryID, bm.Period); err != nil {
			logger.Error("benchmark refresh failed (will retry next interval)",
				"tenantID", bm.TenantID, "industryID", bm.IndustryID, "error", err.Error())
			continue
		}
		refreshed++
	}
	return refreshed
}
