package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

func benchmarkKey(tenantID types.TenantID, industryID types.IndustryID, period model.QuotaPeriod) string {
	return fmt.Sprintf("%s/%s/%s/%d/%d",
		tenantID, industryID, period.Type,
		period.StartDate.Unix(), period.EndDate.Unix())
}

type benchmarkRepository struct {
	mu         sync.RWMutex
	benchmarks map[string]*model.Benchmark
}

func newBenchmarkRepository() *benchmarkRepository {
	return &benchmarkRepository{
		benchmarks: make(map[string]*model.Benchmark),
	}
}

func cloneBenchmark(b *model.Benchmark) *model.Benchmark {
	c := *b
	return &c
}

func (r *benchmarkRepository) Put(ctx context.Context, bm *model.Benchmark) (*model.Benchmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneBenchmark(bm)
	if stored.ID == "" {
		stored.ID = model.NewBenchmarkID()
	}
	stored.CalculatedAt = time.Now().UTC()

	r.benchmarks[benchmarkKey(bm.TenantID, bm.IndustryID, bm.Period)] = stored
	return cloneBenchmark(stored), nil
}

func (r *benchmarkRepository) Get(ctx context.Context, tenantID types.TenantID, industryID types.IndustryID, period model.QuotaPeriod) (*model.Benchmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.benchmarks[benchmarkKey(tenantID, industryID, period)]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "benchmark not found",
			goerr.V("tenantID", tenantID), goerr.V("industryID", industryID))
	}
	return cloneBenchmark(b), nil
}

func (r *benchmarkRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Benchmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Benchmark
	for _, b := range r.benchmarks {
		if b.TenantID == tenantID {
			result = append(result, cloneBenchmark(b))
		}
	}
	return result, nil
}
