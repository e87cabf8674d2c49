package interfaces

import (
	"context"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// BenchmarkRepository defines data access for benchmarks. Benchmarks are
// mutable caches keyed by (tenant, industry, period); Put upserts.
type BenchmarkRepository interface {
	// Put creates or overwrites the benchmark for its scope and period
	Put(ctx context.Context, bm *model.Benchmark) (*model.Benchmark, error)

	// Get retrieves the benchmark for the given scope and period
	Get(ctx context.Context, tenantID types.TenantID, industryID types.IndustryID, period model.QuotaPeriod) (*model.Benchmark, error)

	// List retrieves all benchmarks of a tenant
	List(ctx context.Context, tenantID types.TenantID) ([]*model.Benchmark, error)
}
