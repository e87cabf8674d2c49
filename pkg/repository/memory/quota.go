package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

type quotaRepository struct {
	mu     sync.RWMutex
	quotas map[model.QuotaID]*model.Quota
}

func newQuotaRepository() *quotaRepository {
	return &quotaRepository{
		quotas: make(map[model.QuotaID]*model.Quota),
	}
}

func cloneQuota(q *model.Quota) *model.Quota {
	c := *q
	return &c
}

func (r *quotaRepository) Create(ctx context.Context, quota *model.Quota) (*model.Quota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := cloneQuota(quota)
	if created.ID == "" {
		created.ID = model.NewQuotaID()
	}
	if _, exists := r.quotas[created.ID]; exists {
		return nil, goerr.New("quota already exists", goerr.V("id", created.ID))
	}

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.quotas[created.ID] = created
	return cloneQuota(created), nil
}

func (r *quotaRepository) Get(ctx context.Context, id model.QuotaID) (*model.Quota, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, exists := r.quotas[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "quota not found", goerr.V("id", id))
	}
	return cloneQuota(q), nil
}

func (r *quotaRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Quota, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Quota
	for _, q := range r.quotas {
		if q.TenantID == tenantID {
			result = append(result, cloneQuota(q))
		}
	}
	return result, nil
}

func (r *quotaRepository) ListChildren(ctx context.Context, parentID model.QuotaID) ([]*model.Quota, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Quota
	for _, q := range r.quotas {
		if q.ParentQuotaID == parentID {
			result = append(result, cloneQuota(q))
		}
	}
	return result, nil
}

func (r *quotaRepository) Update(ctx context.Context, quota *model.Quota) (*model.Quota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.quotas[quota.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "quota not found", goerr.V("id", quota.ID))
	}

	updated := cloneQuota(quota)
	updated.Performance = existing.Performance // owned by UpdatePerformance
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.quotas[updated.ID] = updated
	return cloneQuota(updated), nil
}

func (r *quotaRepository) UpdatePerformance(ctx context.Context, id model.QuotaID, perf model.QuotaPerformance) (*model.Quota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.quotas[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "quota not found", goerr.V("id", id))
	}

	existing.Performance = perf
	existing.UpdatedAt = time.Now().UTC()
	return cloneQuota(existing), nil
}

func (r *quotaRepository) Delete(ctx context.Context, id model.QuotaID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.quotas[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "quota not found", goerr.V("id", id))
	}

	delete(r.quotas, id)
	return nil
}
