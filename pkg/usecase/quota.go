package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/service/rollup"
)

// maxQuotaDepth bounds parent-chain walks. Real hierarchies are a few
// levels (user → team → tenant); anything deeper is a data error.
const maxQuotaDepth = 32

// CreateQuota registers a new quota. A parent reference is verified to
// exist and to not introduce a cycle.
func (uc *UseCases) CreateQuota(ctx context.Context, quota *model.Quota) (*model.Quota, error) {
	if err := quota.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid quota")
	}

	if quota.ParentQuotaID != "" {
		if err := uc.checkQuotaChain(ctx, quota.ParentQuotaID, quota.ID); err != nil {
			return nil, err
		}
	}

	created, err := uc.repo.Quota().Create(ctx, quota)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create quota")
	}
	return created, nil
}

// UpdateQuota updates a quota definition. Parent changes that would make
// the hierarchy cyclic are rejected with ErrCycleDetected.
func (uc *UseCases) UpdateQuota(ctx context.Context, quota *model.Quota) (*model.Quota, error) {
	if err := quota.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid quota")
	}

	if quota.ParentQuotaID != "" {
		if quota.ParentQuotaID == quota.ID {
			return nil, goerr.Wrap(model.ErrCycleDetected, "quota cannot be its own parent",
				goerr.V("quotaID", quota.ID))
		}
		if err := uc.checkQuotaChain(ctx, quota.ParentQuotaID, quota.ID); err != nil {
			return nil, err
		}
	}

	updated, err := uc.repo.Quota().Update(ctx, quota)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update quota", goerr.V("quotaID", quota.ID))
	}
	return updated, nil
}

// checkQuotaChain walks up from parentID and fails with ErrCycleDetected
// if the chain reaches quotaID or loops
func (uc *UseCases) checkQuotaChain(ctx context.Context, parentID, quotaID model.QuotaID) error {
	seen := map[model.QuotaID]bool{}
	current := parentID

	for depth := 0; depth < maxQuotaDepth; depth++ {
		if current == quotaID || seen[current] {
			return goerr.Wrap(model.ErrCycleDetected, "quota parent chain forms a cycle",
				goerr.V("quotaID", quotaID), goerr.V("parentID", parentID))
		}
		seen[current] = true

		parent, err := uc.repo.Quota().Get(ctx, current)
		if err != nil {
			return goerr.Wrap(err, "failed to get parent quota", goerr.V("parentID", current))
		}
		if parent.ParentQuotaID == "" {
			return nil
		}
		current = parent.ParentQuotaID
	}

	return goerr.Wrap(model.ErrCycleDetected, "quota parent chain exceeds maximum depth",
		goerr.V("quotaID", quotaID), goerr.V("maxDepth", maxQuotaDepth))
}

// GetQuota retrieves a quota by ID
func (uc *UseCases) GetQuota(ctx context.Context, id model.QuotaID) (*model.Quota, error) {
	quota, err := uc.repo.Quota().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get quota", goerr.V("quotaID", id))
	}
	return quota, nil
}

// ListQuotas lists a tenant's quotas
func (uc *UseCases) ListQuotas(ctx context.Context, tenantID types.TenantID) ([]*model.Quota, error) {
	quotas, err := uc.repo.Quota().List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list quotas", goerr.V("tenantID", tenantID))
	}
	return quotas, nil
}

// DeleteQuota removes a quota
func (uc *UseCases) DeleteQuota(ctx context.Context, id model.QuotaID) error {
	if err := uc.repo.Quota().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete quota", goerr.V("quotaID", id))
	}
	return nil
}

// RollupQuota recomputes and caches the quota's performance figures
func (uc *UseCases) RollupQuota(ctx context.Context, id model.QuotaID) (*model.QuotaPerformance, error) {
	return uc.aggregator.RollupQuota(ctx, id)
}

// RollupPortfolio aggregates the open pipeline for a user, team or tenant
func (uc *UseCases) RollupPortfolio(ctx context.Context, scope types.RollupScope, scopeID string, tenantID types.TenantID) (*rollup.PortfolioRollup, error) {
	return uc.aggregator.RollupPortfolio(ctx, scope, scopeID, tenantID)
}
