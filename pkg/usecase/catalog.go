package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/service/catalog"
)

// CreateCatalogEntry registers a new risk catalog entry at version 1
func (uc *UseCases) CreateCatalogEntry(ctx context.Context, entry *model.RiskCatalogEntry) (*model.RiskCatalogEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid catalog entry")
	}

	created, err := uc.repo.Catalog().Create(ctx, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create catalog entry", goerr.V("riskID", entry.RiskID))
	}
	return created, nil
}

// UpdateCatalogEntry updates an entry in place, bumping its version
func (uc *UseCases) UpdateCatalogEntry(ctx context.Context, entry *model.RiskCatalogEntry) (*model.RiskCatalogEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid catalog entry")
	}

	updated, err := uc.repo.Catalog().Update(ctx, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update catalog entry", goerr.V("riskID", entry.RiskID))
	}
	return updated, nil
}

// DisableCatalogEntry soft-disables an entry so it no longer participates
// in evaluations. The entry and its history are preserved.
func (uc *UseCases) DisableCatalogEntry(ctx context.Context, catalogType types.CatalogType, scopeID string, riskID types.RiskID) (*model.RiskCatalogEntry, error) {
	entries, err := uc.repo.Catalog().GetByRiskID(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get catalog entries", goerr.V("riskID", riskID))
	}

	for _, entry := range entries {
		if entry.CatalogType != catalogType || entry.ScopeID() != scopeID {
			continue
		}
		entry.IsActive = false
		updated, err := uc.repo.Catalog().Update(ctx, entry)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to disable catalog entry", goerr.V("riskID", riskID))
		}
		return updated, nil
	}

	return nil, goerr.Wrap(model.ErrNotFound, "catalog entry not found",
		goerr.V("riskID", riskID), goerr.V("catalogType", catalogType), goerr.V("scopeID", scopeID))
}

// ListCatalog lists the active entries visible to the tenant
func (uc *UseCases) ListCatalog(ctx context.Context, tenantID types.TenantID, industryID types.IndustryID) ([]*model.RiskCatalogEntry, error) {
	entries, err := uc.repo.Catalog().ListVisible(ctx, tenantID, industryID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list catalog", goerr.V("tenantID", tenantID))
	}
	return entries, nil
}

// ResolveRisk resolves the catalog entry and effective ponderation a risk
// would carry for the given opportunity context at asOf
func (uc *UseCases) ResolveRisk(ctx context.Context, riskID types.RiskID, tenantID types.TenantID, industryID types.IndustryID, opportunityType types.OpportunityType, asOf time.Time) (*catalog.ResolvedRisk, error) {
	return uc.resolver.Resolve(ctx, riskID, tenantID, industryID, opportunityType, asOf)
}
