package catalog

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// Resolver resolves the effective risk definition and ponderation for a
// request scope. All methods are pure reads.
type Resolver struct {
	repo interfaces.CatalogRepository
}

func NewResolver(repo interfaces.CatalogRepository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolvedRisk is the outcome of a resolution: the winning catalog entry
// and the ponderation in effect for the request scope and time
type ResolvedRisk struct {
	Entry                *model.RiskCatalogEntry `json:"entry"`
	EffectivePonderation float64                 `json:"effective_ponderation"`
}

// Resolve finds the catalog entry for riskID visible to the tenant and
// computes the effective ponderation at asOf. When the risk is defined at
// several catalog levels, the most specific visible entry wins: tenant
// over industry over global.
func (r *Resolver) Resolve(ctx context.Context, riskID types.RiskID, tenantID types.TenantID, industryID types.IndustryID, opportunityType types.OpportunityType, asOf time.Time) (*ResolvedRisk, error) {
	entries, err := r.repo.GetByRiskID(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up catalog entries", goerr.V("riskID", riskID))
	}

	var entry *model.RiskCatalogEntry
	for _, e := range entries {
		if !e.IsActive || !e.VisibleTo(tenantID, industryID) {
			continue
		}
		if entry == nil || catalogSpecificity(e.CatalogType) > catalogSpecificity(entry.CatalogType) {
			entry = e
		}
	}
	if entry == nil {
		return nil, goerr.Wrap(model.ErrNotFound, "risk not resolvable in scope",
			goerr.V("riskID", riskID), goerr.V("tenantID", tenantID), goerr.V("industryID", industryID))
	}

	ponderation, err := EffectivePonderation(entry, tenantID, industryID, opportunityType, asOf)
	if err != nil {
		return nil, err
	}

	return &ResolvedRisk{Entry: entry, EffectivePonderation: ponderation}, nil
}

func catalogSpecificity(ct types.CatalogType) int {
	switch ct {
	case types.CatalogTypeTenant:
		return 3
	case types.CatalogTypeIndustry:
		return 2
	case types.CatalogTypeGlobal:
		return 1
	default:
		return 0
	}
}

// EffectivePonderation computes the weight in effect for the entry at asOf.
// Starting from DefaultPonderation, overrides whose scope matches the
// request and whose [EffectiveFrom, EffectiveTo) window contains asOf are
// considered; the most specific scope wins (opportunity_type > industry >
// tenant). Equal specificity is broken by latest CreatedAt; two candidates
// with identical CreatedAt are rejected as ambiguous.
func EffectivePonderation(entry *model.RiskCatalogEntry, tenantID types.TenantID, industryID types.IndustryID, opportunityType types.OpportunityType, asOf time.Time) (float64, error) {
	var winner *model.PonderationOverride

	for i := range entry.Ponderations {
		o := &entry.Ponderations[i]
		if !o.AppliesAt(asOf) {
			continue
		}
		if !overrideMatches(o, tenantID, industryID, opportunityType) {
			continue
		}

		switch {
		case winner == nil:
			winner = o
		case o.Scope.Specificity() > winner.Scope.Specificity():
			winner = o
		case o.Scope.Specificity() == winner.Scope.Specificity():
			if o.CreatedAt.Equal(winner.CreatedAt) {
				return 0, goerr.Wrap(model.ErrAmbiguous, "conflicting ponderation overrides",
					goerr.V("riskID", entry.RiskID),
					goerr.V("scope", o.Scope),
					goerr.V("asOf", asOf))
			}
			if o.CreatedAt.After(winner.CreatedAt) {
				winner = o
			}
		}
	}

	if winner == nil {
		return entry.DefaultPonderation, nil
	}
	return winner.Ponderation, nil
}

func overrideMatches(o *model.PonderationOverride, tenantID types.TenantID, industryID types.IndustryID, opportunityType types.OpportunityType) bool {
	switch o.Scope {
	case types.ScopeTenant:
		return o.ScopeID == tenantID.String()
	case types.ScopeIndustry:
		return o.ScopeID == industryID.String()
	case types.ScopeOpportunityType:
		return opportunityType != "" && o.ScopeID == opportunityType.String()
	default:
		return false
	}
}
