package benchmark

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// renewalType is the opportunity type counted for renewal probability
const renewalType types.OpportunityType = "renewal"

// Calculator aggregates historical opportunity statistics into a cached
// benchmark. Recomputed periodically; stale reads are acceptable.
type Calculator struct {
	repo interfaces.Repository
}

func New(repo interfaces.Repository) *Calculator {
	return &Calculator{repo: repo}
}

// Calculate computes the benchmark for the tenant (optionally narrowed to
// an industry) over the period and overwrites the cached record. Only
// opportunities closed inside the period count.
func (c *Calculator) Calculate(ctx context.Context, tenantID types.TenantID, industryID types.IndustryID, period model.QuotaPeriod) (*model.Benchmark, error) {
	opps, err := c.repo.Opportunity().List(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list opportunities", goerr.V("tenantID", tenantID))
	}

	var stats model.BenchmarkStats
	var totalValue, totalClosingDays float64
	var renewals, wonRenewals int

	for _, opp := range opps {
		if industryID != "" && opp.IndustryID != industryID {
			continue
		}
		if opp.ClosedAt == nil || !period.Contains(*opp.ClosedAt) {
			continue
		}

		switch opp.Stage.Normalize() {
		case types.StageWon:
			stats.WonCount++
			totalClosingDays += opp.ClosedAt.Sub(opp.CreatedAt).Hours() / 24
		case types.StageLost:
			stats.LostCount++
		default:
			continue
		}

		stats.DealCount++
		totalValue += opp.DealValue

		if opp.OpportunityType == renewalType {
			renewals++
			if opp.Stage.Normalize() == types.StageWon {
				wonRenewals++
			}
		}
	}

	if stats.DealCount > 0 {
		stats.WinRate = float64(stats.WonCount) / float64(stats.DealCount)
		stats.AvgDealValue = totalValue / float64(stats.DealCount)
	}
	if stats.WonCount > 0 {
		stats.AvgClosingDays = totalClosingDays / float64(stats.WonCount)
	}
	if renewals > 0 {
		stats.RenewalProbability = float64(wonRenewals) / float64(renewals)
	}

	bm, err := c.repo.Benchmark().Put(ctx, &model.Benchmark{
		TenantID:     tenantID,
		IndustryID:   industryID,
		Period:       period,
		Stats:        stats,
		CalculatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store benchmark", goerr.V("tenantID", tenantID))
	}
	return bm, nil
}
