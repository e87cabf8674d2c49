package rollup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/repository/memory"
	"github.com/revlens-lab/revlens/pkg/service/rollup"
)

var (
	periodStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	midPeriod   = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
)

func quarterQuota(tenantID string, target float64) *model.Quota {
	return &model.Quota{
		TenantID:  types.TenantID(tenantID),
		QuotaType: types.QuotaTypeTenant,
		Period: model.QuotaPeriod{
			Type:      types.PeriodQuarter,
			StartDate: periodStart,
			EndDate:   periodEnd,
		},
		Target: model.QuotaTarget{Amount: target, Currency: "USD"},
	}
}

func openOpp(t *testing.T, repo interfaces.Repository, tenantID string, dealValue, revenueAtRisk float64) *model.Opportunity {
	t.Helper()
	closeAt := midPeriod
	opp, err := repo.Opportunity().Create(context.Background(), &model.Opportunity{
		TenantID:        types.TenantID(tenantID),
		Name:            "open deal",
		DealValue:       dealValue,
		OwnerID:         "user-1",
		TeamID:          "team-east",
		Stage:           types.StageOpen,
		ExpectedCloseAt: &closeAt,
	})
	if err != nil {
		t.Fatalf("failed to create opportunity: %v", err)
	}
	if revenueAtRisk > 0 {
		_, err = repo.Opportunity().UpdateEvaluation(context.Background(), opp.ID, 0, &model.RiskEvaluation{
			RiskScore:     revenueAtRisk / dealValue,
			RevenueAtRisk: revenueAtRisk,
			CalculatedAt:  time.Now().UTC(),
		}, nil)
		if err != nil {
			t.Fatalf("failed to set evaluation: %v", err)
		}
	}
	return opp
}

func wonOpp(t *testing.T, repo interfaces.Repository, tenantID string, dealValue float64, closedAt time.Time) *model.Opportunity {
	t.Helper()
	opp, err := repo.Opportunity().Create(context.Background(), &model.Opportunity{
		TenantID:  types.TenantID(tenantID),
		Name:      "won deal",
		DealValue: dealValue,
		OwnerID:   "user-1",
		TeamID:    "team-east",
		Stage:     types.StageWon,
		ClosedAt:  &closedAt,
	})
	if err != nil {
		t.Fatalf("failed to create opportunity: %v", err)
	}
	return opp
}

func TestRollupQuotaScenario(t *testing.T) {
	repo := memory.New()
	agg := rollup.New(repo)
	ctx := context.Background()

	// target 500000, forecasted 480000, revenue at risk 30000
	// -> riskAdjusted 450000, riskAdjustedAttainment 0.9
	quota, err := repo.Quota().Create(ctx, quarterQuota("acme", 500000))
	gt.NoError(t, err).Required()

	openOpp(t, repo, "acme", 300000, 20000)
	openOpp(t, repo, "acme", 180000, 10000)

	perf, err := agg.RollupQuota(ctx, quota.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, perf.Forecasted).Equal(480000.0)
	gt.Value(t, perf.RiskAdjusted).Equal(450000.0)
	gt.Value(t, perf.RiskAdjustedAttainment).Equal(0.9)

	// the cache is written back
	stored, err := repo.Quota().Get(ctx, quota.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Performance.RiskAdjusted).Equal(450000.0)
}

func TestRollupQuotaActualAndAttainment(t *testing.T) {
	repo := memory.New()
	agg := rollup.New(repo)
	ctx := context.Background()

	quota, err := repo.Quota().Create(ctx, quarterQuota("acme", 1000000))
	gt.NoError(t, err).Required()

	wonOpp(t, repo, "acme", 400000, midPeriod)
	wonOpp(t, repo, "acme", 100000, periodEnd.AddDate(0, 1, 0)) // outside period

	perf, err := agg.RollupQuota(ctx, quota.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, perf.Actual).Equal(400000.0)
	gt.Value(t, perf.Attainment).Equal(0.4)
}

func TestRollupQuotaZeroTarget(t *testing.T) {
	repo := memory.New()
	agg := rollup.New(repo)
	ctx := context.Background()

	quota, err := repo.Quota().Create(ctx, quarterQuota("acme", 0))
	gt.NoError(t, err).Required()

	_, err = agg.RollupQuota(ctx, quota.ID)
	gt.True(t, errors.Is(err, model.ErrZeroTarget))
}

func TestRollupQuotaHierarchy(t *testing.T) {
	repo := memory.New()
	agg := rollup.New(repo)
	ctx := context.Background()

	parent, err := repo.Quota().Create(ctx, quarterQuota("acme", 1000000))
	gt.NoError(t, err).Required()

	east := quarterQuota("acme", 600000)
	east.QuotaType = types.QuotaTypeTeam
	east.TeamID = "team-east"
	east.ParentQuotaID = parent.ID
	_, err = repo.Quota().Create(ctx, east)
	gt.NoError(t, err).Required()

	west := quarterQuota("acme", 400000)
	west.QuotaType = types.QuotaTypeTeam
	west.TeamID = "team-west"
	west.ParentQuotaID = parent.ID
	_, err = repo.Quota().Create(ctx, west)
	gt.NoError(t, err).Required()

	// team-east: open 300000 with 20000 at risk
	openOpp(t, repo, "acme", 300000, 20000)

	// team-west: won 250000
	westOpp := wonOpp(t, repo, "acme", 250000, midPeriod)
	westOpp.TeamID = "team-west"
	_, err = repo.Opportunity().Update(ctx, westOpp)
	gt.NoError(t, err).Required()

	perf, err := agg.RollupQuota(ctx, parent.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, perf.Actual).Equal(250000.0)
	gt.Value(t, perf.Forecasted).Equal(300000.0)
	gt.Value(t, perf.RiskAdjusted).Equal(280000.0)
}

func TestRollupQuotaCycleDetected(t *testing.T) {
	repo := memory.New()
	agg := rollup.New(repo)
	ctx := context.Background()

	a, err := repo.Quota().Create(ctx, quarterQuota("acme", 100000))
	gt.NoError(t, err).Required()
	b := quarterQuota("acme", 100000)
	b.ParentQuotaID = a.ID
	created, err := repo.Quota().Create(ctx, b)
	gt.NoError(t, err).Required()

	// close the loop behind the write-time guard
	a.ParentQuotaID = created.ID
	_, err = repo.Quota().Update(ctx, a)
	gt.NoError(t, err).Required()

	_, err = agg.RollupQuota(ctx, a.ID)
	gt.True(t, errors.Is(err, model.ErrCycleDetected))
}

func TestRollupPortfolio(t *testing.T) {
	repo := memory.New()
	agg := rollup.New(repo)
	ctx := context.Background()

	openOpp(t, repo, "acme", 300000, 30000)
	openOpp(t, repo, "acme", 200000, 10000)
	wonOpp(t, repo, "acme", 500000, midPeriod) // closed deals carry no risk

	result, err := agg.RollupPortfolio(ctx, types.RollupScopeTenant, "acme", "acme")
	gt.NoError(t, err).Required()
	gt.Value(t, result.OpportunityCount).Equal(2)
	gt.Value(t, result.AggregateForecast).Equal(500000.0)
	gt.Value(t, result.AggregateRevenueAtRisk).Equal(40000.0)
}

func TestRollupPortfolioByOwnerAndTeam(t *testing.T) {
	repo := memory.New()
	agg := rollup.New(repo)
	ctx := context.Background()

	openOpp(t, repo, "acme", 300000, 30000)

	other := openOpp(t, repo, "acme", 200000, 10000)
	other.OwnerID = "user-2"
	other.TeamID = "team-west"
	_, err := repo.Opportunity().Update(ctx, other)
	gt.NoError(t, err).Required()

	byOwner, err := agg.RollupPortfolio(ctx, types.RollupScopeUser, "user-1", "acme")
	gt.NoError(t, err).Required()
	gt.Value(t, byOwner.OpportunityCount).Equal(1)
	gt.Value(t, byOwner.AggregateRevenueAtRisk).Equal(30000.0)

	byTeam, err := agg.RollupPortfolio(ctx, types.RollupScopeTeam, "team-west", "acme")
	gt.NoError(t, err).Required()
	gt.Value(t, byTeam.OpportunityCount).Equal(1)
	gt.Value(t, byTeam.AggregateRevenueAtRisk).Equal(10000.0)
}

func TestRollupQuotaNotFound(t *testing.T) {
	repo := memory.New()
	agg := rollup.New(repo)
	ctx := context.Background()

	_, err := agg.RollupQuota(ctx, model.NewQuotaID())
	gt.True(t, errors.Is(err, model.ErrNotFound))
}
