package rollup

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Aggregator computes cached rollup figures: quota performance and
// portfolio revenue-at-risk aggregates. Rollups read the evaluation cache
// with eventual consistency; stale figures are acceptable.
type Aggregator struct {
	repo interfaces.Repository
	now  func() time.Time
}

type Option func(*Aggregator)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *Aggregator {
	a := &Aggregator{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RollupQuota recomputes the quota's performance cache and writes it back.
// Leaf quotas sum their owned opportunities; hierarchical quotas recurse
// over child quotas. Parent chains must be acyclic; a cycle aborts with
// ErrCycleDetected.
func (a *Aggregator) RollupQuota(ctx context.Context, quotaID model.QuotaID) (*model.QuotaPerformance, error) {
	quota, err := a.repo.Quota().Get(ctx, quotaID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get quota", goerr.V("id", quotaID))
	}

	figures, err := a.rollup(ctx, quota, map[model.QuotaID]bool{})
	if err != nil {
		return nil, err
	}

	attainment, riskAdjustedAttainment, err := quota.Attain(figures.actual, figures.riskAdjusted())
	if err != nil {
		return nil, err
	}

	perf := model.QuotaPerformance{
		Actual:                 figures.actual,
		Forecasted:             figures.forecasted,
		RiskAdjusted:           figures.riskAdjusted(),
		Attainment:             attainment,
		RiskAdjustedAttainment: riskAdjustedAttainment,
		CalculatedAt:           a.now().UTC(),
	}

	if _, err := a.repo.Quota().UpdatePerformance(ctx, quotaID, perf); err != nil {
		return nil, goerr.Wrap(err, "failed to write quota performance", goerr.V("id", quotaID))
	}
	return &perf, nil
}

// figures are raw sums before attainment is derived
type figures struct {
	actual        float64
	forecasted    float64
	revenueAtRisk float64
}

func (f figures) riskAdjusted() float64 {
	return f.forecasted - f.revenueAtRisk
}

func (f *figures) add(other figures) {
	f.actual += other.actual
	f.forecasted += other.forecasted
	f.revenueAtRisk += other.revenueAtRisk
}

func (a *Aggregator) rollup(ctx context.Context, quota *model.Quota, visited map[model.QuotaID]bool) (figures, error) {
	if visited[quota.ID] {
		return figures{}, goerr.Wrap(model.ErrCycleDetected, "quota parent chain forms a cycle",
			goerr.V("id", quota.ID))
	}
	visited[quota.ID] = true

	children, err := a.repo.Quota().ListChildren(ctx, quota.ID)
	if err != nil {
		return figures{}, goerr.Wrap(err, "failed to list child quotas", goerr.V("id", quota.ID))
	}

	if len(children) == 0 {
		return a.sumOpportunities(ctx, quota)
	}

	var total figures
	for _, child := range children {
		childFigures, err := a.rollup(ctx, child, visited)
		if err != nil {
			if errors.Is(err, model.ErrCycleDetected) {
				return figures{}, err
			}
			// A broken child must not abort the whole rollup
			logging.From(ctx).Warn("skipping child quota in rollup",
				"parentID", quota.ID, "childID", child.ID, "error", err.Error())
			continue
		}
		total.add(childFigures)
	}
	return total, nil
}

// sumOpportunities gathers the quota's directly-associated opportunities:
// won deals closed inside the period count as actual, open deals expected
// to close inside it count as forecasted and carry their revenue at risk.
func (a *Aggregator) sumOpportunities(ctx context.Context, quota *model.Quota) (figures, error) {
	opts := scopeFilter(quota)
	opps, err := a.repo.Opportunity().List(ctx, quota.TenantID, opts...)
	if err != nil {
		return figures{}, goerr.Wrap(err, "failed to list opportunities for quota", goerr.V("id", quota.ID))
	}

	var f figures
	for _, opp := range opps {
		switch opp.Stage.Normalize() {
		case types.StageWon:
			if opp.ClosedAt != nil && quota.Period.Contains(*opp.ClosedAt) {
				f.actual += opp.DealValue
			}
		case types.StageOpen:
			if opp.ExpectedCloseAt != nil && !quota.Period.Contains(*opp.ExpectedCloseAt) {
				continue
			}
			f.forecasted += opp.DealValue
			if opp.Evaluation != nil {
				f.revenueAtRisk += opp.Evaluation.RevenueAtRisk
			}
		}
	}
	return f, nil
}

func scopeFilter(quota *model.Quota) []interfaces.ListOpportunityOption {
	switch quota.QuotaType {
	case types.QuotaTypeUser:
		return []interfaces.ListOpportunityOption{interfaces.WithOwner(quota.TargetUserID)}
	case types.QuotaTypeTeam:
		return []interfaces.ListOpportunityOption{interfaces.WithTeam(quota.TeamID)}
	default:
		return nil
	}
}

// PortfolioRollup is the cached aggregate for a user, team or tenant
// portfolio
type PortfolioRollup struct {
	Scope                  types.RollupScope `json:"scope"`
	ScopeID                string            `json:"scope_id,omitempty"`
	AggregateRevenueAtRisk float64           `json:"aggregate_revenue_at_risk"`
	AggregateForecast      float64           `json:"aggregate_forecast"`
	AggregateDealValue     float64           `json:"aggregate_deal_value"`
	OpportunityCount       int               `json:"opportunity_count"`
	CalculatedAt           time.Time         `json:"calculated_at"`
}

// portfolioChunks bounds the parallelism of portfolio aggregation
const portfolioChunks = 4

// RollupPortfolio sums revenue at risk and deal value across the open
// opportunities in scope. Chunks are aggregated in parallel and merged.
func (a *Aggregator) RollupPortfolio(ctx context.Context, scope types.RollupScope, scopeID string, tenantID types.TenantID) (*PortfolioRollup, error) {
	var opts []interfaces.ListOpportunityOption
	switch scope {
	case types.RollupScopeUser:
		opts = append(opts, interfaces.WithOwner(scopeID))
	case types.RollupScopeTeam:
		opts = append(opts, interfaces.WithTeam(scopeID))
	case types.RollupScopeTenant:
		// tenant scope needs no extra filter
	default:
		return nil, goerr.New("unknown rollup scope", goerr.V("scope", scope))
	}

	opps, err := a.repo.Opportunity().List(ctx, tenantID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list opportunities for portfolio",
			goerr.V("scope", scope), goerr.V("scopeID", scopeID))
	}

	chunkSize := (len(opps) + portfolioChunks - 1) / portfolioChunks
	if chunkSize == 0 {
		chunkSize = 1
	}

	partials := make([]PortfolioRollup, portfolioChunks)
	eg, _ := errgroup.WithContext(ctx)
	for i := 0; i < portfolioChunks; i++ {
		start := i * chunkSize
		if start >= len(opps) {
			break
		}
		end := start + chunkSize
		if end > len(opps) {
			end = len(opps)
		}
		i, chunk := i, opps[start:end]
		eg.Go(func() error {
			for _, opp := range chunk {
				if !opp.IsOpen() {
					continue
				}
				partials[i].AggregateForecast += opp.DealValue
				partials[i].AggregateDealValue += opp.DealValue
				partials[i].OpportunityCount++
				if opp.Evaluation != nil {
					partials[i].AggregateRevenueAtRisk += opp.Evaluation.RevenueAtRisk
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &PortfolioRollup{
		Scope:        scope,
		ScopeID:      scopeID,
		CalculatedAt: a.now().UTC(),
	}
	for _, p := range partials {
		result.AggregateRevenueAtRisk += p.AggregateRevenueAtRisk
		result.AggregateForecast += p.AggregateForecast
		result.AggregateDealValue += p.AggregateDealValue
		result.OpportunityCount += p.OpportunityCount
	}
	return result, nil
}
