package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// Simulate runs a what-if scenario against an opportunity without touching
// its stored evaluation and records the immutable result
func (uc *UseCases) Simulate(ctx context.Context, oppID model.OpportunityID, mods model.SimulationModifications, createdBy string) (*model.RiskSimulation, error) {
	return uc.simulator.Run(ctx, oppID, mods, createdBy)
}

// GetSimulation retrieves a stored simulation by ID
func (uc *UseCases) GetSimulation(ctx context.Context, id model.SimulationID) (*model.RiskSimulation, error) {
	sim, err := uc.repo.Simulation().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get simulation", goerr.V("simulationID", id))
	}
	return sim, nil
}

// ListSimulations lists the simulations run against an opportunity
func (uc *UseCases) ListSimulations(ctx context.Context, oppID model.OpportunityID) ([]*model.RiskSimulation, error) {
	sims, err := uc.repo.Simulation().ListByOpportunity(ctx, oppID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list simulations", goerr.V("opportunityID", oppID))
	}
	return sims, nil
}

// CalculateBenchmark recomputes and caches the benchmark for the scope
func (uc *UseCases) CalculateBenchmark(ctx context.Context, tenantID types.TenantID, industryID types.IndustryID, period model.QuotaPeriod) (*model.Benchmark, error) {
	return uc.calculator.Calculate(ctx, tenantID, industryID, period)
}

// GetBenchmark reads the cached benchmark for the scope
func (uc *UseCases) GetBenchmark(ctx context.Context, tenantID types.TenantID, industryID types.IndustryID, period model.QuotaPeriod) (*model.Benchmark, error) {
	bm, err := uc.repo.Benchmark().Get(ctx, tenantID, industryID, period)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get benchmark", goerr.V("tenantID", tenantID))
	}
	return bm, nil
}
