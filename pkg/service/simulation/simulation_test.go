package simulation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/repository/memory"
	"github.com/revlens-lab/revlens/pkg/service/simulation"
)

func evaluatedOpportunity(t *testing.T, repo *memory.Memory) *model.Opportunity {
	t.Helper()
	ctx := context.Background()

	opp, err := repo.Opportunity().Create(ctx, &model.Opportunity{
		TenantID:  "acme",
		Name:      "Acme renewal",
		DealValue: 100000,
		Stage:     types.StageOpen,
	})
	if err != nil {
		t.Fatalf("failed to create opportunity: %v", err)
	}

	opp, err = repo.Opportunity().UpdateEvaluation(ctx, opp.ID, 0, &model.RiskEvaluation{
		RiskScore:     0.2,
		RevenueAtRisk: 20000,
		Risks: []model.RiskContribution{
			{
				RiskID:         "stalled-procurement",
				Ponderation:    0.4,
				Confidence:     0.5,
				Contribution:   0.2,
				LifecycleState: types.RiskStateIdentified,
			},
		},
		CalculatedAt: time.Now().UTC(),
	}, nil)
	if err != nil {
		t.Fatalf("failed to set evaluation: %v", err)
	}
	return opp
}

func TestSimulationRemoveRisk(t *testing.T) {
	repo := memory.New()
	runner := simulation.New(repo)
	ctx := context.Background()
	opp := evaluatedOpportunity(t, repo)

	sim, err := runner.Run(ctx, opp.ID, model.SimulationModifications{
		RemoveRisks: []types.RiskID{"stalled-procurement"},
	}, "user-1")
	gt.NoError(t, err).Required()

	gt.Value(t, sim.Results.RiskScore).Equal(0.0)
	gt.Value(t, sim.Results.RevenueAtRisk).Equal(0.0)
	gt.Value(t, sim.Results.BaselineRiskScore).Equal(0.2)
	gt.Value(t, sim.Results.BaselineRevenueAtRisk).Equal(20000.0)

	// the stored evaluation is untouched
	stored, err := repo.Opportunity().Get(ctx, opp.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Evaluation.RiskScore).Equal(0.2)
}

func TestSimulationAddRisk(t *testing.T) {
	repo := memory.New()
	runner := simulation.New(repo)
	ctx := context.Background()
	opp := evaluatedOpportunity(t, repo)

	sim, err := runner.Run(ctx, opp.ID, model.SimulationModifications{
		AddRisks: []model.SimulatedRisk{
			{RiskID: "champion-left", Confidence: 0.5, Ponderation: 0.6},
		},
	}, "user-1")
	gt.NoError(t, err).Required()

	// 0.2 existing + 0.3 added
	gt.Value(t, sim.Results.RiskScore).Equal(0.5)
	gt.Value(t, sim.Results.RevenueAtRisk).Equal(50000.0)
}

func TestSimulationOverrides(t *testing.T) {
	repo := memory.New()
	runner := simulation.New(repo)
	ctx := context.Background()
	opp := evaluatedOpportunity(t, repo)

	sim, err := runner.Run(ctx, opp.ID, model.SimulationModifications{
		ConfidenceOverrides: map[types.RiskID]float64{
			"stalled-procurement": 1.0,
		},
		PonderationOverrides: map[types.RiskID]float64{
			"stalled-procurement": 0.5,
		},
	}, "user-1")
	gt.NoError(t, err).Required()

	gt.Value(t, sim.Results.RiskScore).Equal(0.5)
	gt.Value(t, sim.Results.RevenueAtRisk).Equal(50000.0)
}

func TestSimulationDealValueOverride(t *testing.T) {
	repo := memory.New()
	runner := simulation.New(repo)
	ctx := context.Background()
	opp := evaluatedOpportunity(t, repo)

	bigger := 500000.0
	sim, err := runner.Run(ctx, opp.ID, model.SimulationModifications{
		DealValueOverride: &bigger,
	}, "user-1")
	gt.NoError(t, err).Required()

	gt.Value(t, sim.Results.RiskScore).Equal(0.2)
	gt.Value(t, sim.Results.RevenueAtRisk).Equal(100000.0)
}

func TestSimulationIsStored(t *testing.T) {
	repo := memory.New()
	runner := simulation.New(repo)
	ctx := context.Background()
	opp := evaluatedOpportunity(t, repo)

	sim, err := runner.Run(ctx, opp.ID, model.SimulationModifications{}, "user-1")
	gt.NoError(t, err).Required()

	stored, err := repo.Simulation().Get(ctx, sim.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.OpportunityID).Equal(opp.ID)
	gt.Value(t, stored.CreatedBy).Equal("user-1")

	list, err := repo.Simulation().ListByOpportunity(ctx, opp.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, len(list)).Equal(1)
}

func TestSimulationOpportunityNotFound(t *testing.T) {
	repo := memory.New()
	runner := simulation.New(repo)
	ctx := context.Background()

	_, err := runner.Run(ctx, model.NewOpportunityID(), model.SimulationModifications{}, "user-1")
	gt.True(t, errors.Is(err, model.ErrNotFound))
}
