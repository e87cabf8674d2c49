package simulation

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/service/evaluation"
)

// Runner rescoring what-if scenarios for one opportunity. A run never
// touches the opportunity's stored evaluation; the result is persisted as
// an immutable RiskSimulation.
type Runner struct {
	repo interfaces.Repository
	now  func() time.Time
}

type Option func(*Runner)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *Runner {
	r := &Runner{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies the modifications to a copy of the opportunity's current
// risk inputs, rescores with the evaluation formula, and stores the
// result next to the unmodified baseline.
func (r *Runner) Run(ctx context.Context, oppID model.OpportunityID, mods model.SimulationModifications, createdBy string) (*model.RiskSimulation, error) {
	opp, err := r.repo.Opportunity().Get(ctx, oppID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get opportunity", goerr.V("id", oppID))
	}

	baseline := opp.Evaluation
	var baselineScore, baselineRaR float64
	if baseline != nil {
		baselineScore = baseline.RiskScore
		baselineRaR = baseline.RevenueAtRisk
	}

	risks := modifiedRisks(baseline, mods)
	score := evaluation.Score(risks)

	dealValue := opp.DealValue
	if mods.DealValueOverride != nil {
		dealValue = *mods.DealValueOverride
	}

	sim := &model.RiskSimulation{
		OpportunityID: oppID,
		TenantID:      opp.TenantID,
		Modifications: mods,
		Results: model.SimulationResults{
			RiskScore:             score,
			RevenueAtRisk:         dealValue * score,
			BaselineRiskScore:     baselineScore,
			BaselineRevenueAtRisk: baselineRaR,
		},
		CreatedBy: createdBy,
		CreatedAt: r.now().UTC(),
	}

	stored, err := r.repo.Simulation().Create(ctx, sim)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store simulation", goerr.V("opportunityID", oppID))
	}
	return stored, nil
}

// modifiedRisks builds the hypothetical contribution set: current risks
// minus removals, with per-risk overrides applied, plus injected risks
func modifiedRisks(baseline *model.RiskEvaluation, mods model.SimulationModifications) []model.RiskContribution {
	removed := make(map[types.RiskID]bool, len(mods.RemoveRisks))
	for _, id := range mods.RemoveRisks {
		removed[id] = true
	}

	var risks []model.RiskContribution
	if baseline != nil {
		for _, risk := range baseline.Risks {
			if removed[risk.RiskID] {
				continue
			}
			if confidence, ok := mods.ConfidenceOverrides[risk.RiskID]; ok {
				risk.Confidence = confidence
			}
			if ponderation, ok := mods.PonderationOverrides[risk.RiskID]; ok {
				risk.Ponderation = ponderation
			}
			risk.Contribution = risk.Confidence * risk.Ponderation
			risks = append(risks, risk)
		}
	}

	for _, add := range mods.AddRisks {
		risks = append(risks, model.RiskContribution{
			RiskID:         add.RiskID,
			Ponderation:    add.Ponderation,
			Confidence:     add.Confidence,
			Contribution:   add.Confidence * add.Ponderation,
			LifecycleState: types.RiskStateIdentified,
		})
	}
	return risks
}
