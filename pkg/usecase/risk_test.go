package usecase_test

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
	"github.com/revlens-lab/revlens/pkg/usecase"
)

func seedEvaluatedOpportunity(t *testing.T, repo interfaces.Repository) *model.Opportunity {
	t.Helper()
	ctx := context.Background()

	opp, err := repo.Opportunity().Create(ctx, &model.Opportunity{
		TenantID:  "acme",
		Name:      "Acme renewal FY26",
		DealValue: 100000,
		Currency:  "USD",
		Stage:     types.StageOpen,
	})
	gt.NoError(t, err).Required()

	updated, err := repo.Opportunity().UpdateEvaluation(ctx, opp.ID, 0, &model.RiskEvaluation{
		RiskScore:     0.2,
		RevenueAtRisk: 20000,
		Risks: []model.RiskContribution{
			{
				RiskID:         "missing-sponsor",
				Ponderation:    0.4,
				Confidence:     0.5,
				Contribution:   0.2,
				LifecycleState: types.RiskStateIdentified,
			},
		},
		CalculatedAt: time.Now().UTC(),
		CalculatedBy: "evaluation-writer",
	}, nil)
	gt.NoError(t, err).Required()
	return updated
}

func TestAcknowledgeRisk(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)

	opp := seedEvaluatedOpportunity(t, repo)

	updated, err := uc.AcknowledgeRisk(ctx, opp.ID, "missing-sponsor", "user-7", "champion is aware")
	gt.NoError(t, err).Required()

	risk := updated.Evaluation.Risks[0]
	gt.Value(t, risk.LifecycleState).Equal(types.RiskStateAcknowledged)
	gt.Value(t, risk.AcknowledgedBy).Equal("user-7")
	gt.Value(t, risk.AcknowledgedAt).NotNil()
	gt.Value(t, risk.Reason).Equal("champion is aware")
	gt.Value(t, updated.EvalVersion).Equal(int64(2))
}

func TestDismissRisk(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)

	opp := seedEvaluatedOpportunity(t, repo)

	updated, err := uc.DismissRisk(ctx, opp.ID, "missing-sponsor", "user-7", "false positive")
	gt.NoError(t, err).Required()

	risk := updated.Evaluation.Risks[0]
	gt.Value(t, risk.LifecycleState).Equal(types.RiskStateClosed)
	gt.Value(t, risk.DismissedBy).Equal("user-7")
	gt.Value(t, risk.DismissedAt).NotNil()

	// closed risks keep the contribution listed for audit
	gt.Array(t, updated.Evaluation.Risks).Length(1)
}

func TestDismissRiskRecomputesFigures(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)

	opp := seedEvaluatedOpportunity(t, repo)

	updated, err := uc.DismissRisk(ctx, opp.ID, "missing-sponsor", "user-7", "false positive")
	gt.NoError(t, err).Required()

	// the sole contributing risk is closed, so nothing is at risk anymore
	gt.Value(t, updated.Evaluation.RiskScore).Equal(0.0)
	gt.Value(t, updated.Evaluation.RevenueAtRisk).Equal(0.0)

	stored, err := repo.Opportunity().Get(ctx, opp.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Evaluation.RiskScore).Equal(0.0)
	gt.Value(t, stored.Evaluation.RevenueAtRisk).Equal(0.0)
}

func TestAcknowledgeRiskKeepsFigures(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)

	opp := seedEvaluatedOpportunity(t, repo)

	// acknowledged risks still count toward the score
	updated, err := uc.AcknowledgeRisk(ctx, opp.ID, "missing-sponsor", "user-7", "champion is aware")
	gt.NoError(t, err).Required()
	gt.Value(t, updated.Evaluation.RiskScore).Equal(0.2)
	gt.Value(t, updated.Evaluation.RevenueAtRisk).Equal(20000.0)
}

func TestTransitionUnknownRisk(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)

	opp := seedEvaluatedOpportunity(t, repo)

	_, err := uc.AcknowledgeRisk(ctx, opp.ID, "no-such-risk", "user-7", "")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrNotFound))
}

func TestTransitionWithoutEvaluation(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)

	opp, err := repo.Opportunity().Create(ctx, &model.Opportunity{
		TenantID: "acme",
		Name:     "fresh deal",
		Stage:    types.StageOpen,
	})
	gt.NoError(t, err).Required()

	_, err = uc.AcknowledgeRisk(ctx, opp.ID, "missing-sponsor", "user-7", "")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrNotFound))
}
