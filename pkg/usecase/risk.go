package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/service/evaluation"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
)

// lifecycle transitions go through the same versioned write path as
// evaluation runs, so a re-evaluation racing an acknowledge cannot clobber
// either side. Bounded retries, same as the evaluation writer.
const maxLifecycleAttempts = 3

// Evaluate recomputes the opportunity's risk evaluation
func (uc *UseCases) Evaluate(ctx context.Context, oppID model.OpportunityID) (*model.RiskEvaluation, error) {
	return uc.evaluator.Evaluate(ctx, oppID)
}

// AcknowledgeRisk marks a detected risk as acknowledged by a user
func (uc *UseCases) AcknowledgeRisk(ctx context.Context, oppID model.OpportunityID, riskID types.RiskID, by, reason string) (*model.Opportunity, error) {
	return uc.transitionRisk(ctx, oppID, riskID, func(c *model.RiskContribution, now time.Time) {
		c.LifecycleState = types.RiskStateAcknowledged
		c.AcknowledgedBy = by
		c.AcknowledgedAt = &now
		c.Reason = reason
	})
}

// DismissRisk closes a detected risk so it no longer contributes to the
// score. The contribution stays listed for audit.
func (uc *UseCases) DismissRisk(ctx context.Context, oppID model.OpportunityID, riskID types.RiskID, by, reason string) (*model.Opportunity, error) {
	return uc.transitionRisk(ctx, oppID, riskID, func(c *model.RiskContribution, now time.Time) {
		c.LifecycleState = types.RiskStateClosed
		c.DismissedBy = by
		c.DismissedAt = &now
		c.Reason = reason
	})
}

// MitigateRisk marks a detected risk as mitigated
func (uc *UseCases) MitigateRisk(ctx context.Context, oppID model.OpportunityID, riskID types.RiskID, by, reason string) (*model.Opportunity, error) {
	return uc.transitionRisk(ctx, oppID, riskID, func(c *model.RiskContribution, now time.Time) {
		c.LifecycleState = types.RiskStateMitigated
		c.AcknowledgedBy = by
		c.AcknowledgedAt = &now
		c.Reason = reason
	})
}

// AcceptRisk marks a detected risk as accepted. Accepted risks keep their
// state across re-evaluations and are excluded from the score.
func (uc *UseCases) AcceptRisk(ctx context.Context, oppID model.OpportunityID, riskID types.RiskID, by, reason string) (*model.Opportunity, error) {
	return uc.transitionRisk(ctx, oppID, riskID, func(c *model.RiskContribution, now time.Time) {
		c.LifecycleState = types.RiskStateAccepted
		c.AcknowledgedBy = by
		c.AcknowledgedAt = &now
		c.Reason = reason
	})
}

func (uc *UseCases) transitionRisk(ctx context.Context, oppID model.OpportunityID, riskID types.RiskID, apply func(*model.RiskContribution, time.Time)) (*model.Opportunity, error) {
	logger := logging.From(ctx)
	var lastErr error

	for attempt := 0; attempt < maxLifecycleAttempts; attempt++ {
		opp, err := uc.repo.Opportunity().Get(ctx, oppID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get opportunity", goerr.V("opportunityID", oppID))
		}
		if opp.Evaluation == nil {
			return nil, goerr.Wrap(model.ErrNotFound, "opportunity has no evaluation",
				goerr.V("opportunityID", oppID))
		}

		eval := opp.Evaluation.Clone()
		found := false
		for i := range eval.Risks {
			if eval.Risks[i].RiskID != riskID {
				continue
			}
			apply(&eval.Risks[i], time.Now().UTC())
			found = true
			break
		}
		if !found {
			return nil, goerr.Wrap(model.ErrNotFound, "risk not present on opportunity",
				goerr.V("opportunityID", oppID), goerr.V("riskID", riskID))
		}

		// A dismissed or accepted risk drops out of the score, so the
		// stored figures must be recomputed with the new lifecycle states
		eval.RiskScore = evaluation.Score(eval.Risks)
		eval.RevenueAtRisk = opp.DealValue * eval.RiskScore

		updated, err := uc.repo.Opportunity().UpdateEvaluation(ctx, oppID, opp.EvalVersion, eval, nil)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, model.ErrConcurrentModification) {
			return nil, goerr.Wrap(err, "failed to update evaluation", goerr.V("opportunityID", oppID))
		}

		lastErr = err
		logger.Warn("lifecycle transition lost version race, retrying",
			"opportunityID", oppID, "riskID", riskID, "attempt", attempt+1)
	}

	return nil, goerr.Wrap(lastErr, "lifecycle transition retries exhausted",
		goerr.V("opportunityID", oppID), goerr.V("riskID", riskID))
}
