package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// AddEarlyWarning attaches a manually raised early warning signal
func (uc *UseCases) AddEarlyWarning(ctx context.Context, oppID model.OpportunityID, signal model.EarlyWarningSignal) (*model.EarlyWarningSignal, error) {
	if signal.Title == "" {
		return nil, goerr.New("early warning title is required")
	}

	if signal.ID == "" {
		signal.ID = model.NewSignalID()
	}
	if signal.Status == "" {
		signal.Status = types.SignalStatusActive
	}
	if signal.RaisedAt.IsZero() {
		signal.RaisedAt = time.Now().UTC()
	}

	if err := uc.repo.Opportunity().AppendEarlyWarnings(ctx, oppID, []model.EarlyWarningSignal{signal}); err != nil {
		return nil, goerr.Wrap(err, "failed to append early warning", goerr.V("opportunityID", oppID))
	}
	return &signal, nil
}

// AcknowledgeEarlyWarning marks an active signal as acknowledged
func (uc *UseCases) AcknowledgeEarlyWarning(ctx context.Context, oppID model.OpportunityID, signalID model.SignalID, by string) (*model.EarlyWarningSignal, error) {
	return uc.transitionSignal(ctx, oppID, signalID, func(s *model.EarlyWarningSignal, now time.Time) {
		s.Status = types.SignalStatusAcknowledged
		s.AcknowledgedBy = by
		s.AcknowledgedAt = &now
	})
}

// ResolveEarlyWarning marks a signal as resolved
func (uc *UseCases) ResolveEarlyWarning(ctx context.Context, oppID model.OpportunityID, signalID model.SignalID, by string) (*model.EarlyWarningSignal, error) {
	return uc.transitionSignal(ctx, oppID, signalID, func(s *model.EarlyWarningSignal, now time.Time) {
		s.Status = types.SignalStatusResolved
		s.ResolvedBy = by
		s.ResolvedAt = &now
	})
}

func (uc *UseCases) transitionSignal(ctx context.Context, oppID model.OpportunityID, signalID model.SignalID, apply func(*model.EarlyWarningSignal, time.Time)) (*model.EarlyWarningSignal, error) {
	opp, err := uc.repo.Opportunity().Get(ctx, oppID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get opportunity", goerr.V("opportunityID", oppID))
	}

	for _, s := range opp.EarlyWarnings {
		if s.ID != signalID {
			continue
		}
		apply(&s, time.Now().UTC())
		if err := uc.repo.Opportunity().UpdateEarlyWarning(ctx, oppID, s); err != nil {
			return nil, goerr.Wrap(err, "failed to update early warning",
				goerr.V("opportunityID", oppID), goerr.V("signalID", signalID))
		}
		return &s, nil
	}

	return nil, goerr.Wrap(model.ErrNotFound, "early warning not found",
		goerr.V("opportunityID", oppID), goerr.V("signalID", signalID))
}

// AddMitigationAction attaches a mitigation action to an opportunity
func (uc *UseCases) AddMitigationAction(ctx context.Context, oppID model.OpportunityID, action model.MitigationAction) (*model.MitigationAction, error) {
	if action.Title == "" {
		return nil, goerr.New("mitigation action title is required")
	}

	if action.ID == "" {
		action.ID = model.NewActionID()
	}
	if action.Status == "" {
		action.Status = types.ActionStatusPlanned
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now().UTC()
	}

	if err := uc.repo.Opportunity().AppendMitigationAction(ctx, oppID, action); err != nil {
		return nil, goerr.Wrap(err, "failed to append mitigation action", goerr.V("opportunityID", oppID))
	}
	return &action, nil
}

// UpdateMitigationActionStatus moves a mitigation action through its
// status lifecycle. Completion stamps CompletedAt.
func (uc *UseCases) UpdateMitigationActionStatus(ctx context.Context, oppID model.OpportunityID, actionID model.ActionID, status types.ActionStatus) (*model.MitigationAction, error) {
	if !status.IsValid() {
		return nil, goerr.New("invalid action status", goerr.V("status", status))
	}

	opp, err := uc.repo.Opportunity().Get(ctx, oppID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get opportunity", goerr.V("opportunityID", oppID))
	}

	for _, a := range opp.MitigationActions {
		if a.ID != actionID {
			continue
		}
		a.Status = status
		if status == types.ActionStatusCompleted {
			now := time.Now().UTC()
			a.CompletedAt = &now
		}
		if err := uc.repo.Opportunity().UpdateMitigationAction(ctx, oppID, a); err != nil {
			return nil, goerr.Wrap(err, "failed to update mitigation action",
				goerr.V("opportunityID", oppID), goerr.V("actionID", actionID))
		}
		return &a, nil
	}

	return nil, goerr.Wrap(model.ErrNotFound, "mitigation action not found",
		goerr.V("opportunityID", oppID), goerr.V("actionID", actionID))
}
