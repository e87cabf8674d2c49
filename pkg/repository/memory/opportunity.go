package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

type opportunityRepository struct {
	mu            sync.Mutex
	opportunities map[model.OpportunityID]*model.Opportunity

	// snapshot store for the atomic append in UpdateEvaluation
	snapshots *snapshotRepository
}

func newOpportunityRepository(snapshots *snapshotRepository) *opportunityRepository {
	return &opportunityRepository{
		opportunities: make(map[model.OpportunityID]*model.Opportunity),
		snapshots:     snapshots,
	}
}

func cloneOpportunity(o *model.Opportunity) *model.Opportunity {
	c := *o
	c.Evaluation = o.Evaluation.Clone()
	c.EarlyWarnings = make([]model.EarlyWarningSignal, len(o.EarlyWarnings))
	copy(c.EarlyWarnings, o.EarlyWarnings)
	c.MitigationActions = make([]model.MitigationAction, len(o.MitigationActions))
	copy(c.MitigationActions, o.MitigationActions)
	return &c
}

func (r *opportunityRepository) Create(ctx context.Context, opp *model.Opportunity) (*model.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := cloneOpportunity(opp)
	if created.ID == "" {
		created.ID = model.NewOpportunityID()
	}
	if _, exists := r.opportunities[created.ID]; exists {
		return nil, goerr.New("opportunity already exists", goerr.V("id", created.ID))
	}

	now := time.Now().UTC()
	created.Stage = created.Stage.Normalize()
	created.EvalVersion = 0
	created.CreatedAt = now
	created.UpdatedAt = now

	r.opportunities[created.ID] = created
	return cloneOpportunity(created), nil
}

func (r *opportunityRepository) Get(ctx context.Context, id model.OpportunityID) (*model.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	opp, exists := r.opportunities[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
	}
	return cloneOpportunity(opp), nil
}

func (r *opportunityRepository) List(ctx context.Context, tenantID types.TenantID, opts ...interfaces.ListOpportunityOption) ([]*model.Opportunity, error) {
	cfg := interfaces.BuildListOpportunityConfig(opts...)

	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.Opportunity
	for _, opp := range r.opportunities {
		if opp.TenantID != tenantID {
			continue
		}
		if cfg.OwnerID() != nil && opp.OwnerID != *cfg.OwnerID() {
			continue
		}
		if cfg.TeamID() != nil && opp.TeamID != *cfg.TeamID() {
			continue
		}
		if cfg.Stage() != nil && opp.Stage.Normalize() != *cfg.Stage() {
			continue
		}
		result = append(result, cloneOpportunity(opp))
	}
	return result, nil
}

func (r *opportunityRepository) Update(ctx context.Context, opp *model.Opportunity) (*model.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.opportunities[opp.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", opp.ID))
	}

	updated := cloneOpportunity(opp)
	// Evaluation state is owned by UpdateEvaluation
	updated.Evaluation = existing.Evaluation.Clone()
	updated.EvalVersion = existing.EvalVersion
	updated.EarlyWarnings = make([]model.EarlyWarningSignal, len(existing.EarlyWarnings))
	copy(updated.EarlyWarnings, existing.EarlyWarnings)
	updated.MitigationActions = make([]model.MitigationAction, len(existing.MitigationActions))
	copy(updated.MitigationActions, existing.MitigationActions)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.opportunities[updated.ID] = updated
	return cloneOpportunity(updated), nil
}

func (r *opportunityRepository) UpdateEvaluation(ctx context.Context, id model.OpportunityID, expectedVersion int64, eval *model.RiskEvaluation, snapshot *model.RiskSnapshot) (*model.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.opportunities[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
	}
	if existing.EvalVersion != expectedVersion {
		return nil, goerr.Wrap(model.ErrConcurrentModification, "evaluation version mismatch",
			goerr.V("id", id),
			goerr.V("expected", expectedVersion),
			goerr.V("actual", existing.EvalVersion))
	}

	// Append the snapshot before touching the opportunity so a failed
	// append leaves the stored evaluation and version untouched
	if snapshot != nil {
		if _, err := r.snapshots.Append(ctx, snapshot); err != nil {
			return nil, goerr.Wrap(err, "failed to append snapshot", goerr.V("id", id))
		}
	}

	existing.Evaluation = eval.Clone()
	existing.EvalVersion++
	existing.UpdatedAt = time.Now().UTC()
	return cloneOpportunity(existing), nil
}

func (r *opportunityRepository) AppendEarlyWarnings(ctx context.Context, id model.OpportunityID, signals []model.EarlyWarningSignal) error {
	if len(signals) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.opportunities[id]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
	}

	existing.EarlyWarnings = append(existing.EarlyWarnings, signals...)
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *opportunityRepository) UpdateEarlyWarning(ctx context.Context, id model.OpportunityID, signal model.EarlyWarningSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.opportunities[id]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
	}

	for i := range existing.EarlyWarnings {
		if existing.EarlyWarnings[i].ID == signal.ID {
			existing.EarlyWarnings[i] = signal
			existing.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return goerr.Wrap(model.ErrNotFound, "early warning not found",
		goerr.V("opportunityID", id), goerr.V("signalID", signal.ID))
}

func (r *opportunityRepository) AppendMitigationAction(ctx context.Context, id model.OpportunityID, action model.MitigationAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.opportunities[id]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
	}

	existing.MitigationActions = append(existing.MitigationActions, action)
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *opportunityRepository) UpdateMitigationAction(ctx context.Context, id model.OpportunityID, action model.MitigationAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.opportunities[id]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
	}

	for i := range existing.MitigationActions {
		if existing.MitigationActions[i].ID == action.ID {
			existing.MitigationActions[i] = action
			existing.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return goerr.Wrap(model.ErrNotFound, "mitigation action not found",
		goerr.V("opportunityID", id), goerr.V("actionID", action.ID))
}

func (r *opportunityRepository) Delete(ctx context.Context, id model.OpportunityID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.opportunities[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
	}

	delete(r.opportunities, id)
	return nil
}
