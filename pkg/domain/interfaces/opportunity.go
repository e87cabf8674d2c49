package interfaces

import (
	"context"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// OpportunityRepository defines data access for opportunities, the
// aggregate root carrying the embedded evaluation, early warnings and
// mitigation actions.
type OpportunityRepository interface {
	// Create creates a new opportunity
	Create(ctx context.Context, opp *model.Opportunity) (*model.Opportunity, error)

	// Get retrieves an opportunity by ID
	Get(ctx context.Context, id model.OpportunityID) (*model.Opportunity, error)

	// List retrieves opportunities of a tenant with optional filtering
	List(ctx context.Context, tenantID types.TenantID, opts ...ListOpportunityOption) ([]*model.Opportunity, error)

	// Update updates opportunity metadata (name, deal value, stage, ...).
	// The embedded evaluation is not touched; use UpdateEvaluation.
	Update(ctx context.Context, opp *model.Opportunity) (*model.Opportunity, error)

	// UpdateEvaluation overwrites the embedded evaluation iff the stored
	// EvalVersion equals expectedVersion, then increments it. Returns
	// model.ErrConcurrentModification on a version mismatch. A non-nil
	// snapshot is appended in the same atomic commit as the overwrite,
	// so an evaluation run can never land without its history entry.
	// Lifecycle transitions pass nil; they rewrite the current
	// evaluation in place and leave no snapshot behind.
	UpdateEvaluation(ctx context.Context, id model.OpportunityID, expectedVersion int64, eval *model.RiskEvaluation, snapshot *model.RiskSnapshot) (*model.Opportunity, error)

	// AppendEarlyWarnings appends early warning signals to the opportunity
	AppendEarlyWarnings(ctx context.Context, id model.OpportunityID, signals []model.EarlyWarningSignal) error

	// UpdateEarlyWarning replaces the early warning with the same ID
	UpdateEarlyWarning(ctx context.Context, id model.OpportunityID, signal model.EarlyWarningSignal) error

	// AppendMitigationAction appends a mitigation action to the opportunity
	AppendMitigationAction(ctx context.Context, id model.OpportunityID, action model.MitigationAction) error

	// UpdateMitigationAction replaces the mitigation action with the same ID
	UpdateMitigationAction(ctx context.Context, id model.OpportunityID, action model.MitigationAction) error

	// Delete deletes an opportunity by ID
	Delete(ctx context.Context, id model.OpportunityID) error
}

// ListOpportunityOption is a functional option for filtering opportunities
type ListOpportunityOption func(*listOpportunityConfig)

type listOpportunityConfig struct {
	ownerID *string
	teamID  *string
	stage   *types.OpportunityStage
}

// WithOwner filters opportunities by owner user ID
func WithOwner(ownerID string) ListOpportunityOption {
	return func(c *listOpportunityConfig) {
		c.ownerID = &ownerID
	}
}

// WithTeam filters opportunities by team ID
func WithTeam(teamID string) ListOpportunityOption {
	return func(c *listOpportunityConfig) {
		c.teamID = &teamID
	}
}

// WithStage filters opportunities by stage
func WithStage(stage types.OpportunityStage) ListOpportunityOption {
	return func(c *listOpportunityConfig) {
		c.stage = &stage
	}
}

// BuildListOpportunityConfig builds a listOpportunityConfig from options
func BuildListOpportunityConfig(opts ...ListOpportunityOption) *listOpportunityConfig {
	cfg := &listOpportunityConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// OwnerID returns the owner filter value, or nil if not set
func (c *listOpportunityConfig) OwnerID() *string {
	return c.ownerID
}

// TeamID returns the team filter value, or nil if not set
func (c *listOpportunityConfig) TeamID() *string {
	return c.teamID
}

// Stage returns the stage filter value, or nil if not set
func (c *listOpportunityConfig) Stage() *types.OpportunityStage {
	return c.stage
}
