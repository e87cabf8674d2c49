package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// OpportunityID is a UUID-based identifier for Opportunity
type OpportunityID string

// NewOpportunityID generates a new UUID v4 OpportunityID
func NewOpportunityID() OpportunityID {
	return OpportunityID(uuid.New().String())
}

// String returns the string representation of OpportunityID
func (id OpportunityID) String() string {
	return string(id)
}

// Opportunity is the aggregate root for risk state. The current evaluation,
// early warnings and mitigation actions are embedded so a single fetch
// returns the full risk picture; history lives in separate snapshots.
type Opportunity struct {
	ID              OpportunityID          `json:"id"`
	TenantID        types.TenantID         `json:"tenant_id"`
	Name            string                 `json:"name"`
	DealValue       float64                `json:"deal_value"`
	Currency        string                 `json:"currency"`
	OwnerID         string                 `json:"owner_id,omitempty"`
	TeamID          string                 `json:"team_id,omitempty"`
	IndustryID      types.IndustryID       `json:"industry_id,omitempty"`
	OpportunityType types.OpportunityType  `json:"opportunity_type,omitempty"`
	Stage           types.OpportunityStage `json:"stage"`
	ExpectedCloseAt *time.Time             `json:"expected_close_at,omitempty"`
	ClosedAt        *time.Time             `json:"closed_at,omitempty"`

	Evaluation        *RiskEvaluation      `json:"evaluation,omitempty"`
	EarlyWarnings     []EarlyWarningSignal `json:"early_warnings,omitempty"`
	MitigationActions []MitigationAction   `json:"mitigation_actions,omitempty"`

	// EvalVersion is the optimistic concurrency token for evaluation
	// overwrites. Incremented on every successful update.
	EvalVersion int64 `json:"eval_version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks structural invariants of the opportunity
func (o *Opportunity) Validate() error {
	if err := o.TenantID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant ID")
	}
	if o.Name == "" {
		return goerr.New("opportunity name is required")
	}
	if o.DealValue < 0 {
		return goerr.New("deal value cannot be negative", goerr.V("dealValue", o.DealValue))
	}
	if !o.Stage.Normalize().IsValid() {
		return goerr.New("invalid opportunity stage", goerr.V("stage", o.Stage))
	}
	if err := o.OpportunityType.Validate(); err != nil {
		return goerr.Wrap(err, "invalid opportunity type")
	}
	return nil
}

// IsOpen reports whether the opportunity is still in play. Only open
// opportunities contribute revenue at risk to rollups.
func (o *Opportunity) IsOpen() bool {
	return o.Stage.Normalize() == types.StageOpen
}

// RiskEvaluation is the current computed risk state of one opportunity.
// It is overwritten on every evaluation run; each committed run also
// lands as an immutable RiskSnapshot, so every value this field ever
// held survives in history.
type RiskEvaluation struct {
	RiskScore     float64            `json:"risk_score"`
	RevenueAtRisk float64            `json:"revenue_at_risk"`
	Risks         []RiskContribution `json:"risks"`
	CalculatedAt  time.Time          `json:"calculated_at"`
	CalculatedBy  string             `json:"calculated_by"`
}

// Clone returns a deep copy of the evaluation
func (e *RiskEvaluation) Clone() *RiskEvaluation {
	if e == nil {
		return nil
	}
	c := *e
	c.Risks = make([]RiskContribution, len(e.Risks))
	copy(c.Risks, e.Risks)
	return &c
}

// Contribution returns the contribution record for the given risk, or nil
func (e *RiskEvaluation) Contribution(riskID types.RiskID) *RiskContribution {
	if e == nil {
		return nil
	}
	for i := range e.Risks {
		if e.Risks[i].RiskID == riskID {
			return &e.Risks[i]
		}
	}
	return nil
}

// RiskContribution is one risk's denormalized share of the evaluation
type RiskContribution struct {
	RiskID         types.RiskID             `json:"risk_id"`
	Ponderation    float64                  `json:"ponderation"`
	Confidence     float64                  `json:"confidence"`
	Contribution   float64                  `json:"contribution"`
	LifecycleState types.RiskLifecycleState `json:"lifecycle_state"`
	AcknowledgedBy string                   `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time               `json:"acknowledged_at,omitempty"`
	DismissedBy    string                   `json:"dismissed_by,omitempty"`
	DismissedAt    *time.Time               `json:"dismissed_at,omitempty"`
	Reason         string                   `json:"reason,omitempty"`
}
