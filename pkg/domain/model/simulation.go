package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// SimulationID is a UUID-based identifier for RiskSimulation
type SimulationID string

// NewSimulationID generates a new UUID v4 SimulationID
func NewSimulationID() SimulationID {
	return SimulationID(uuid.New().String())
}

// RiskSimulation is a hypothetical what-if result for one opportunity.
// Immutable once created; many simulations may exist per opportunity.
type RiskSimulation struct {
	ID            SimulationID            `json:"id"`
	OpportunityID OpportunityID           `json:"opportunity_id"`
	TenantID      types.TenantID          `json:"tenant_id"`
	Modifications SimulationModifications `json:"modifications"`
	Results       SimulationResults       `json:"results"`
	CreatedBy     string                  `json:"created_by"`
	CreatedAt     time.Time               `json:"created_at"`
}

// SimulationModifications describes the deltas applied to the
// opportunity's inputs before rescoring
type SimulationModifications struct {
	AddRisks    []SimulatedRisk `json:"add_risks,omitempty"`
	RemoveRisks []types.RiskID  `json:"remove_risks,omitempty"`
	// ConfidenceOverrides replaces detected confidence per risk
	ConfidenceOverrides map[types.RiskID]float64 `json:"confidence_overrides,omitempty"`
	// PonderationOverrides replaces the resolved ponderation per risk
	PonderationOverrides map[types.RiskID]float64 `json:"ponderation_overrides,omitempty"`
	// DealValueOverride replaces the deal value when non-nil
	DealValueOverride *float64 `json:"deal_value_override,omitempty"`
}

// SimulatedRisk is a hypothetical risk injected into a simulation
type SimulatedRisk struct {
	RiskID      types.RiskID `json:"risk_id"`
	Confidence  float64      `json:"confidence"`
	Ponderation float64      `json:"ponderation"`
}

// SimulationResults holds the rescored figures next to the baseline
type SimulationResults struct {
	RiskScore             float64 `json:"risk_score"`
	RevenueAtRisk         float64 `json:"revenue_at_risk"`
	BaselineRiskScore     float64 `json:"baseline_risk_score"`
	BaselineRevenueAtRisk float64 `json:"baseline_revenue_at_risk"`
}
