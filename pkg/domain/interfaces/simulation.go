package interfaces

import (
	"context"

	"github.com/revlens-lab/revlens/pkg/domain/model"
)

// SimulationRepository defines data access for risk simulations.
// Simulations are immutable once created.
type SimulationRepository interface {
	// Create stores a new simulation result
	Create(ctx context.Context, sim *model.RiskSimulation) (*model.RiskSimulation, error)

	// Get retrieves a simulation by ID
	Get(ctx context.Context, id model.SimulationID) (*model.RiskSimulation, error)

	// ListByOpportunity retrieves all simulations of an opportunity, newest first
	ListByOpportunity(ctx context.Context, oppID model.OpportunityID) ([]*model.RiskSimulation, error)
}
