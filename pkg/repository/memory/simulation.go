package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

type simulationRepository struct {
	mu          sync.RWMutex
	simulations map[model.SimulationID]*model.RiskSimulation
}

func newSimulationRepository() *simulationRepository {
	return &simulationRepository{
		simulations: make(map[model.SimulationID]*model.RiskSimulation),
	}
}

func cloneSimulation(s *model.RiskSimulation) *model.RiskSimulation {
	c := *s
	c.Modifications.AddRisks = append([]model.SimulatedRisk(nil), s.Modifications.AddRisks...)
	c.Modifications.RemoveRisks = append([]types.RiskID(nil), s.Modifications.RemoveRisks...)
	if s.Modifications.ConfidenceOverrides != nil {
		c.Modifications.ConfidenceOverrides = make(map[types.RiskID]float64, len(s.Modifications.ConfidenceOverrides))
		for k, v := range s.Modifications.ConfidenceOverrides {
			c.Modifications.ConfidenceOverrides[k] = v
		}
	}
	if s.Modifications.PonderationOverrides != nil {
		c.Modifications.PonderationOverrides = make(map[types.RiskID]float64, len(s.Modifications.PonderationOverrides))
		for k, v := range s.Modifications.PonderationOverrides {
			c.Modifications.PonderationOverrides[k] = v
		}
	}
	return &c
}

func (r *simulationRepository) Create(ctx context.Context, sim *model.RiskSimulation) (*model.RiskSimulation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := cloneSimulation(sim)
	if created.ID == "" {
		created.ID = model.NewSimulationID()
	}
	if _, exists := r.simulations[created.ID]; exists {
		return nil, goerr.New("simulation already exists", goerr.V("id", created.ID))
	}
	created.CreatedAt = time.Now().UTC()

	r.simulations[created.ID] = created
	return cloneSimulation(created), nil
}

func (r *simulationRepository) Get(ctx context.Context, id model.SimulationID) (*model.RiskSimulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.simulations[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "simulation not found", goerr.V("id", id))
	}
	return cloneSimulation(s), nil
}

func (r *simulationRepository) ListByOpportunity(ctx context.Context, oppID model.OpportunityID) ([]*model.RiskSimulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.RiskSimulation
	for _, s := range r.simulations {
		if s.OpportunityID == oppID {
			result = append(result, cloneSimulation(s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
