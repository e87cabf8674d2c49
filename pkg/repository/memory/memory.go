package memory

import (
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-memory repository for development and tests. It mirrors
// the Firestore implementation's semantics, including the optimistic
// concurrency check on evaluation overwrites.
type Memory struct {
	catalog     *catalogRepository
	opportunity *opportunityRepository
	snapshot    *snapshotRepository
	quota       *quotaRepository
	simulation  *simulationRepository
	benchmark   *benchmarkRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	snapshot := newSnapshotRepository()
	return &Memory{
		catalog:     newCatalogRepository(),
		opportunity: newOpportunityRepository(snapshot),
		snapshot:    snapshot,
		quota:       newQuotaRepository(),
		simulation:  newSimulationRepository(),
		benchmark:   newBenchmarkRepository(),
	}
}

func (m *Memory) Catalog() interfaces.CatalogRepository {
	return m.catalog
}

func (m *Memory) Opportunity() interfaces.OpportunityRepository {
	return m.opportunity
}

func (m *Memory) Snapshot() interfaces.SnapshotRepository {
	return m.snapshot
}

func (m *Memory) Quota() interfaces.QuotaRepository {
	return m.quota
}

func (m *Memory) Simulation() interfaces.SimulationRepository {
	return m.simulation
}

func (m *Memory) Benchmark() interfaces.BenchmarkRepository {
	return m.benchmark
}

func (m *Memory) Close() error {
	return nil
}
