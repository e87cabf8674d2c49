package interfaces

// Repository defines the interface for data persistence. All record kinds
// live in one document store behind per-kind accessors.
type Repository interface {
	Catalog() CatalogRepository
	Opportunity() OpportunityRepository
	Snapshot() SnapshotRepository
	Quota() QuotaRepository
	Simulation() SimulationRepository
	Benchmark() BenchmarkRepository

	Close() error
}
