package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
)

// All record kinds live in one polymorphic collection. Each document
// carries a shard_type discriminator so dashboards and migrations can
// query across kinds.
const (
	shardTypeCatalogEntry = "risk_catalog_entry"
	shardTypeOpportunity  = "opportunity"
	shardTypeSnapshot     = "risk_snapshot"
	shardTypeQuota        = "quota"
	shardTypeSimulation   = "risk_simulation"
	shardTypeBenchmark    = "benchmark"
)

// DefaultCollection is the name of the shared shard collection
const DefaultCollection = "shards"

type Firestore struct {
	client      *firestore.Client
	catalog     *catalogRepository
	opportunity *opportunityRepository
	snapshot    *snapshotRepository
	quota       *quotaRepository
	simulation  *simulationRepository
	benchmark   *benchmarkRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollection overrides the shard collection name. Used by tests to
// isolate runs against a shared project.
func WithCollection(name string) Option {
	return func(f *Firestore) {
		f.catalog.collection = name
		f.opportunity.collection = name
		f.snapshot.collection = name
		f.quota.collection = name
		f.simulation.collection = name
		f.benchmark.collection = name
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:      client,
		catalog:     newCatalogRepository(client),
		opportunity: newOpportunityRepository(client),
		snapshot:    newSnapshotRepository(client),
		quota:       newQuotaRepository(client),
		simulation:  newSimulationRepository(client),
		benchmark:   newBenchmarkRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Catalog() interfaces.CatalogRepository {
	return f.catalog
}

func (f *Firestore) Opportunity() interfaces.OpportunityRepository {
	return f.opportunity
}

func (f *Firestore) Snapshot() interfaces.SnapshotRepository {
	return f.snapshot
}

func (f *Firestore) Quota() interfaces.QuotaRepository {
	return f.quota
}

func (f *Firestore) Simulation() interfaces.SimulationRepository {
	return f.simulation
}

func (f *Firestore) Benchmark() interfaces.BenchmarkRepository {
	return f.benchmark
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
