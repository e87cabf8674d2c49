package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type snapshotDocument struct {
	ShardType     string             `firestore:"shard_type"`
	ID            string             `firestore:"id"`
	OpportunityID string             `firestore:"opportunity_id"`
	TenantID      string             `firestore:"tenant_id"`
	SnapshotDate  time.Time          `firestore:"snapshot_date"`
	Evaluation    evaluationDocument `firestore:"evaluation"`
	CreatedAt     time.Time          `firestore:"created_at"`
}

func toSnapshotDocument(s *model.RiskSnapshot) *snapshotDocument {
	return &snapshotDocument{
		ShardType:     shardTypeSnapshot,
		ID:            string(s.ID),
		OpportunityID: s.OpportunityID.String(),
		TenantID:      s.TenantID.String(),
		SnapshotDate:  s.SnapshotDate,
		Evaluation:    *toEvaluationDocument(&s.Evaluation),
		CreatedAt:     s.CreatedAt,
	}
}

func (d *snapshotDocument) toModel() *model.RiskSnapshot {
	return &model.RiskSnapshot{
		ID:            model.SnapshotID(d.ID),
		OpportunityID: model.OpportunityID(d.OpportunityID),
		TenantID:      types.TenantID(d.TenantID),
		SnapshotDate:  d.SnapshotDate,
		Evaluation:    *d.Evaluation.toModel(),
		CreatedAt:     d.CreatedAt,
	}
}

type snapshotRepository struct {
	client     *firestore.Client
	collection string
}

func newSnapshotRepository(client *firestore.Client) *snapshotRepository {
	return &snapshotRepository{
		client:     client,
		collection: DefaultCollection,
	}
}

func snapshotDocID(id model.SnapshotID) string {
	return "snapshot|" + string(id)
}

func (r *snapshotRepository) Append(ctx context.Context, snapshot *model.RiskSnapshot) (*model.RiskSnapshot, error) {
	stored := *snapshot
	if stored.ID == "" {
		stored.ID = model.NewSnapshotID()
	}
	stored.CreatedAt = time.Now().UTC()

	docRef := r.client.Collection(r.collection).Doc(snapshotDocID(stored.ID))
	// Create, not Set: snapshots are immutable and must never be overwritten
	if _, err := docRef.Create(ctx, toSnapshotDocument(&stored)); err != nil {
		return nil, goerr.Wrap(err, "failed to append snapshot",
			goerr.V("id", stored.ID), goerr.V("opportunityID", stored.OpportunityID))
	}

	return &stored, nil
}

func (r *snapshotRepository) Get(ctx context.Context, id model.SnapshotID) (*model.RiskSnapshot, error) {
	doc, err := r.client.Collection(r.collection).Doc(snapshotDocID(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "snapshot not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get snapshot", goerr.V("id", id))
	}

	var d snapshotDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode snapshot", goerr.V("id", id))
	}
	return d.toModel(), nil
}

func (r *snapshotRepository) ListByOpportunity(ctx context.Context, oppID model.OpportunityID) ([]*model.RiskSnapshot, error) {
	iter := r.client.Collection(r.collection).
		Where("shard_type", "==", shardTypeSnapshot).
		Where("opportunity_id", "==", oppID.String()).
		OrderBy("snapshot_date", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return r.collect(iter, oppID)
}

func (r *snapshotRepository) CountByOpportunity(ctx context.Context, oppID model.OpportunityID) (int64, error) {
	q := r.client.Collection(r.collection).
		Where("shard_type", "==", shardTypeSnapshot).
		Where("opportunity_id", "==", oppID.String())

	// Aggregation query: count without transferring document data
	result, err := q.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count snapshots", goerr.V("opportunityID", oppID))
	}

	value, ok := result["total"]
	if !ok {
		return 0, goerr.New("count aggregation returned no value", goerr.V("opportunityID", oppID))
	}
	count, ok := value.(*firestorepb.Value)
	if !ok {
		return 0, goerr.New("unexpected count aggregation type", goerr.V("opportunityID", oppID))
	}
	return count.GetIntegerValue(), nil
}

func (r *snapshotRepository) ListOlderThan(ctx context.Context, oppID model.OpportunityID, cutoff time.Time) ([]*model.RiskSnapshot, error) {
	iter := r.client.Collection(r.collection).
		Where("shard_type", "==", shardTypeSnapshot).
		Where("opportunity_id", "==", oppID.String()).
		Where("snapshot_date", "<", cutoff).
		OrderBy("snapshot_date", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	return r.collect(iter, oppID)
}

func (r *snapshotRepository) collect(iter *firestore.DocumentIterator, oppID model.OpportunityID) ([]*model.RiskSnapshot, error) {
	var result []*model.RiskSnapshot
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate snapshots", goerr.V("opportunityID", oppID))
		}

		var d snapshotDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode snapshot", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, d.toModel())
	}
	return result, nil
}

func (r *snapshotRepository) Delete(ctx context.Context, id model.SnapshotID) error {
	docRef := r.client.Collection(r.collection).Doc(snapshotDocID(id))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "snapshot not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check snapshot", goerr.V("id", id))
	}

	if _, err := doc.Ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete snapshot", goerr.V("id", id))
	}
	return nil
}
