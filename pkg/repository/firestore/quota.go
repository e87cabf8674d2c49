package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type quotaDocument struct {
	ShardType     string    `firestore:"shard_type"`
	ID            string    `firestore:"id"`
	TenantID      string    `firestore:"tenant_id"`
	QuotaType     string    `firestore:"quota_type"`
	TargetUserID  string    `firestore:"target_user_id"`
	TeamID        string    `firestore:"team_id"`
	ParentQuotaID string    `firestore:"parent_quota_id"`
	PeriodType    string    `firestore:"period_type"`
	PeriodStart   time.Time `firestore:"period_start"`
	PeriodEnd     time.Time `firestore:"period_end"`

	TargetAmount      float64 `firestore:"target_amount"`
	TargetCurrency    string  `firestore:"target_currency"`
	TargetOppCount    int     `firestore:"target_opportunity_count"`

	PerfActual                 float64   `firestore:"perf_actual"`
	PerfForecasted             float64   `firestore:"perf_forecasted"`
	PerfRiskAdjusted           float64   `firestore:"perf_risk_adjusted"`
	PerfAttainment             float64   `firestore:"perf_attainment"`
	PerfRiskAdjustedAttainment float64   `firestore:"perf_risk_adjusted_attainment"`
	PerfCalculatedAt           time.Time `firestore:"perf_calculated_at"`

	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func toQuotaDocument(q *model.Quota) *quotaDocument {
	return &quotaDocument{
		ShardType:                  shardTypeQuota,
		ID:                         q.ID.String(),
		TenantID:                   q.TenantID.String(),
		QuotaType:                  q.QuotaType.String(),
		TargetUserID:               q.TargetUserID,
		TeamID:                     q.TeamID,
		ParentQuotaID:              q.ParentQuotaID.String(),
		PeriodType:                 q.Period.Type.String(),
		PeriodStart:                q.Period.StartDate,
		PeriodEnd:                  q.Period.EndDate,
		TargetAmount:               q.Target.Amount,
		TargetCurrency:             q.Target.Currency,
		TargetOppCount:             q.Target.OpportunityCount,
		PerfActual:                 q.Performance.Actual,
		PerfForecasted:             q.Performance.Forecasted,
		PerfRiskAdjusted:           q.Performance.RiskAdjusted,
		PerfAttainment:             q.Performance.Attainment,
		PerfRiskAdjustedAttainment: q.Performance.RiskAdjustedAttainment,
		PerfCalculatedAt:           q.Performance.CalculatedAt,
		CreatedAt:                  q.CreatedAt,
		UpdatedAt:                  q.UpdatedAt,
	}
}

func (d *quotaDocument) toModel() *model.Quota {
	return &model.Quota{
		ID:            model.QuotaID(d.ID),
		TenantID:      types.TenantID(d.TenantID),
		QuotaType:     types.QuotaType(d.QuotaType),
		TargetUserID:  d.TargetUserID,
		TeamID:        d.TeamID,
		ParentQuotaID: model.QuotaID(d.ParentQuotaID),
		Period: model.QuotaPeriod{
			Type:      types.PeriodType(d.PeriodType),
			StartDate: d.PeriodStart,
			EndDate:   d.PeriodEnd,
		},
		Target: model.QuotaTarget{
			Amount:           d.TargetAmount,
			Currency:         d.TargetCurrency,
			OpportunityCount: d.TargetOppCount,
		},
		Performance: model.QuotaPerformance{
			Actual:                 d.PerfActual,
			Forecasted:             d.PerfForecasted,
			RiskAdjusted:           d.PerfRiskAdjusted,
			Attainment:             d.PerfAttainment,
			RiskAdjustedAttainment: d.PerfRiskAdjustedAttainment,
			CalculatedAt:           d.PerfCalculatedAt,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type quotaRepository struct {
	client     *firestore.Client
	collection string
}

func newQuotaRepository(client *firestore.Client) *quotaRepository {
	return &quotaRepository{
		client:     client,
		collection: DefaultCollection,
	}
}

func quotaDocID(id model.QuotaID) string {
	return "quota|" + id.String()
}

func (r *quotaRepository) docRef(id model.QuotaID) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(quotaDocID(id))
}

func (r *quotaRepository) Create(ctx context.Context, quota *model.Quota) (*model.Quota, error) {
	stored := *quota
	if stored.ID == "" {
		stored.ID = model.NewQuotaID()
	}

	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	if _, err := r.docRef(stored.ID).Create(ctx, toQuotaDocument(&stored)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(err, "quota already exists", goerr.V("id", stored.ID))
		}
		return nil, goerr.Wrap(err, "failed to create quota", goerr.V("id", stored.ID))
	}

	return &stored, nil
}

func (r *quotaRepository) Get(ctx context.Context, id model.QuotaID) (*model.Quota, error) {
	doc, err := r.docRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "quota not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get quota", goerr.V("id", id))
	}

	var d quotaDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode quota", goerr.V("id", id))
	}
	return d.toModel(), nil
}

func (r *quotaRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Quota, error) {
	iter := r.client.Collection(r.collection).
		Where("shard_type", "==", shardTypeQuota).
		Where("tenant_id", "==", tenantID.String()).
		Documents(ctx)
	defer iter.Stop()

	return r.collect(iter)
}

func (r *quotaRepository) ListChildren(ctx context.Context, parentID model.QuotaID) ([]*model.Quota, error) {
	iter := r.client.Collection(r.collection).
		Where("shard_type", "==", shardTypeQuota).
		Where("parent_quota_id", "==", parentID.String()).
		Documents(ctx)
	defer iter.Stop()

	return r.collect(iter)
}

func (r *quotaRepository) collect(iter *firestore.DocumentIterator) ([]*model.Quota, error) {
	var result []*model.Quota
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate quotas")
		}

		var d quotaDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode quota", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, d.toModel())
	}
	return result, nil
}

func (r *quotaRepository) Update(ctx context.Context, quota *model.Quota) (*model.Quota, error) {
	docRef := r.docRef(quota.ID)

	var updated model.Quota
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "quota not found", goerr.V("id", quota.ID))
			}
			return goerr.Wrap(err, "failed to get quota", goerr.V("id", quota.ID))
		}

		var existing quotaDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode quota", goerr.V("id", quota.ID))
		}

		// Performance is owned by UpdatePerformance
		updated = *quota
		updated.Performance = existing.toModel().Performance
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()

		return tx.Set(docRef, toQuotaDocument(&updated))
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *quotaRepository) UpdatePerformance(ctx context.Context, id model.QuotaID, perf model.QuotaPerformance) (*model.Quota, error) {
	docRef := r.docRef(id)

	var updated *model.Quota
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "quota not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get quota", goerr.V("id", id))
		}

		var existing quotaDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode quota", goerr.V("id", id))
		}

		q := existing.toModel()
		q.Performance = perf
		q.UpdatedAt = time.Now().UTC()
		updated = q

		return tx.Set(docRef, toQuotaDocument(q))
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *quotaRepository) Delete(ctx context.Context, id model.QuotaID) error {
	docRef := r.docRef(id)

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "quota not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check quota", goerr.V("id", id))
	}

	if _, err := doc.Ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete quota", goerr.V("id", id))
	}
	return nil
}
