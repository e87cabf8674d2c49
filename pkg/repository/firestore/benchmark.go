package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type benchmarkDocument struct {
	ShardType   string    `firestore:"shard_type"`
	ID          string    `firestore:"id"`
	TenantID    string    `firestore:"tenant_id"`
	IndustryID  string    `firestore:"industry_id"`
	PeriodType  string    `firestore:"period_type"`
	PeriodStart time.Time `firestore:"period_start"`
	PeriodEnd   time.Time `firestore:"period_end"`

	WinRate            float64 `firestore:"win_rate"`
	AvgClosingDays     float64 `firestore:"avg_closing_days"`
	AvgDealValue       float64 `firestore:"avg_deal_value"`
	DealCount          int     `firestore:"deal_count"`
	WonCount           int     `firestore:"won_count"`
	LostCount          int     `firestore:"lost_count"`
	RenewalProbability float64 `firestore:"renewal_probability"`

	CalculatedAt time.Time `firestore:"calculated_at"`
}

func toBenchmarkDocument(b *model.Benchmark) *benchmarkDocument {
	return &benchmarkDocument{
		ShardType:          shardTypeBenchmark,
		ID:                 string(b.ID),
		TenantID:           b.TenantID.String(),
		IndustryID:         b.IndustryID.String(),
		PeriodType:         b.Period.Type.String(),
		PeriodStart:        b.Period.StartDate,
		PeriodEnd:          b.Period.EndDate,
		WinRate:            b.Stats.WinRate,
		AvgClosingDays:     b.Stats.AvgClosingDays,
		AvgDealValue:       b.Stats.AvgDealValue,
		DealCount:          b.Stats.DealCount,
		WonCount:           b.Stats.WonCount,
		LostCount:          b.Stats.LostCount,
		RenewalProbability: b.Stats.RenewalProbability,
		CalculatedAt:       b.CalculatedAt,
	}
}

func (d *benchmarkDocument) toModel() *model.Benchmark {
	return &model.Benchmark{
		ID:         model.BenchmarkID(d.ID),
		TenantID:   types.TenantID(d.TenantID),
		IndustryID: types.IndustryID(d.IndustryID),
		Period: model.QuotaPeriod{
			Type:      types.PeriodType(d.PeriodType),
			StartDate: d.PeriodStart,
			EndDate:   d.PeriodEnd,
		},
		Stats: model.BenchmarkStats{
			WinRate:            d.WinRate,
			AvgClosingDays:     d.AvgClosingDays,
			AvgDealValue:       d.AvgDealValue,
			DealCount:          d.DealCount,
			WonCount:           d.WonCount,
			LostCount:          d.LostCount,
			RenewalProbability: d.RenewalProbability,
		},
		CalculatedAt: d.CalculatedAt,
	}
}

type benchmarkRepository struct {
	client     *firestore.Client
	collection string
}

func newBenchmarkRepository(client *firestore.Client) *benchmarkRepository {
	return &benchmarkRepository{
		client:     client,
		collection: DefaultCollection,
	}
}

// benchmarkDocID keys the cache by scope and period so Put upserts
func benchmarkDocID(tenantID types.TenantID, industryID types.IndustryID, period model.QuotaPeriod) string {
	return fmt.Sprintf("benchmark|%s|%s|%s|%d|%d",
		tenantID, industryID, period.Type,
		period.StartDate.Unix(), period.EndDate.Unix())
}

func (r *benchmarkRepository) Put(ctx context.Context, bm *model.Benchmark) (*model.Benchmark, error) {
	stored := *bm
	if stored.ID == "" {
		stored.ID = model.NewBenchmarkID()
	}
	stored.CalculatedAt = time.Now().UTC()

	docRef := r.client.Collection(r.collection).Doc(benchmarkDocID(bm.TenantID, bm.IndustryID, bm.Period))
	if _, err := docRef.Set(ctx, toBenchmarkDocument(&stored)); err != nil {
		return nil, goerr.Wrap(err, "failed to put benchmark",
			goerr.V("tenantID", bm.TenantID), goerr.V("industryID", bm.IndustryID))
	}

	return &stored, nil
}

func (r *benchmarkRepository) Get(ctx context.Context, tenantID types.TenantID, industryID types.IndustryID, period model.QuotaPeriod) (*model.Benchmark, error) {
	doc, err := r.client.Collection(r.collection).Doc(benchmarkDocID(tenantID, industryID, period)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "benchmark not found",
				goerr.V("tenantID", tenantID), goerr.V("industryID", industryID))
		}
		return nil, goerr.Wrap(err, "failed to get benchmark", goerr.V("tenantID", tenantID))
	}

	var d benchmarkDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode benchmark", goerr.V("doc", doc.Ref.ID))
	}
	return d.toModel(), nil
}

func (r *benchmarkRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.Benchmark, error) {
	iter := r.client.Collection(r.collection).
		Where("shard_type", "==", shardTypeBenchmark).
		Where("tenant_id", "==", tenantID.String()).
		Documents(ctx)
	defer iter.Stop()

	var result []*model.Benchmark
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate benchmarks", goerr.V("tenantID", tenantID))
		}

		var d benchmarkDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode benchmark", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, d.toModel())
	}
	return result, nil
}
