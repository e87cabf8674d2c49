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

type simulationDocument struct {
	ShardType     string    `firestore:"shard_type"`
	ID            string    `firestore:"id"`
	OpportunityID string    `firestore:"opportunity_id"`
	TenantID      string    `firestore:"tenant_id"`
	CreatedBy     string    `firestore:"created_by"`
	CreatedAt     time.Time `firestore:"created_at"`

	AddRisks             []simulatedRiskDocument `firestore:"add_risks"`
	RemoveRisks          []string                `firestore:"remove_risks"`
	ConfidenceOverrides  map[string]float64      `firestore:"confidence_overrides"`
	PonderationOverrides map[string]float64      `firestore:"ponderation_overrides"`
	DealValueOverride    *float64                `firestore:"deal_value_override"`

	RiskScore             float64 `firestore:"risk_score"`
	RevenueAtRisk         float64 `firestore:"revenue_at_risk"`
	BaselineRiskScore     float64 `firestore:"baseline_risk_score"`
	BaselineRevenueAtRisk float64 `firestore:"baseline_revenue_at_risk"`
}

type simulatedRiskDocument struct {
	RiskID      string  `firestore:"risk_id"`
	Confidence  float64 `firestore:"confidence"`
	Ponderation float64 `firestore:"ponderation"`
}

func toSimulationDocument(s *model.RiskSimulation) *simulationDocument {
	doc := &simulationDocument{
		ShardType:             shardTypeSimulation,
		ID:                    string(s.ID),
		OpportunityID:         s.OpportunityID.String(),
		TenantID:              s.TenantID.String(),
		CreatedBy:             s.CreatedBy,
		CreatedAt:             s.CreatedAt,
		DealValueOverride:     s.Modifications.DealValueOverride,
		RiskScore:             s.Results.RiskScore,
		RevenueAtRisk:         s.Results.RevenueAtRisk,
		BaselineRiskScore:     s.Results.BaselineRiskScore,
		BaselineRevenueAtRisk: s.Results.BaselineRevenueAtRisk,
	}
	for _, a := range s.Modifications.AddRisks {
		doc.AddRisks = append(doc.AddRisks, simulatedRiskDocument{
			RiskID:      a.RiskID.String(),
			Confidence:  a.Confidence,
			Ponderation: a.Ponderation,
		})
	}
	for _, rid := range s.Modifications.RemoveRisks {
		doc.RemoveRisks = append(doc.RemoveRisks, rid.String())
	}
	if len(s.Modifications.ConfidenceOverrides) > 0 {
		doc.ConfidenceOverrides = make(map[string]float64, len(s.Modifications.ConfidenceOverrides))
		for k, v := range s.Modifications.ConfidenceOverrides {
			doc.ConfidenceOverrides[k.String()] = v
		}
	}
	if len(s.Modifications.PonderationOverrides) > 0 {
		doc.PonderationOverrides = make(map[string]float64, len(s.Modifications.PonderationOverrides))
		for k, v := range s.Modifications.PonderationOverrides {
			doc.PonderationOverrides[k.String()] = v
		}
	}
	return doc
}

func (d *simulationDocument) toModel() *model.RiskSimulation {
	s := &model.RiskSimulation{
		ID:            model.SimulationID(d.ID),
		OpportunityID: model.OpportunityID(d.OpportunityID),
		TenantID:      types.TenantID(d.TenantID),
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		Modifications: model.SimulationModifications{
			DealValueOverride: d.DealValueOverride,
		},
		Results: model.SimulationResults{
			RiskScore:             d.RiskScore,
			RevenueAtRisk:         d.RevenueAtRisk,
			BaselineRiskScore:     d.BaselineRiskScore,
			BaselineRevenueAtRisk: d.BaselineRevenueAtRisk,
		},
	}
	for _, a := range d.AddRisks {
		s.Modifications.AddRisks = append(s.Modifications.AddRisks, model.SimulatedRisk{
			RiskID:      types.RiskID(a.RiskID),
			Confidence:  a.Confidence,
			Ponderation: a.Ponderation,
		})
	}
	for _, rid := range d.RemoveRisks {
		s.Modifications.RemoveRisks = append(s.Modifications.RemoveRisks, types.RiskID(rid))
	}
	if len(d.ConfidenceOverrides) > 0 {
		s.Modifications.ConfidenceOverrides = make(map[types.RiskID]float64, len(d.ConfidenceOverrides))
		for k, v := range d.ConfidenceOverrides {
			s.Modifications.ConfidenceOverrides[types.RiskID(k)] = v
		}
	}
	if len(d.PonderationOverrides) > 0 {
		s.Modifications.PonderationOverrides = make(map[types.RiskID]float64, len(d.PonderationOverrides))
		for k, v := range d.PonderationOverrides {
			s.Modifications.PonderationOverrides[types.RiskID(k)] = v
		}
	}
	return s
}

type simulationRepository struct {
	client     *firestore.Client
	collection string
}

func newSimulationRepository(client *firestore.Client) *simulationRepository {
	return &simulationRepository{
		client:     client,
		collection: DefaultCollection,
	}
}

func simulationDocID(id model.SimulationID) string {
	return "simulation|" + string(id)
}

func (r *simulationRepository) Create(ctx context.Context, sim *model.RiskSimulation) (*model.RiskSimulation, error) {
	stored := *sim
	if stored.ID == "" {
		stored.ID = model.NewSimulationID()
	}
	stored.CreatedAt = time.Now().UTC()

	docRef := r.client.Collection(r.collection).Doc(simulationDocID(stored.ID))
	if _, err := docRef.Create(ctx, toSimulationDocument(&stored)); err != nil {
		return nil, goerr.Wrap(err, "failed to create simulation", goerr.V("id", stored.ID))
	}

	return &stored, nil
}

func (r *simulationRepository) Get(ctx context.Context, id model.SimulationID) (*model.RiskSimulation, error) {
	doc, err := r.client.Collection(r.collection).Doc(simulationDocID(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "simulation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get simulation", goerr.V("id", id))
	}

	var d simulationDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode simulation", goerr.V("id", id))
	}
	return d.toModel(), nil
}

func (r *simulationRepository) ListByOpportunity(ctx context.Context, oppID model.OpportunityID) ([]*model.RiskSimulation, error) {
	iter := r.client.Collection(r.collection).
		Where("shard_type", "==", shardTypeSimulation).
		Where("opportunity_id", "==", oppID.String()).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var result []*model.RiskSimulation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate simulations", goerr.V("opportunityID", oppID))
		}

		var d simulationDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode simulation", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, d.toModel())
	}
	return result, nil
}
