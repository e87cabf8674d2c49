package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type opportunityDocument struct {
	ShardType       string     `firestore:"shard_type"`
	ID              string     `firestore:"id"`
	TenantID        string     `firestore:"tenant_id"`
	Name            string     `firestore:"name"`
	DealValue       float64    `firestore:"deal_value"`
	Currency        string     `firestore:"currency"`
	OwnerID         string     `firestore:"owner_id"`
	TeamID          string     `firestore:"team_id"`
	IndustryID      string     `firestore:"industry_id"`
	OpportunityType string     `firestore:"opportunity_type"`
	Stage           string     `firestore:"stage"`
	ExpectedCloseAt *time.Time `firestore:"expected_close_at"`
	ClosedAt        *time.Time `firestore:"closed_at"`

	Evaluation        *evaluationDocument `firestore:"evaluation"`
	EarlyWarnings     []signalDocument    `firestore:"early_warnings"`
	MitigationActions []actionDocument    `firestore:"mitigation_actions"`

	EvalVersion int64     `firestore:"eval_version"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

type evaluationDocument struct {
	RiskScore     float64                `firestore:"risk_score"`
	RevenueAtRisk float64                `firestore:"revenue_at_risk"`
	Risks         []contributionDocument `firestore:"risks"`
	CalculatedAt  time.Time              `firestore:"calculated_at"`
	CalculatedBy  string                 `firestore:"calculated_by"`
}

type contributionDocument struct {
	RiskID         string     `firestore:"risk_id"`
	Ponderation    float64    `firestore:"ponderation"`
	Confidence     float64    `firestore:"confidence"`
	Contribution   float64    `firestore:"contribution"`
	LifecycleState string     `firestore:"lifecycle_state"`
	AcknowledgedBy string     `firestore:"acknowledged_by"`
	AcknowledgedAt *time.Time `firestore:"acknowledged_at"`
	DismissedBy    string     `firestore:"dismissed_by"`
	DismissedAt    *time.Time `firestore:"dismissed_at"`
	Reason         string     `firestore:"reason"`
}

type signalDocument struct {
	ID             string     `firestore:"id"`
	RiskID         string     `firestore:"risk_id"`
	Title          string     `firestore:"title"`
	Detail         string     `firestore:"detail"`
	Severity       string     `firestore:"severity"`
	Status         string     `firestore:"status"`
	RaisedBy       string     `firestore:"raised_by"`
	RaisedAt       time.Time  `firestore:"raised_at"`
	AcknowledgedBy string     `firestore:"acknowledged_by"`
	AcknowledgedAt *time.Time `firestore:"acknowledged_at"`
	ResolvedBy     string     `firestore:"resolved_by"`
	ResolvedAt     *time.Time `firestore:"resolved_at"`
}

type actionDocument struct {
	ID          string     `firestore:"id"`
	RiskID      string     `firestore:"risk_id"`
	Title       string     `firestore:"title"`
	Description string     `firestore:"description"`
	AssigneeID  string     `firestore:"assignee_id"`
	Status      string     `firestore:"status"`
	DueAt       *time.Time `firestore:"due_at"`
	CreatedBy   string     `firestore:"created_by"`
	CreatedAt   time.Time  `firestore:"created_at"`
	CompletedAt *time.Time `firestore:"completed_at"`
}

func toEvaluationDocument(e *model.RiskEvaluation) *evaluationDocument {
	if e == nil {
		return nil
	}
	doc := &evaluationDocument{
		RiskScore:     e.RiskScore,
		RevenueAtRisk: e.RevenueAtRisk,
		CalculatedAt:  e.CalculatedAt,
		CalculatedBy:  e.CalculatedBy,
	}
	for _, c := range e.Risks {
		doc.Risks = append(doc.Risks, contributionDocument{
			RiskID:         c.RiskID.String(),
			Ponderation:    c.Ponderation,
			Confidence:     c.Confidence,
			Contribution:   c.Contribution,
			LifecycleState: c.LifecycleState.String(),
			AcknowledgedBy: c.AcknowledgedBy,
			AcknowledgedAt: c.AcknowledgedAt,
			DismissedBy:    c.DismissedBy,
			DismissedAt:    c.DismissedAt,
			Reason:         c.Reason,
		})
	}
	return doc
}

func (d *evaluationDocument) toModel() *model.RiskEvaluation {
	if d == nil {
		return nil
	}
	e := &model.RiskEvaluation{
		RiskScore:     d.RiskScore,
		RevenueAtRisk: d.RevenueAtRisk,
		CalculatedAt:  d.CalculatedAt,
		CalculatedBy:  d.CalculatedBy,
	}
	for _, c := range d.Risks {
		e.Risks = append(e.Risks, model.RiskContribution{
			RiskID:         types.RiskID(c.RiskID),
			Ponderation:    c.Ponderation,
			Confidence:     c.Confidence,
			Contribution:   c.Contribution,
			LifecycleState: types.RiskLifecycleState(c.LifecycleState),
			AcknowledgedBy: c.AcknowledgedBy,
			AcknowledgedAt: c.AcknowledgedAt,
			DismissedBy:    c.DismissedBy,
			DismissedAt:    c.DismissedAt,
			Reason:         c.Reason,
		})
	}
	return e
}

func toSignalDocuments(signals []model.EarlyWarningSignal) []signalDocument {
	docs := make([]signalDocument, 0, len(signals))
	for _, s := range signals {
		docs = append(docs, signalDocument{
			ID:             string(s.ID),
			RiskID:         s.RiskID.String(),
			Title:          s.Title,
			Detail:         s.Detail,
			Severity:       s.Severity,
			Status:         s.Status.String(),
			RaisedBy:       s.RaisedBy,
			RaisedAt:       s.RaisedAt,
			AcknowledgedBy: s.AcknowledgedBy,
			AcknowledgedAt: s.AcknowledgedAt,
			ResolvedBy:     s.ResolvedBy,
			ResolvedAt:     s.ResolvedAt,
		})
	}
	return docs
}

func fromSignalDocuments(docs []signalDocument) []model.EarlyWarningSignal {
	signals := make([]model.EarlyWarningSignal, 0, len(docs))
	for _, d := range docs {
		signals = append(signals, model.EarlyWarningSignal{
			ID:             model.SignalID(d.ID),
			RiskID:         types.RiskID(d.RiskID),
			Title:          d.Title,
			Detail:         d.Detail,
			Severity:       d.Severity,
			Status:         types.SignalStatus(d.Status),
			RaisedBy:       d.RaisedBy,
			RaisedAt:       d.RaisedAt,
			AcknowledgedBy: d.AcknowledgedBy,
			AcknowledgedAt: d.AcknowledgedAt,
			ResolvedBy:     d.ResolvedBy,
			ResolvedAt:     d.ResolvedAt,
		})
	}
	return signals
}

func toActionDocuments(actions []model.MitigationAction) []actionDocument {
	docs := make([]actionDocument, 0, len(actions))
	for _, a := range actions {
		docs = append(docs, actionDocument{
			ID:          string(a.ID),
			RiskID:      a.RiskID.String(),
			Title:       a.Title,
			Description: a.Description,
			AssigneeID:  a.AssigneeID,
			Status:      a.Status.String(),
			DueAt:       a.DueAt,
			CreatedBy:   a.CreatedBy,
			CreatedAt:   a.CreatedAt,
			CompletedAt: a.CompletedAt,
		})
	}
	return docs
}

func fromActionDocuments(docs []actionDocument) []model.MitigationAction {
	actions := make([]model.MitigationAction, 0, len(docs))
	for _, d := range docs {
		actions = append(actions, model.MitigationAction{
			ID:          model.ActionID(d.ID),
			RiskID:      types.RiskID(d.RiskID),
			Title:       d.Title,
			Description: d.Description,
			AssigneeID:  d.AssigneeID,
			Status:      types.ActionStatus(d.Status),
			DueAt:       d.DueAt,
			CreatedBy:   d.CreatedBy,
			CreatedAt:   d.CreatedAt,
			CompletedAt: d.CompletedAt,
		})
	}
	return actions
}

func toOpportunityDocument(o *model.Opportunity) *opportunityDocument {
	return &opportunityDocument{
		ShardType:         shardTypeOpportunity,
		ID:                o.ID.String(),
		TenantID:          o.TenantID.String(),
		Name:              o.Name,
		DealValue:         o.DealValue,
		Currency:          o.Currency,
		OwnerID:           o.OwnerID,
		TeamID:            o.TeamID,
		IndustryID:        o.IndustryID.String(),
		OpportunityType:   o.OpportunityType.String(),
		Stage:             o.Stage.Normalize().String(),
		ExpectedCloseAt:   o.ExpectedCloseAt,
		ClosedAt:          o.ClosedAt,
		Evaluation:        toEvaluationDocument(o.Evaluation),
		EarlyWarnings:     toSignalDocuments(o.EarlyWarnings),
		MitigationActions: toActionDocuments(o.MitigationActions),
		EvalVersion:       o.EvalVersion,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func (d *opportunityDocument) toModel() *model.Opportunity {
	return &model.Opportunity{
		ID:                model.OpportunityID(d.ID),
		TenantID:          types.TenantID(d.TenantID),
		Name:              d.Name,
		DealValue:         d.DealValue,
		Currency:          d.Currency,
		OwnerID:           d.OwnerID,
		TeamID:            d.TeamID,
		IndustryID:        types.IndustryID(d.IndustryID),
		OpportunityType:   types.OpportunityType(d.OpportunityType),
		Stage:             types.OpportunityStage(d.Stage),
		ExpectedCloseAt:   d.ExpectedCloseAt,
		ClosedAt:          d.ClosedAt,
		Evaluation:        d.Evaluation.toModel(),
		EarlyWarnings:     fromSignalDocuments(d.EarlyWarnings),
		MitigationActions: fromActionDocuments(d.MitigationActions),
		EvalVersion:       d.EvalVersion,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type opportunityRepository struct {
	client     *firestore.Client
	collection string
}

func newOpportunityRepository(client *firestore.Client) *opportunityRepository {
	return &opportunityRepository{
		client:     client,
		collection: DefaultCollection,
	}
}

func opportunityDocID(id model.OpportunityID) string {
	return "opportunity|" + id.String()
}

func (r *opportunityRepository) docRef(id model.OpportunityID) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(opportunityDocID(id))
}

func (r *opportunityRepository) Create(ctx context.Context, opp *model.Opportunity) (*model.Opportunity, error) {
	stored := *opp
	if stored.ID == "" {
		stored.ID = model.NewOpportunityID()
	}

	now := time.Now().UTC()
	stored.Stage = stored.Stage.Normalize()
	stored.EvalVersion = 0
	stored.CreatedAt = now
	stored.UpdatedAt = now

	if _, err := r.docRef(stored.ID).Create(ctx, toOpportunityDocument(&stored)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(err, "opportunity already exists", goerr.V("id", stored.ID))
		}
		return nil, goerr.Wrap(err, "failed to create opportunity", goerr.V("id", stored.ID))
	}

	return &stored, nil
}

func (r *opportunityRepository) Get(ctx context.Context, id model.OpportunityID) (*model.Opportunity, error) {
	doc, err := r.docRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get opportunity", goerr.V("id", id))
	}

	var d opportunityDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode opportunity", goerr.V("id", id))
	}
	return d.toModel(), nil
}

func (r *opportunityRepository) List(ctx context.Context, tenantID types.TenantID, opts ...interfaces.ListOpportunityOption) ([]*model.Opportunity, error) {
	cfg := interfaces.BuildListOpportunityConfig(opts...)

	q := r.client.Collection(r.collection).
		Where("shard_type", "==", shardTypeOpportunity).
		Where("tenant_id", "==", tenantID.String())
	if cfg.OwnerID() != nil {
		q = q.Where("owner_id", "==", *cfg.OwnerID())
	}
	if cfg.TeamID() != nil {
		q = q.Where("team_id", "==", *cfg.TeamID())
	}
	if cfg.Stage() != nil {
		q = q.Where("stage", "==", cfg.Stage().String())
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Opportunity
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate opportunities", goerr.V("tenantID", tenantID))
		}

		var d opportunityDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode opportunity", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, d.toModel())
	}
	return result, nil
}

func (r *opportunityRepository) Update(ctx context.Context, opp *model.Opportunity) (*model.Opportunity, error) {
	docRef := r.docRef(opp.ID)

	var updated model.Opportunity
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", opp.ID))
			}
			return goerr.Wrap(err, "failed to get opportunity", goerr.V("id", opp.ID))
		}

		var existing opportunityDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode opportunity", goerr.V("id", opp.ID))
		}

		// Evaluation state is owned by UpdateEvaluation
		updated = *opp
		updated.Stage = updated.Stage.Normalize()
		updated.Evaluation = existing.Evaluation.toModel()
		updated.EvalVersion = existing.EvalVersion
		updated.EarlyWarnings = fromSignalDocuments(existing.EarlyWarnings)
		updated.MitigationActions = fromActionDocuments(existing.MitigationActions)
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()

		return tx.Set(docRef, toOpportunityDocument(&updated))
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *opportunityRepository) UpdateEvaluation(ctx context.Context, id model.OpportunityID, expectedVersion int64, eval *model.RiskEvaluation, snapshot *model.RiskSnapshot) (*model.Opportunity, error) {
	docRef := r.docRef(id)

	var updated *model.Opportunity
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get opportunity", goerr.V("id", id))
		}

		var existing opportunityDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode opportunity", goerr.V("id", id))
		}

		if existing.EvalVersion != expectedVersion {
			return goerr.Wrap(model.ErrConcurrentModification, "evaluation version mismatch",
				goerr.V("id", id),
				goerr.V("expected", expectedVersion),
				goerr.V("actual", existing.EvalVersion))
		}

		existing.Evaluation = toEvaluationDocument(eval)
		existing.EvalVersion++
		existing.UpdatedAt = time.Now().UTC()
		updated = existing.toModel()

		if err := tx.Set(docRef, &existing); err != nil {
			return goerr.Wrap(err, "failed to write evaluation", goerr.V("id", id))
		}

		// The snapshot rides in the same transaction: either both the
		// overwrite and its history entry commit, or neither does
		if snapshot != nil {
			stored := *snapshot
			if stored.ID == "" {
				stored.ID = model.NewSnapshotID()
			}
			stored.CreatedAt = time.Now().UTC()

			snapRef := r.client.Collection(r.collection).Doc(snapshotDocID(stored.ID))
			// Create, not Set: snapshots are immutable and must never be overwritten
			if err := tx.Create(snapRef, toSnapshotDocument(&stored)); err != nil {
				return goerr.Wrap(err, "failed to append snapshot",
					goerr.V("id", id), goerr.V("snapshotID", stored.ID))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *opportunityRepository) AppendEarlyWarnings(ctx context.Context, id model.OpportunityID, signals []model.EarlyWarningSignal) error {
	if len(signals) == 0 {
		return nil
	}
	return r.mutate(ctx, id, func(d *opportunityDocument) error {
		d.EarlyWarnings = append(d.EarlyWarnings, toSignalDocuments(signals)...)
		return nil
	})
}

func (r *opportunityRepository) UpdateEarlyWarning(ctx context.Context, id model.OpportunityID, signal model.EarlyWarningSignal) error {
	return r.mutate(ctx, id, func(d *opportunityDocument) error {
		for i := range d.EarlyWarnings {
			if d.EarlyWarnings[i].ID == string(signal.ID) {
				d.EarlyWarnings[i] = toSignalDocuments([]model.EarlyWarningSignal{signal})[0]
				return nil
			}
		}
		return goerr.Wrap(model.ErrNotFound, "early warning not found",
			goerr.V("opportunityID", id), goerr.V("signalID", signal.ID))
	})
}

func (r *opportunityRepository) AppendMitigationAction(ctx context.Context, id model.OpportunityID, action model.MitigationAction) error {
	return r.mutate(ctx, id, func(d *opportunityDocument) error {
		d.MitigationActions = append(d.MitigationActions, toActionDocuments([]model.MitigationAction{action})...)
		return nil
	})
}

func (r *opportunityRepository) UpdateMitigationAction(ctx context.Context, id model.OpportunityID, action model.MitigationAction) error {
	return r.mutate(ctx, id, func(d *opportunityDocument) error {
		for i := range d.MitigationActions {
			if d.MitigationActions[i].ID == string(action.ID) {
				d.MitigationActions[i] = toActionDocuments([]model.MitigationAction{action})[0]
				return nil
			}
		}
		return goerr.Wrap(model.ErrNotFound, "mitigation action not found",
			goerr.V("opportunityID", id), goerr.V("actionID", action.ID))
	})
}

// mutate runs a read-modify-write transaction over the opportunity document
func (r *opportunityRepository) mutate(ctx context.Context, id model.OpportunityID, fn func(*opportunityDocument) error) error {
	docRef := r.docRef(id)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get opportunity", goerr.V("id", id))
		}

		var d opportunityDocument
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to decode opportunity", goerr.V("id", id))
		}

		if err := fn(&d); err != nil {
			return err
		}
		d.UpdatedAt = time.Now().UTC()

		return tx.Set(docRef, &d)
	})
}

func (r *opportunityRepository) Delete(ctx context.Context, id model.OpportunityID) error {
	docRef := r.docRef(id)

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "opportunity not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check opportunity", goerr.V("id", id))
	}

	if _, err := doc.Ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete opportunity", goerr.V("id", id))
	}
	return nil
}
