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

type catalogDocument struct {
	ShardType          string                `firestore:"shard_type"`
	RiskID             string                `firestore:"risk_id"`
	CatalogType        string                `firestore:"catalog_type"`
	TenantID           string                `firestore:"tenant_id"`
	IndustryID         string                `firestore:"industry_id"`
	Name               string                `firestore:"name"`
	Description        string                `firestore:"description"`
	Category           string                `firestore:"category"`
	DefaultPonderation float64               `firestore:"default_ponderation"`
	DetectionRuleKind  string                `firestore:"detection_rule_kind"`
	DetectionRule      map[string]any        `firestore:"detection_rule_params"`
	Ponderations       []ponderationDocument `firestore:"ponderations"`
	IsActive           bool                  `firestore:"is_active"`
	Version            int64                 `firestore:"version"`
	CreatedAt          time.Time             `firestore:"created_at"`
	UpdatedAt          time.Time             `firestore:"updated_at"`
}

type ponderationDocument struct {
	Scope         string     `firestore:"scope"`
	ScopeID       string     `firestore:"scope_id"`
	Ponderation   float64    `firestore:"ponderation"`
	EffectiveFrom time.Time  `firestore:"effective_from"`
	EffectiveTo   *time.Time `firestore:"effective_to"`
	CreatedAt     time.Time  `firestore:"created_at"`
}

func toCatalogDocument(e *model.RiskCatalogEntry) *catalogDocument {
	doc := &catalogDocument{
		ShardType:          shardTypeCatalogEntry,
		RiskID:             e.RiskID.String(),
		CatalogType:        e.CatalogType.String(),
		TenantID:           e.TenantID.String(),
		IndustryID:         e.IndustryID.String(),
		Name:               e.Name,
		Description:        e.Description,
		Category:           e.Category.String(),
		DefaultPonderation: e.DefaultPonderation,
		DetectionRuleKind:  e.DetectionRule.Kind,
		DetectionRule:      e.DetectionRule.Params,
		IsActive:           e.IsActive,
		Version:            e.Version,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	for _, p := range e.Ponderations {
		doc.Ponderations = append(doc.Ponderations, ponderationDocument{
			Scope:         p.Scope.String(),
			ScopeID:       p.ScopeID,
			Ponderation:   p.Ponderation,
			EffectiveFrom: p.EffectiveFrom,
			EffectiveTo:   p.EffectiveTo,
			CreatedAt:     p.CreatedAt,
		})
	}
	return doc
}

func (d *catalogDocument) toModel() *model.RiskCatalogEntry {
	e := &model.RiskCatalogEntry{
		RiskID:             types.RiskID(d.RiskID),
		CatalogType:        types.CatalogType(d.CatalogType),
		TenantID:           types.TenantID(d.TenantID),
		IndustryID:         types.IndustryID(d.IndustryID),
		Name:               d.Name,
		Description:        d.Description,
		Category:           types.RiskCategory(d.Category),
		DefaultPonderation: d.DefaultPonderation,
		DetectionRule: model.DetectionRule{
			Kind:   d.DetectionRuleKind,
			Params: d.DetectionRule,
		},
		IsActive:  d.IsActive,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, p := range d.Ponderations {
		e.Ponderations = append(e.Ponderations, model.PonderationOverride{
			Scope:         types.PonderationScope(p.Scope),
			ScopeID:       p.ScopeID,
			Ponderation:   p.Ponderation,
			EffectiveFrom: p.EffectiveFrom,
			EffectiveTo:   p.EffectiveTo,
			CreatedAt:     p.CreatedAt,
		})
	}
	return e
}

type catalogRepository struct {
	client     *firestore.Client
	collection string
}

func newCatalogRepository(client *firestore.Client) *catalogRepository {
	return &catalogRepository{
		client:     client,
		collection: DefaultCollection,
	}
}

func catalogDocID(ct types.CatalogType, scopeID string, riskID types.RiskID) string {
	return fmt.Sprintf("catalog|%s|%s|%s", ct, scopeID, riskID)
}

func (r *catalogRepository) Create(ctx context.Context, entry *model.RiskCatalogEntry) (*model.RiskCatalogEntry, error) {
	now := time.Now().UTC()
	stored := *entry
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now

	docRef := r.client.Collection(r.collection).Doc(catalogDocID(entry.CatalogType, entry.ScopeID(), entry.RiskID))
	if _, err := docRef.Create(ctx, toCatalogDocument(&stored)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(err, "catalog entry already exists", goerr.V("riskID", entry.RiskID))
		}
		return nil, goerr.Wrap(err, "failed to create catalog entry", goerr.V("riskID", entry.RiskID))
	}

	return &stored, nil
}

func (r *catalogRepository) GetByRiskID(ctx context.Context, riskID types.RiskID) ([]*model.RiskCatalogEntry, error) {
	iter := r.client.Collection(r.collection).
		Where("shard_type", "==", shardTypeCatalogEntry).
		Where("risk_id", "==", riskID.String()).
		Documents(ctx)
	defer iter.Stop()

	var entries []*model.RiskCatalogEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate catalog entries", goerr.V("riskID", riskID))
		}

		var d catalogDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode catalog entry", goerr.V("doc", doc.Ref.ID))
		}
		entries = append(entries, d.toModel())
	}
	return entries, nil
}

func (r *catalogRepository) ListVisible(ctx context.Context, tenantID types.TenantID, industryID types.IndustryID) ([]*model.RiskCatalogEntry, error) {
	// Firestore cannot express the OR of the three visibility scopes in one
	// query; run one query per scope and merge.
	queries := []firestore.Query{
		r.client.Collection(r.collection).
			Where("shard_type", "==", shardTypeCatalogEntry).
			Where("catalog_type", "==", types.CatalogTypeGlobal.String()),
		r.client.Collection(r.collection).
			Where("shard_type", "==", shardTypeCatalogEntry).
			Where("catalog_type", "==", types.CatalogTypeTenant.String()).
			Where("tenant_id", "==", tenantID.String()),
	}
	if industryID != "" {
		queries = append(queries, r.client.Collection(r.collection).
			Where("shard_type", "==", shardTypeCatalogEntry).
			Where("catalog_type", "==", types.CatalogTypeIndustry.String()).
			Where("industry_id", "==", industryID.String()))
	}

	var entries []*model.RiskCatalogEntry
	for _, q := range queries {
		iter := q.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to iterate catalog entries", goerr.V("tenantID", tenantID))
			}

			var d catalogDocument
			if err := doc.DataTo(&d); err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to decode catalog entry", goerr.V("doc", doc.Ref.ID))
			}
			if !d.IsActive {
				continue
			}
			entries = append(entries, d.toModel())
		}
		iter.Stop()
	}
	return entries, nil
}

func (r *catalogRepository) Update(ctx context.Context, entry *model.RiskCatalogEntry) (*model.RiskCatalogEntry, error) {
	docRef := r.client.Collection(r.collection).Doc(catalogDocID(entry.CatalogType, entry.ScopeID(), entry.RiskID))

	var updated model.RiskCatalogEntry
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "catalog entry not found", goerr.V("riskID", entry.RiskID))
			}
			return goerr.Wrap(err, "failed to get catalog entry", goerr.V("riskID", entry.RiskID))
		}

		var existing catalogDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode catalog entry", goerr.V("riskID", entry.RiskID))
		}

		updated = *entry
		updated.Version = existing.Version + 1
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()

		return tx.Set(docRef, toCatalogDocument(&updated))
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *catalogRepository) Delete(ctx context.Context, catalogType types.CatalogType, scopeID string, riskID types.RiskID) error {
	docRef := r.client.Collection(r.collection).Doc(catalogDocID(catalogType, scopeID, riskID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "catalog entry not found", goerr.V("riskID", riskID))
		}
		return goerr.Wrap(err, "failed to check catalog entry", goerr.V("riskID", riskID))
	}

	if _, err := doc.Ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete catalog entry", goerr.V("riskID", riskID))
	}
	return nil
}
