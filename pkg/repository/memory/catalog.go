package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// catalogKey is the composite document key: the same risk ID may exist at
// global, industry and tenant scope at once.
func catalogKey(ct types.CatalogType, scopeID string, riskID types.RiskID) string {
	return fmt.Sprintf("%s/%s/%s", ct, scopeID, riskID)
}

type catalogRepository struct {
	mu      sync.RWMutex
	entries map[string]*model.RiskCatalogEntry
}

func newCatalogRepository() *catalogRepository {
	return &catalogRepository{
		entries: make(map[string]*model.RiskCatalogEntry),
	}
}

func cloneEntry(e *model.RiskCatalogEntry) *model.RiskCatalogEntry {
	c := *e
	c.Ponderations = make([]model.PonderationOverride, len(e.Ponderations))
	copy(c.Ponderations, e.Ponderations)
	if e.DetectionRule.Params != nil {
		c.DetectionRule.Params = make(map[string]any, len(e.DetectionRule.Params))
		for k, v := range e.DetectionRule.Params {
			c.DetectionRule.Params[k] = v
		}
	}
	return &c
}

func (r *catalogRepository) Create(ctx context.Context, entry *model.RiskCatalogEntry) (*model.RiskCatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := catalogKey(entry.CatalogType, entry.ScopeID(), entry.RiskID)
	if _, exists := r.entries[key]; exists {
		return nil, goerr.New("catalog entry already exists", goerr.V("key", key))
	}

	now := time.Now().UTC()
	created := cloneEntry(entry)
	created.Version = 1
	created.CreatedAt = now
	created.UpdatedAt = now

	r.entries[key] = created
	return cloneEntry(created), nil
}

func (r *catalogRepository) GetByRiskID(ctx context.Context, riskID types.RiskID) ([]*model.RiskCatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*model.RiskCatalogEntry
	for _, e := range r.entries {
		if e.RiskID == riskID {
			entries = append(entries, cloneEntry(e))
		}
	}
	return entries, nil
}

func (r *catalogRepository) ListVisible(ctx context.Context, tenantID types.TenantID, industryID types.IndustryID) ([]*model.RiskCatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*model.RiskCatalogEntry
	for _, e := range r.entries {
		if !e.IsActive {
			continue
		}
		if e.VisibleTo(tenantID, industryID) {
			entries = append(entries, cloneEntry(e))
		}
	}
	return entries, nil
}

func (r *catalogRepository) Update(ctx context.Context, entry *model.RiskCatalogEntry) (*model.RiskCatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := catalogKey(entry.CatalogType, entry.ScopeID(), entry.RiskID)
	existing, exists := r.entries[key]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "catalog entry not found", goerr.V("key", key))
	}

	updated := cloneEntry(entry)
	updated.Version = existing.Version + 1
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.entries[key] = updated
	return cloneEntry(updated), nil
}

func (r *catalogRepository) Delete(ctx context.Context, catalogType types.CatalogType, scopeID string, riskID types.RiskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := catalogKey(catalogType, scopeID, riskID)
	if _, exists := r.entries[key]; !exists {
		return goerr.Wrap(model.ErrNotFound, "catalog entry not found", goerr.V("key", key))
	}

	delete(r.entries, key)
	return nil
}
