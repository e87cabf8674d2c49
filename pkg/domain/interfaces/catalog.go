package interfaces

import (
	"context"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// CatalogRepository defines data access for risk catalog entries. Entries
// are keyed by (catalog type, scope ID, risk ID); the same risk ID may
// exist at global, industry and tenant level at once.
type CatalogRepository interface {
	// Create creates a new catalog entry with version 1
	Create(ctx context.Context, entry *model.RiskCatalogEntry) (*model.RiskCatalogEntry, error)

	// GetByRiskID retrieves all catalog entries sharing the risk ID,
	// regardless of scope. Callers filter by visibility.
	GetByRiskID(ctx context.Context, riskID types.RiskID) ([]*model.RiskCatalogEntry, error)

	// ListVisible retrieves all active entries visible to the tenant:
	// global entries, entries of the given industry, and the tenant's own
	ListVisible(ctx context.Context, tenantID types.TenantID, industryID types.IndustryID) ([]*model.RiskCatalogEntry, error)

	// Update updates an existing entry in place and bumps its version
	Update(ctx context.Context, entry *model.RiskCatalogEntry) (*model.RiskCatalogEntry, error)

	// Delete removes an entry. Soft-disabling goes through Update with
	// IsActive=false instead.
	Delete(ctx context.Context, catalogType types.CatalogType, scopeID string, riskID types.RiskID) error
}
