package interfaces

import (
	"context"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// QuotaRepository defines data access for quotas
type QuotaRepository interface {
	// Create creates a new quota
	Create(ctx context.Context, quota *model.Quota) (*model.Quota, error)

	// Get retrieves a quota by ID
	Get(ctx context.Context, id model.QuotaID) (*model.Quota, error)

	// List retrieves all quotas of a tenant
	List(ctx context.Context, tenantID types.TenantID) ([]*model.Quota, error)

	// ListChildren retrieves quotas whose ParentQuotaID is the given ID
	ListChildren(ctx context.Context, parentID model.QuotaID) ([]*model.Quota, error)

	// Update updates quota definition fields. Parent changes that would
	// create a cycle are rejected at the usecase layer before this call.
	Update(ctx context.Context, quota *model.Quota) (*model.Quota, error)

	// UpdatePerformance overwrites the cached performance figures
	UpdatePerformance(ctx context.Context, id model.QuotaID, perf model.QuotaPerformance) (*model.Quota, error)

	// Delete deletes a quota by ID
	Delete(ctx context.Context, id model.QuotaID) error
}
