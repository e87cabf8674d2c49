package interfaces

import (
	"context"
	"time"

	"github.com/revlens-lab/revlens/pkg/domain/model"
)

// SnapshotRepository defines data access for risk snapshots. Snapshots are
// append-only; there is no update operation by design.
type SnapshotRepository interface {
	// Append stores a new immutable snapshot
	Append(ctx context.Context, snapshot *model.RiskSnapshot) (*model.RiskSnapshot, error)

	// Get retrieves a snapshot by ID
	Get(ctx context.Context, id model.SnapshotID) (*model.RiskSnapshot, error)

	// ListByOpportunity retrieves all snapshots of an opportunity, newest first
	ListByOpportunity(ctx context.Context, oppID model.OpportunityID) ([]*model.RiskSnapshot, error)

	// CountByOpportunity counts the snapshots of an opportunity
	CountByOpportunity(ctx context.Context, oppID model.OpportunityID) (int64, error)

	// ListOlderThan retrieves snapshots of an opportunity taken before cutoff
	ListOlderThan(ctx context.Context, oppID model.OpportunityID, cutoff time.Time) ([]*model.RiskSnapshot, error)

	// Delete removes a snapshot. Used only by retention pruning.
	Delete(ctx context.Context, id model.SnapshotID) error
}
