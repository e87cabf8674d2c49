package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// SnapshotID is a UUID-based identifier for RiskSnapshot
type SnapshotID string

// NewSnapshotID generates a new UUID v4 SnapshotID
func NewSnapshotID() SnapshotID {
	return SnapshotID(uuid.New().String())
}

// RiskSnapshot is an immutable copy of a past RiskEvaluation, keyed to the
// opportunity it snapshots. One snapshot is appended per completed
// evaluation run; snapshots are never updated.
type RiskSnapshot struct {
	ID            SnapshotID     `json:"id"`
	OpportunityID OpportunityID  `json:"opportunity_id"`
	TenantID      types.TenantID `json:"tenant_id"`
	SnapshotDate  time.Time      `json:"snapshot_date"`
	Evaluation    RiskEvaluation `json:"evaluation"`
	CreatedAt     time.Time      `json:"created_at"`
}
