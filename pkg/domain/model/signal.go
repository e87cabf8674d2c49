package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// SignalID is a UUID-based identifier for EarlyWarningSignal
type SignalID string

// NewSignalID generates a new UUID v4 SignalID
func NewSignalID() SignalID {
	return SignalID(uuid.New().String())
}

// EarlyWarningSignal is an alert attached to an opportunity, raised by the
// detection engine or a user, and mutated independently of the evaluation
type EarlyWarningSignal struct {
	ID             SignalID           `json:"id"`
	RiskID         types.RiskID       `json:"risk_id,omitempty"` // optional: the risk that raised it
	Title          string             `json:"title"`
	Detail         string             `json:"detail,omitempty"`
	Severity       string             `json:"severity"`
	Status         types.SignalStatus `json:"status"`
	RaisedBy       string             `json:"raised_by"`
	RaisedAt       time.Time          `json:"raised_at"`
	AcknowledgedBy string             `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time         `json:"acknowledged_at,omitempty"`
	ResolvedBy     string             `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time         `json:"resolved_at,omitempty"`
}

// ActionID is a UUID-based identifier for MitigationAction
type ActionID string

// NewActionID generates a new UUID v4 ActionID
func NewActionID() ActionID {
	return ActionID(uuid.New().String())
}

// MitigationAction is a remediation task attached to an opportunity
type MitigationAction struct {
	ID          ActionID           `json:"id"`
	RiskID      types.RiskID       `json:"risk_id,omitempty"` // optional: the risk it mitigates
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	AssigneeID  string             `json:"assignee_id,omitempty"`
	Status      types.ActionStatus `json:"status"`
	DueAt       *time.Time         `json:"due_at,omitempty"`
	CreatedBy   string             `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}
