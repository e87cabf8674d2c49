package types

// SignalStatus represents the status of an early warning signal
type SignalStatus string

const (
	SignalStatusActive       SignalStatus = "active"
	SignalStatusAcknowledged SignalStatus = "acknowledged"
	SignalStatusResolved     SignalStatus = "resolved"
)

// IsValid checks if the signal status is valid
func (s SignalStatus) IsValid() bool {
	switch s {
	case SignalStatusActive, SignalStatusAcknowledged, SignalStatusResolved:
		return true
	default:
		return false
	}
}

// String returns the string representation of the signal status
func (s SignalStatus) String() string {
	return string(s)
}

// ActionStatus represents the status of a mitigation action
type ActionStatus string

const (
	ActionStatusPlanned    ActionStatus = "planned"
	ActionStatusInProgress ActionStatus = "in_progress"
	ActionStatusCompleted  ActionStatus = "completed"
	ActionStatusCancelled  ActionStatus = "cancelled"
)

// IsValid checks if the action status is valid
func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusPlanned,
		ActionStatusInProgress,
		ActionStatusCompleted,
		ActionStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action status
func (s ActionStatus) String() string {
	return string(s)
}
