package types

import "fmt"

// RiskLifecycleState represents the lifecycle state of a detected risk on
// an opportunity
type RiskLifecycleState string

const (
	RiskStateIdentified   RiskLifecycleState = "identified"
	RiskStateAcknowledged RiskLifecycleState = "acknowledged"
	RiskStateMitigated    RiskLifecycleState = "mitigated"
	RiskStateAccepted     RiskLifecycleState = "accepted"
	RiskStateClosed       RiskLifecycleState = "closed"
)

// AllRiskLifecycleStates returns all valid risk lifecycle states
func AllRiskLifecycleStates() []RiskLifecycleState {
	return []RiskLifecycleState{
		RiskStateIdentified,
		RiskStateAcknowledged,
		RiskStateMitigated,
		RiskStateAccepted,
		RiskStateClosed,
	}
}

// IsValid checks if the risk lifecycle state is valid
func (s RiskLifecycleState) IsValid() bool {
	switch s {
	case RiskStateIdentified,
		RiskStateAcknowledged,
		RiskStateMitigated,
		RiskStateAccepted,
		RiskStateClosed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the state ends the risk's lifecycle on the
// opportunity. Terminal risks keep their state across re-evaluations.
func (s RiskLifecycleState) IsTerminal() bool {
	return s == RiskStateAccepted || s == RiskStateClosed
}

// String returns the string representation of the risk lifecycle state
func (s RiskLifecycleState) String() string {
	return string(s)
}

// ParseRiskLifecycleState parses a string into a RiskLifecycleState
func ParseRiskLifecycleState(s string) (RiskLifecycleState, error) {
	state := RiskLifecycleState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid risk lifecycle state: %s", s)
	}
	return state, nil
}
