package types

import "fmt"

// OpportunityStage represents the sales stage of an opportunity
type OpportunityStage string

const (
	StageOpen OpportunityStage = "open"
	StageWon  OpportunityStage = "won"
	StageLost OpportunityStage = "lost"
)

// AllOpportunityStages returns all valid opportunity stages
func AllOpportunityStages() []OpportunityStage {
	return []OpportunityStage{
		StageOpen,
		StageWon,
		StageLost,
	}
}

// IsValid checks if the opportunity stage is valid
func (s OpportunityStage) IsValid() bool {
	switch s {
	case StageOpen, StageWon, StageLost:
		return true
	default:
		return false
	}
}

// Normalize returns the stage, treating empty as StageOpen
func (s OpportunityStage) Normalize() OpportunityStage {
	if s == "" {
		return StageOpen
	}
	return s
}

// String returns the string representation of the opportunity stage
func (s OpportunityStage) String() string {
	return string(s)
}

// ParseOpportunityStage parses a string into an OpportunityStage
func ParseOpportunityStage(s string) (OpportunityStage, error) {
	stage := OpportunityStage(s)
	if !stage.IsValid() {
		return "", fmt.Errorf("invalid opportunity stage: %s", s)
	}
	return stage, nil
}

// OpportunityType represents the kind of deal (e.g. new-business, renewal)
type OpportunityType string

// Validate checks if the OpportunityType is valid
func (t OpportunityType) Validate() error {
	if t == "" {
		return nil // optional
	}
	if !idPattern.MatchString(string(t)) {
		return fmt.Errorf("opportunity type must be lowercase alphanumeric with hyphens: %s", t)
	}
	return nil
}

// String returns the string representation of the opportunity type
func (t OpportunityType) String() string {
	return string(t)
}
