package types

import "fmt"

// QuotaType represents the assignment level of a quota
type QuotaType string

const (
	QuotaTypeUser   QuotaType = "user"
	QuotaTypeTeam   QuotaType = "team"
	QuotaTypeTenant QuotaType = "tenant"
)

// AllQuotaTypes returns all valid quota types
func AllQuotaTypes() []QuotaType {
	return []QuotaType{
		QuotaTypeUser,
		QuotaTypeTeam,
		QuotaTypeTenant,
	}
}

// IsValid checks if the quota type is valid
func (q QuotaType) IsValid() bool {
	switch q {
	case QuotaTypeUser, QuotaTypeTeam, QuotaTypeTenant:
		return true
	default:
		return false
	}
}

// String returns the string representation of the quota type
func (q QuotaType) String() string {
	return string(q)
}

// ParseQuotaType parses a string into a QuotaType
func ParseQuotaType(s string) (QuotaType, error) {
	q := QuotaType(s)
	if !q.IsValid() {
		return "", fmt.Errorf("invalid quota type: %s", s)
	}
	return q, nil
}

// PeriodType represents the granularity of a quota or benchmark period
type PeriodType string

const (
	PeriodMonth   PeriodType = "month"
	PeriodQuarter PeriodType = "quarter"
	PeriodYear    PeriodType = "year"
)

// IsValid checks if the period type is valid
func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	default:
		return false
	}
}

// String returns the string representation of the period type
func (p PeriodType) String() string {
	return string(p)
}

// RollupScope represents the grouping level of a portfolio rollup
type RollupScope string

const (
	RollupScopeUser   RollupScope = "user"
	RollupScopeTeam   RollupScope = "team"
	RollupScopeTenant RollupScope = "tenant"
)

// IsValid checks if the rollup scope is valid
func (s RollupScope) IsValid() bool {
	switch s {
	case RollupScopeUser, RollupScopeTeam, RollupScopeTenant:
		return true
	default:
		return false
	}
}

// String returns the string representation of the rollup scope
func (s RollupScope) String() string {
	return string(s)
}

// ParsePeriodType parses a string into a PeriodType
func ParsePeriodType(s string) (PeriodType, error) {
	period := PeriodType(s)
	if !period.IsValid() {
		return "", fmt.Errorf("invalid period type: %s", s)
	}
	return period, nil
}

// ParseRollupScope parses a string into a RollupScope
func ParseRollupScope(s string) (RollupScope, error) {
	scope := RollupScope(s)
	if !scope.IsValid() {
		return "", fmt.Errorf("invalid rollup scope: %s", s)
	}
	return scope, nil
}
