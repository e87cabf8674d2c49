package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// TenantID represents a unique identifier for a tenant
type TenantID string

// Validate checks if the TenantID is valid
func (t TenantID) Validate() error {
	if t == "" {
		return goerr.New("tenant ID cannot be empty")
	}
	if !idPattern.MatchString(string(t)) {
		return goerr.New("tenant ID must be lowercase alphanumeric with hyphens", goerr.V("id", t))
	}
	return nil
}

// String returns the string representation of TenantID
func (t TenantID) String() string {
	return string(t)
}

// IndustryID represents a unique identifier for an industry segment
type IndustryID string

// Validate checks if the IndustryID is valid
func (i IndustryID) Validate() error {
	if i == "" {
		return goerr.New("industry ID cannot be empty")
	}
	if !idPattern.MatchString(string(i)) {
		return goerr.New("industry ID must be lowercase alphanumeric with hyphens", goerr.V("id", i))
	}
	return nil
}

// String returns the string representation of IndustryID
func (i IndustryID) String() string {
	return string(i)
}
