package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for seed file validation
var (
	ErrConfigNotFound       = goerr.New("seed file not found")
	ErrDuplicateRiskID      = goerr.New("duplicate risk ID")
	ErrMissingName          = goerr.New("name is required")
	ErrInvalidCategory      = goerr.New("invalid risk category")
	ErrInvalidPonderation   = goerr.New("invalid ponderation")
	ErrMissingDetectionRule = goerr.New("detection rule is required")
)
