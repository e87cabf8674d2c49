package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// CatalogSeed is the TOML representation of the global risk catalog. The
// seed command loads it and upserts every risk as a global catalog entry.
type CatalogSeed struct {
	Risks []SeedRisk `toml:"risk"`
}

// SeedRisk is one risk definition in the seed file
type SeedRisk struct {
	ID          string        `toml:"id"`
	Name        string        `toml:"name"`
	Description string        `toml:"description"`
	Category    string        `toml:"category"`
	Ponderation float64       `toml:"ponderation"`
	Detection   SeedDetection `toml:"detection"`
}

// SeedDetection is the detection rule of a seeded risk
type SeedDetection struct {
	Kind   string         `toml:"kind"`
	Params map[string]any `toml:"params"`
}

// Validate checks if the SeedRisk is valid
func (r *SeedRisk) Validate() error {
	if err := types.RiskID(r.ID).Validate(); err != nil {
		return goerr.Wrap(err, "invalid risk ID", goerr.V("id", r.ID))
	}
	if r.Name == "" {
		return goerr.Wrap(ErrMissingName, "risk name is required", goerr.V("id", r.ID))
	}
	if !types.RiskCategory(r.Category).IsValid() {
		return goerr.Wrap(ErrInvalidCategory, "unknown risk category",
			goerr.V("id", r.ID), goerr.V("category", r.Category))
	}
	if r.Ponderation < 0 || r.Ponderation > 1 {
		return goerr.Wrap(ErrInvalidPonderation, "ponderation must be in [0, 1]",
			goerr.V("id", r.ID), goerr.V("ponderation", r.Ponderation))
	}
	if r.Detection.Kind == "" {
		return goerr.Wrap(ErrMissingDetectionRule, "detection rule kind is required", goerr.V("id", r.ID))
	}
	return nil
}

// Validate checks if the CatalogSeed is valid
func (s *CatalogSeed) Validate() error {
	seen := make(map[string]bool)
	for _, risk := range s.Risks {
		if err := risk.Validate(); err != nil {
			return goerr.Wrap(err, "invalid risk definition")
		}
		if seen[risk.ID] {
			return goerr.Wrap(ErrDuplicateRiskID, "duplicate risk ID", goerr.V("id", risk.ID))
		}
		seen[risk.ID] = true
	}
	return nil
}

// Entries converts the seed into global catalog entries
func (s *CatalogSeed) Entries() []*model.RiskCatalogEntry {
	entries := make([]*model.RiskCatalogEntry, len(s.Risks))
	for i, risk := range s.Risks {
		entries[i] = &model.RiskCatalogEntry{
			RiskID:             types.RiskID(risk.ID),
			CatalogType:        types.CatalogTypeGlobal,
			Name:               risk.Name,
			Description:        risk.Description,
			Category:           types.RiskCategory(risk.Category),
			DefaultPonderation: risk.Ponderation,
			DetectionRule: model.DetectionRule{
				Kind:   risk.Detection.Kind,
				Params: risk.Detection.Params,
			},
			IsActive: true,
		}
	}
	return entries
}

// LoadCatalogSeed loads the global risk catalog seed from a TOML file
func LoadCatalogSeed(path string) (*CatalogSeed, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(ErrConfigNotFound, "failed to read seed file", goerr.V("path", path))
	}

	var seed CatalogSeed
	if err := toml.Unmarshal(data, &seed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML seed", goerr.V("path", path))
	}

	if err := seed.Validate(); err != nil {
		return nil, goerr.Wrap(err, "seed validation failed", goerr.V("path", path))
	}

	return &seed, nil
}
