package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// RiskCatalogEntry is a risk definition shared by many evaluations. Entries
// are owned globally, per industry or per tenant; evaluations reference
// them by RiskID.
type RiskCatalogEntry struct {
	RiskID             types.RiskID          `json:"risk_id"`
	CatalogType        types.CatalogType     `json:"catalog_type"`
	TenantID           types.TenantID        `json:"tenant_id,omitempty"`   // set when CatalogType is tenant
	IndustryID         types.IndustryID      `json:"industry_id,omitempty"` // set when CatalogType is industry
	Name               string                `json:"name"`
	Description        string                `json:"description,omitempty"`
	Category           types.RiskCategory    `json:"category"`
	DefaultPonderation float64               `json:"default_ponderation"`
	DetectionRule      DetectionRule         `json:"detection_rule"`
	Ponderations       []PonderationOverride `json:"ponderations,omitempty"`
	IsActive           bool                  `json:"is_active"`
	Version            int64                 `json:"version"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// DetectionRule is an opaque descriptor for the detection engine. The kind
// selects a detector implementation; params are interpreted by it.
type DetectionRule struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params,omitempty"`
}

// PonderationOverride is a scope-specific weight override with a
// time-bounded validity window [EffectiveFrom, EffectiveTo).
type PonderationOverride struct {
	Scope         types.PonderationScope `json:"scope"`
	ScopeID       string                 `json:"scope_id"`
	Ponderation   float64                `json:"ponderation"`
	EffectiveFrom time.Time              `json:"effective_from"`
	EffectiveTo   *time.Time             `json:"effective_to,omitempty"` // nil means open-ended
	CreatedAt     time.Time              `json:"created_at"`
}

// AppliesAt reports whether the override's validity window contains t.
func (p *PonderationOverride) AppliesAt(t time.Time) bool {
	if t.Before(p.EffectiveFrom) {
		return false
	}
	if p.EffectiveTo != nil && !t.Before(*p.EffectiveTo) {
		return false
	}
	return true
}

// Validate checks structural invariants of the catalog entry
func (e *RiskCatalogEntry) Validate() error {
	if err := e.RiskID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid risk ID")
	}
	if !e.CatalogType.IsValid() {
		return goerr.New("invalid catalog type", goerr.V("catalogType", e.CatalogType))
	}
	if e.Name == "" {
		return goerr.New("catalog entry name is required", goerr.V("riskID", e.RiskID))
	}
	if !e.Category.IsValid() {
		return goerr.New("invalid risk category", goerr.V("riskID", e.RiskID), goerr.V("category", e.Category))
	}
	if e.DefaultPonderation < 0 || e.DefaultPonderation > 1 {
		return goerr.New("default ponderation must be in [0, 1]",
			goerr.V("riskID", e.RiskID), goerr.V("ponderation", e.DefaultPonderation))
	}
	switch e.CatalogType {
	case types.CatalogTypeTenant:
		if e.TenantID == "" {
			return goerr.New("tenant catalog entry requires tenant ID", goerr.V("riskID", e.RiskID))
		}
	case types.CatalogTypeIndustry:
		if e.IndustryID == "" {
			return goerr.New("industry catalog entry requires industry ID", goerr.V("riskID", e.RiskID))
		}
	}
	for i, p := range e.Ponderations {
		if !p.Scope.IsValid() {
			return goerr.New("invalid ponderation override scope",
				goerr.V("riskID", e.RiskID), goerr.V("index", i), goerr.V("scope", p.Scope))
		}
		if p.Ponderation < 0 || p.Ponderation > 1 {
			return goerr.New("override ponderation must be in [0, 1]",
				goerr.V("riskID", e.RiskID), goerr.V("index", i), goerr.V("ponderation", p.Ponderation))
		}
		if p.EffectiveTo != nil && !p.EffectiveTo.After(p.EffectiveFrom) {
			return goerr.New("override validity window is empty",
				goerr.V("riskID", e.RiskID), goerr.V("index", i))
		}
	}
	return nil
}

// ScopeID returns the identifier of the entry's owning scope: the tenant
// ID for tenant entries, the industry ID for industry entries, empty for
// global ones.
func (e *RiskCatalogEntry) ScopeID() string {
	switch e.CatalogType {
	case types.CatalogTypeTenant:
		return e.TenantID.String()
	case types.CatalogTypeIndustry:
		return e.IndustryID.String()
	default:
		return ""
	}
}

// VisibleTo reports whether the entry can be resolved by the given tenant
// and industry. Global entries are visible to everyone, industry entries to
// matching industries, tenant entries only to the owning tenant.
func (e *RiskCatalogEntry) VisibleTo(tenantID types.TenantID, industryID types.IndustryID) bool {
	switch e.CatalogType {
	case types.CatalogTypeGlobal:
		return true
	case types.CatalogTypeIndustry:
		return e.IndustryID == industryID
	case types.CatalogTypeTenant:
		return e.TenantID == tenantID
	default:
		return false
	}
}
