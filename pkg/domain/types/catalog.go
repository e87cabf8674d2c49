package types

import "fmt"

// CatalogType represents the ownership scope of a risk catalog entry
type CatalogType string

const (
	CatalogTypeGlobal   CatalogType = "global"
	CatalogTypeIndustry CatalogType = "industry"
	CatalogTypeTenant   CatalogType = "tenant"
)

// AllCatalogTypes returns all valid catalog types
func AllCatalogTypes() []CatalogType {
	return []CatalogType{
		CatalogTypeGlobal,
		CatalogTypeIndustry,
		CatalogTypeTenant,
	}
}

// IsValid checks if the catalog type is valid
func (c CatalogType) IsValid() bool {
	switch c {
	case CatalogTypeGlobal,
		CatalogTypeIndustry,
		CatalogTypeTenant:
		return true
	default:
		return false
	}
}

// String returns the string representation of the catalog type
func (c CatalogType) String() string {
	return string(c)
}

// ParseCatalogType parses a string into a CatalogType
func ParseCatalogType(s string) (CatalogType, error) {
	ct := CatalogType(s)
	if !ct.IsValid() {
		return "", fmt.Errorf("invalid catalog type: %s", s)
	}
	return ct, nil
}

// RiskCategory represents the business category of a risk
type RiskCategory string

const (
	RiskCategoryCommercial  RiskCategory = "commercial"
	RiskCategoryTechnical   RiskCategory = "technical"
	RiskCategoryLegal       RiskCategory = "legal"
	RiskCategoryFinancial   RiskCategory = "financial"
	RiskCategoryCompetitive RiskCategory = "competitive"
	RiskCategoryOperational RiskCategory = "operational"
)

// AllRiskCategories returns all valid risk categories
func AllRiskCategories() []RiskCategory {
	return []RiskCategory{
		RiskCategoryCommercial,
		RiskCategoryTechnical,
		RiskCategoryLegal,
		RiskCategoryFinancial,
		RiskCategoryCompetitive,
		RiskCategoryOperational,
	}
}

// IsValid checks if the risk category is valid
func (c RiskCategory) IsValid() bool {
	switch c {
	case RiskCategoryCommercial,
		RiskCategoryTechnical,
		RiskCategoryLegal,
		RiskCategoryFinancial,
		RiskCategoryCompetitive,
		RiskCategoryOperational:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk category
func (c RiskCategory) String() string {
	return string(c)
}

// ParseRiskCategory parses a string into a RiskCategory
func ParseRiskCategory(s string) (RiskCategory, error) {
	c := RiskCategory(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid risk category: %s", s)
	}
	return c, nil
}

// PonderationScope represents the scope of a ponderation override.
// Narrower scopes take precedence over wider ones when resolving the
// effective ponderation: opportunity_type > industry > tenant.
type PonderationScope string

const (
	ScopeTenant          PonderationScope = "tenant"
	ScopeIndustry        PonderationScope = "industry"
	ScopeOpportunityType PonderationScope = "opportunity_type"
)

// IsValid checks if the ponderation scope is valid
func (s PonderationScope) IsValid() bool {
	switch s {
	case ScopeTenant, ScopeIndustry, ScopeOpportunityType:
		return true
	default:
		return false
	}
}

// Specificity returns the precedence rank of the scope. Higher wins.
func (s PonderationScope) Specificity() int {
	switch s {
	case ScopeOpportunityType:
		return 3
	case ScopeIndustry:
		return 2
	case ScopeTenant:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the ponderation scope
func (s PonderationScope) String() string {
	return string(s)
}
