package types_test

import (
	"testing"

	"github.com/revlens-lab/revlens/pkg/domain/types"
)

func TestRiskID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.RiskID
		wantErr bool
	}{
		{"valid lowercase", "stalled-procurement", false},
		{"valid single word", "churn", false},
		{"valid with numbers", "risk-123", false},
		{"empty", "", true},
		{"uppercase", "Stalled-Procurement", true},
		{"spaces", "stalled procurement", true},
		{"underscore", "stalled_procurement", true},
		{"starting with hyphen", "-stalled", true},
		{"ending with hyphen", "stalled-", true},
		{"double hyphen", "stalled--procurement", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("RiskID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTenantID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.TenantID
		wantErr bool
	}{
		{"valid", "acme-corp", false},
		{"empty", "", true},
		{"uppercase", "Acme", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("TenantID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPonderationScope_Specificity(t *testing.T) {
	if types.ScopeOpportunityType.Specificity() <= types.ScopeIndustry.Specificity() {
		t.Error("opportunity_type scope must be more specific than industry")
	}
	if types.ScopeIndustry.Specificity() <= types.ScopeTenant.Specificity() {
		t.Error("industry scope must be more specific than tenant")
	}
	if types.PonderationScope("bogus").Specificity() != 0 {
		t.Error("unknown scope must rank lowest")
	}
}

func TestCatalogType_IsValid(t *testing.T) {
	for _, ct := range types.AllCatalogTypes() {
		if !ct.IsValid() {
			t.Errorf("catalog type %s should be valid", ct)
		}
	}
	if types.CatalogType("shared").IsValid() {
		t.Error("unknown catalog type should be invalid")
	}
}

func TestRiskLifecycleState(t *testing.T) {
	for _, s := range types.AllRiskLifecycleStates() {
		if !s.IsValid() {
			t.Errorf("lifecycle state %s should be valid", s)
		}
	}

	if !types.RiskStateAccepted.IsTerminal() {
		t.Error("accepted should be terminal")
	}
	if !types.RiskStateClosed.IsTerminal() {
		t.Error("closed should be terminal")
	}
	if types.RiskStateAcknowledged.IsTerminal() {
		t.Error("acknowledged should not be terminal")
	}

	if _, err := types.ParseRiskLifecycleState("dismissed"); err == nil {
		t.Error("expected error for unknown lifecycle state")
	}
}

func TestOpportunityStage_Normalize(t *testing.T) {
	if types.OpportunityStage("").Normalize() != types.StageOpen {
		t.Error("empty stage should normalize to open")
	}
	if types.StageWon.Normalize() != types.StageWon {
		t.Error("won stage should stay won")
	}
}

func TestParseRollupScope(t *testing.T) {
	for _, s := range []string{"user", "team", "tenant"} {
		if _, err := types.ParseRollupScope(s); err != nil {
			t.Errorf("ParseRollupScope(%s) unexpected error: %v", s, err)
		}
	}
	if _, err := types.ParseRollupScope("portfolio"); err == nil {
		t.Error("expected error for unknown rollup scope")
	}
}
