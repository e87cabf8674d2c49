package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

func testQuota(target float64) *model.Quota {
	return &model.Quota{
		ID:        model.NewQuotaID(),
		TenantID:  "acme",
		QuotaType: types.QuotaTypeTenant,
		Period: model.QuotaPeriod{
			Type:      types.PeriodQuarter,
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		Target: model.QuotaTarget{Amount: target, Currency: "USD"},
	}
}

func TestQuota_Attain(t *testing.T) {
	t.Run("riskAdjustedAttainment holds exactly", func(t *testing.T) {
		q := testQuota(500000)
		attainment, riskAdjusted, err := q.Attain(400000, 450000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attainment != 0.8 {
			t.Errorf("attainment = %v, expected 0.8", attainment)
		}
		if riskAdjusted != 0.9 {
			t.Errorf("riskAdjustedAttainment = %v, expected 0.9", riskAdjusted)
		}
	})

	t.Run("zero target returns explicit error", func(t *testing.T) {
		q := testQuota(0)
		_, _, err := q.Attain(100, 100)
		if !errors.Is(err, model.ErrZeroTarget) {
			t.Errorf("expected ErrZeroTarget, got %v", err)
		}
	})

	t.Run("attainment not clamped", func(t *testing.T) {
		q := testQuota(100)
		attainment, riskAdjusted, err := q.Attain(150, -20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attainment != 1.5 {
			t.Errorf("attainment = %v, expected 1.5", attainment)
		}
		if riskAdjusted != -0.2 {
			t.Errorf("riskAdjustedAttainment = %v, expected -0.2", riskAdjusted)
		}
	})
}

func TestQuota_Validate(t *testing.T) {
	t.Run("valid tenant quota", func(t *testing.T) {
		if err := testQuota(1000).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("user quota requires user ID", func(t *testing.T) {
		q := testQuota(1000)
		q.QuotaType = types.QuotaTypeUser
		if err := q.Validate(); err == nil {
			t.Error("expected error for missing target user ID")
		}
	})

	t.Run("self-parent rejected", func(t *testing.T) {
		q := testQuota(1000)
		q.ParentQuotaID = q.ID
		if err := q.Validate(); err == nil {
			t.Error("expected error for self-parent quota")
		}
	})

	t.Run("empty period rejected", func(t *testing.T) {
		q := testQuota(1000)
		q.Period.EndDate = q.Period.StartDate
		if err := q.Validate(); err == nil {
			t.Error("expected error for empty period")
		}
	})
}

func TestQuotaPeriod_Contains(t *testing.T) {
	p := model.QuotaPeriod{
		Type:      types.PeriodMonth,
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	if !p.Contains(p.StartDate) {
		t.Error("start date should be inclusive")
	}
	if p.Contains(p.EndDate) {
		t.Error("end date should be exclusive")
	}
	if p.Contains(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)) {
		t.Error("date before period should not be contained")
	}
}

func TestRiskEvaluation_Clone(t *testing.T) {
	eval := &model.RiskEvaluation{
		RiskScore:     0.3,
		RevenueAtRisk: 30000,
		Risks: []model.RiskContribution{
			{RiskID: "churn", Contribution: 0.3, LifecycleState: types.RiskStateIdentified},
		},
		CalculatedAt: time.Now().UTC(),
	}

	clone := eval.Clone()
	clone.Risks[0].LifecycleState = types.RiskStateAcknowledged

	if eval.Risks[0].LifecycleState != types.RiskStateIdentified {
		t.Error("mutating the clone must not affect the original")
	}

	var nilEval *model.RiskEvaluation
	if nilEval.Clone() != nil {
		t.Error("cloning nil should return nil")
	}
}
