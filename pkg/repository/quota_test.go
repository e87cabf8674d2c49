package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

func testQuota(tenantID string, quotaType types.QuotaType) *model.Quota {
	q := &model.Quota{
		TenantID:  types.TenantID(tenantID),
		QuotaType: quotaType,
		Period: model.QuotaPeriod{
			Type:      types.PeriodQuarter,
			StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		Target: model.QuotaTarget{
			Amount:           1000000,
			Currency:         "USD",
			OpportunityCount: 10,
		},
	}
	switch quotaType {
	case types.QuotaTypeUser:
		q.TargetUserID = "user-1"
	case types.QuotaTypeTeam:
		q.TeamID = "team-east"
	}
	return q
}

func runQuotaRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Quota().Create(ctx, testQuota("acme", types.QuotaTypeTenant))
		if err != nil {
			t.Fatalf("failed to create quota: %v", err)
		}
		if created.ID == "" {
			t.Error("expected generated ID")
		}
		if created.CreatedAt.IsZero() {
			t.Error("expected non-zero CreatedAt")
		}
	})

	t.Run("ListChildren returns direct children only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		parent, err := repo.Quota().Create(ctx, testQuota("acme", types.QuotaTypeTenant))
		if err != nil {
			t.Fatalf("failed to create parent quota: %v", err)
		}

		team := testQuota("acme", types.QuotaTypeTeam)
		team.ParentQuotaID = parent.ID
		teamQuota, err := repo.Quota().Create(ctx, team)
		if err != nil {
			t.Fatalf("failed to create team quota: %v", err)
		}

		user := testQuota("acme", types.QuotaTypeUser)
		user.ParentQuotaID = teamQuota.ID
		if _, err := repo.Quota().Create(ctx, user); err != nil {
			t.Fatalf("failed to create user quota: %v", err)
		}

		children, err := repo.Quota().ListChildren(ctx, parent.ID)
		if err != nil {
			t.Fatalf("failed to list children: %v", err)
		}
		if len(children) != 1 {
			t.Fatalf("expected 1 direct child, got %d", len(children))
		}
		if children[0].ID != teamQuota.ID {
			t.Errorf("expected child %s, got %s", teamQuota.ID, children[0].ID)
		}
	})

	t.Run("Update preserves performance cache", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Quota().Create(ctx, testQuota("acme", types.QuotaTypeTenant))
		if err != nil {
			t.Fatalf("failed to create quota: %v", err)
		}

		perf := model.QuotaPerformance{
			Actual:       400000,
			Forecasted:   600000,
			RiskAdjusted: 520000,
			Attainment:   0.4,
			CalculatedAt: time.Now().UTC(),
		}
		if _, err := repo.Quota().UpdatePerformance(ctx, created.ID, perf); err != nil {
			t.Fatalf("failed to update performance: %v", err)
		}

		created.Target.Amount = 1200000
		updated, err := repo.Quota().Update(ctx, created)
		if err != nil {
			t.Fatalf("failed to update quota: %v", err)
		}
		if updated.Target.Amount != 1200000 {
			t.Errorf("expected target 1200000, got %f", updated.Target.Amount)
		}
		if updated.Performance.Actual != 400000 {
			t.Errorf("expected performance preserved, got actual=%f", updated.Performance.Actual)
		}
	})

	t.Run("UpdatePerformance overwrites the cache", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Quota().Create(ctx, testQuota("acme", types.QuotaTypeTenant))
		if err != nil {
			t.Fatalf("failed to create quota: %v", err)
		}

		updated, err := repo.Quota().UpdatePerformance(ctx, created.ID, model.QuotaPerformance{
			Actual:       900000,
			Attainment:   0.9,
			CalculatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("failed to update performance: %v", err)
		}
		if updated.Performance.Attainment != 0.9 {
			t.Errorf("expected attainment 0.9, got %f", updated.Performance.Attainment)
		}
	})

	t.Run("Get and Delete handle missing quota", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if _, err := repo.Quota().Get(ctx, model.NewQuotaID()); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.Quota().Delete(ctx, model.NewQuotaID()); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List returns only the tenant's quotas", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if _, err := repo.Quota().Create(ctx, testQuota("acme", types.QuotaTypeTenant)); err != nil {
			t.Fatalf("failed to create quota: %v", err)
		}
		if _, err := repo.Quota().Create(ctx, testQuota("globex", types.QuotaTypeTenant)); err != nil {
			t.Fatalf("failed to create quota: %v", err)
		}

		quotas, err := repo.Quota().List(ctx, "acme")
		if err != nil {
			t.Fatalf("failed to list quotas: %v", err)
		}
		if len(quotas) != 1 {
			t.Fatalf("expected 1 quota, got %d", len(quotas))
		}
		if quotas[0].TenantID != "acme" {
			t.Errorf("expected tenant acme, got %s", quotas[0].TenantID)
		}
	})
}

func TestMemoryQuotaRepository(t *testing.T) {
	runQuotaRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreQuotaRepository(t *testing.T) {
	runQuotaRepositoryTest(t, newFirestoreRepository)
}
