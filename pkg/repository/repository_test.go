package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/repository/firestore"
	"github.com/revlens-lab/revlens/pkg/repository/memory"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	collection := fmt.Sprintf("shards_test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollection(collection))
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func testCatalogEntry(riskID string) *model.RiskCatalogEntry {
	return &model.RiskCatalogEntry{
		RiskID:             types.RiskID(riskID),
		CatalogType:        types.CatalogTypeGlobal,
		Name:               "Missing executive sponsor",
		Description:        "No champion above director level engaged in the deal",
		Category:           types.RiskCategoryCommercial,
		DefaultPonderation: 0.3,
		DetectionRule: model.DetectionRule{
			Kind:   "threshold",
			Params: map[string]any{"field": "sponsor_level", "max": float64(2)},
		},
		IsActive: true,
	}
}

func testOpportunity(tenantID string) *model.Opportunity {
	return &model.Opportunity{
		TenantID:   types.TenantID(tenantID),
		Name:       "Acme renewal FY26",
		DealValue:  250000,
		Currency:   "USD",
		OwnerID:    "user-1",
		TeamID:     "team-east",
		IndustryID: "saas",
		Stage:      types.StageOpen,
	}
}

func testEvaluation(score float64) *model.RiskEvaluation {
	return &model.RiskEvaluation{
		RiskScore:     score,
		RevenueAtRisk: score * 250000,
		Risks: []model.RiskContribution{
			{
				RiskID:         "missing-sponsor",
				Ponderation:    0.3,
				Confidence:     score,
				Contribution:   0.3 * score,
				LifecycleState: types.RiskStateIdentified,
			},
		},
		CalculatedAt: time.Now().UTC(),
		CalculatedBy: "scheduler",
	}
}
