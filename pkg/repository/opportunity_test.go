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

func runOpportunityRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and zero eval version", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Opportunity().Create(ctx, testOpportunity("acme"))
		if err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}
		if created.ID == "" {
			t.Error("expected generated ID")
		}
		if created.EvalVersion != 0 {
			t.Errorf("expected EvalVersion=0, got %d", created.EvalVersion)
		}
		if created.Evaluation != nil {
			t.Error("expected no evaluation on a fresh opportunity")
		}
		if created.CreatedAt.IsZero() {
			t.Error("expected non-zero CreatedAt")
		}
	})

	t.Run("Get returns ErrNotFound for missing opportunity", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Opportunity().Get(ctx, model.NewOpportunityID())
		if !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List filters by owner, team and stage", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mine := testOpportunity("acme")
		if _, err := repo.Opportunity().Create(ctx, mine); err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}

		other := testOpportunity("acme")
		other.Name = "Globex expansion"
		other.OwnerID = "user-2"
		other.TeamID = "team-west"
		other.Stage = types.StageWon
		if _, err := repo.Opportunity().Create(ctx, other); err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}

		foreign := testOpportunity("globex")
		if _, err := repo.Opportunity().Create(ctx, foreign); err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}

		all, err := repo.Opportunity().List(ctx, "acme")
		if err != nil {
			t.Fatalf("failed to list opportunities: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 opportunities, got %d", len(all))
		}

		byOwner, err := repo.Opportunity().List(ctx, "acme", interfaces.WithOwner("user-1"))
		if err != nil {
			t.Fatalf("failed to list by owner: %v", err)
		}
		if len(byOwner) != 1 || byOwner[0].OwnerID != "user-1" {
			t.Errorf("expected 1 opportunity owned by user-1, got %d", len(byOwner))
		}

		byTeam, err := repo.Opportunity().List(ctx, "acme", interfaces.WithTeam("team-west"))
		if err != nil {
			t.Fatalf("failed to list by team: %v", err)
		}
		if len(byTeam) != 1 || byTeam[0].TeamID != "team-west" {
			t.Errorf("expected 1 opportunity of team-west, got %d", len(byTeam))
		}

		byStage, err := repo.Opportunity().List(ctx, "acme", interfaces.WithStage(types.StageWon))
		if err != nil {
			t.Fatalf("failed to list by stage: %v", err)
		}
		if len(byStage) != 1 || byStage[0].Stage != types.StageWon {
			t.Errorf("expected 1 won opportunity, got %d", len(byStage))
		}
	})

	t.Run("Update does not touch evaluation state", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Opportunity().Create(ctx, testOpportunity("acme"))
		if err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}
		evaluated, err := repo.Opportunity().UpdateEvaluation(ctx, created.ID, 0, testEvaluation(0.4), nil)
		if err != nil {
			t.Fatalf("failed to update evaluation: %v", err)
		}

		evaluated.DealValue = 300000
		evaluated.Evaluation = nil // must be ignored
		updated, err := repo.Opportunity().Update(ctx, evaluated)
		if err != nil {
			t.Fatalf("failed to update opportunity: %v", err)
		}
		if updated.DealValue != 300000 {
			t.Errorf("expected deal value 300000, got %f", updated.DealValue)
		}
		if updated.Evaluation == nil {
			t.Fatal("expected evaluation preserved across metadata update")
		}
		if updated.Evaluation.RiskScore != 0.4 {
			t.Errorf("expected risk score 0.4, got %f", updated.Evaluation.RiskScore)
		}
		if updated.EvalVersion != 1 {
			t.Errorf("expected EvalVersion=1, got %d", updated.EvalVersion)
		}
	})

	t.Run("UpdateEvaluation increments version", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Opportunity().Create(ctx, testOpportunity("acme"))
		if err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}

		first, err := repo.Opportunity().UpdateEvaluation(ctx, created.ID, 0, testEvaluation(0.4), nil)
		if err != nil {
			t.Fatalf("failed to update evaluation: %v", err)
		}
		if first.EvalVersion != 1 {
			t.Errorf("expected EvalVersion=1, got %d", first.EvalVersion)
		}

		second, err := repo.Opportunity().UpdateEvaluation(ctx, created.ID, 1, testEvaluation(0.6), nil)
		if err != nil {
			t.Fatalf("failed to update evaluation: %v", err)
		}
		if second.EvalVersion != 2 {
			t.Errorf("expected EvalVersion=2, got %d", second.EvalVersion)
		}
		if second.Evaluation.RiskScore != 0.6 {
			t.Errorf("expected risk score 0.6, got %f", second.Evaluation.RiskScore)
		}
	})

	t.Run("UpdateEvaluation rejects stale version", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Opportunity().Create(ctx, testOpportunity("acme"))
		if err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}
		if _, err := repo.Opportunity().UpdateEvaluation(ctx, created.ID, 0, testEvaluation(0.4), nil); err != nil {
			t.Fatalf("failed to update evaluation: %v", err)
		}

		// A concurrent run read version 0 before the first write landed
		_, err = repo.Opportunity().UpdateEvaluation(ctx, created.ID, 0, testEvaluation(0.9), nil)
		if !errors.Is(err, model.ErrConcurrentModification) {
			t.Errorf("expected ErrConcurrentModification, got %v", err)
		}

		got, err := repo.Opportunity().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get opportunity: %v", err)
		}
		if got.Evaluation.RiskScore != 0.4 {
			t.Errorf("expected first evaluation to win, got score %f", got.Evaluation.RiskScore)
		}
	})

	t.Run("UpdateEvaluation commits snapshot with the overwrite", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Opportunity().Create(ctx, testOpportunity("acme"))
		if err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}

		snap := &model.RiskSnapshot{
			OpportunityID: created.ID,
			TenantID:      created.TenantID,
			SnapshotDate:  time.Now().UTC(),
			Evaluation:    *testEvaluation(0.4),
		}
		if _, err := repo.Opportunity().UpdateEvaluation(ctx, created.ID, 0, testEvaluation(0.4), snap); err != nil {
			t.Fatalf("failed to update evaluation: %v", err)
		}

		count, err := repo.Snapshot().CountByOpportunity(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to count snapshots: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 snapshot, got %d", count)
		}
	})

	t.Run("UpdateEvaluation leaves no partial state when the snapshot write fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Opportunity().Create(ctx, testOpportunity("acme"))
		if err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}

		taken := &model.RiskSnapshot{
			ID:            model.NewSnapshotID(),
			OpportunityID: created.ID,
			TenantID:      created.TenantID,
			SnapshotDate:  time.Now().UTC(),
			Evaluation:    *testEvaluation(0.4),
		}
		if _, err := repo.Snapshot().Append(ctx, taken); err != nil {
			t.Fatalf("failed to append snapshot: %v", err)
		}

		// The colliding ID makes the snapshot write fail; the evaluation
		// overwrite must fail with it
		colliding := &model.RiskSnapshot{
			ID:            taken.ID,
			OpportunityID: created.ID,
			TenantID:      created.TenantID,
			SnapshotDate:  time.Now().UTC(),
			Evaluation:    *testEvaluation(0.9),
		}
		if _, err := repo.Opportunity().UpdateEvaluation(ctx, created.ID, 0, testEvaluation(0.9), colliding); err == nil {
			t.Fatal("expected snapshot collision to fail the commit")
		}

		got, err := repo.Opportunity().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get opportunity: %v", err)
		}
		if got.EvalVersion != 0 {
			t.Errorf("expected EvalVersion=0 after failed commit, got %d", got.EvalVersion)
		}
		if got.Evaluation != nil {
			t.Error("expected evaluation untouched after failed commit")
		}
		count, err := repo.Snapshot().CountByOpportunity(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to count snapshots: %v", err)
		}
		if count != 1 {
			t.Errorf("expected only the pre-existing snapshot, got %d", count)
		}
	})

	t.Run("early warnings append and update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Opportunity().Create(ctx, testOpportunity("acme"))
		if err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}

		signal := model.EarlyWarningSignal{
			ID:       model.NewSignalID(),
			RiskID:   "missing-sponsor",
			Title:    "Sponsor went silent",
			Severity: "high",
			Status:   types.SignalStatusActive,
			RaisedBy: "detector",
			RaisedAt: time.Now().UTC(),
		}
		if err := repo.Opportunity().AppendEarlyWarnings(ctx, created.ID, []model.EarlyWarningSignal{signal}); err != nil {
			t.Fatalf("failed to append early warning: %v", err)
		}

		signal.Status = types.SignalStatusAcknowledged
		signal.AcknowledgedBy = "user-1"
		now := time.Now().UTC()
		signal.AcknowledgedAt = &now
		if err := repo.Opportunity().UpdateEarlyWarning(ctx, created.ID, signal); err != nil {
			t.Fatalf("failed to update early warning: %v", err)
		}

		got, err := repo.Opportunity().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get opportunity: %v", err)
		}
		if len(got.EarlyWarnings) != 1 {
			t.Fatalf("expected 1 early warning, got %d", len(got.EarlyWarnings))
		}
		if got.EarlyWarnings[0].Status != types.SignalStatusAcknowledged {
			t.Errorf("expected acknowledged status, got %s", got.EarlyWarnings[0].Status)
		}

		missing := signal
		missing.ID = model.NewSignalID()
		if err := repo.Opportunity().UpdateEarlyWarning(ctx, created.ID, missing); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown signal, got %v", err)
		}
	})

	t.Run("mitigation actions append and update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Opportunity().Create(ctx, testOpportunity("acme"))
		if err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}

		action := model.MitigationAction{
			ID:         model.NewActionID(),
			RiskID:     "missing-sponsor",
			Title:      "Schedule exec briefing",
			AssigneeID: "user-1",
			Status:     types.ActionStatusPlanned,
			CreatedBy:  "user-1",
			CreatedAt:  time.Now().UTC(),
		}
		if err := repo.Opportunity().AppendMitigationAction(ctx, created.ID, action); err != nil {
			t.Fatalf("failed to append mitigation action: %v", err)
		}

		action.Status = types.ActionStatusCompleted
		now := time.Now().UTC()
		action.CompletedAt = &now
		if err := repo.Opportunity().UpdateMitigationAction(ctx, created.ID, action); err != nil {
			t.Fatalf("failed to update mitigation action: %v", err)
		}

		got, err := repo.Opportunity().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get opportunity: %v", err)
		}
		if len(got.MitigationActions) != 1 {
			t.Fatalf("expected 1 mitigation action, got %d", len(got.MitigationActions))
		}
		if got.MitigationActions[0].Status != types.ActionStatusCompleted {
			t.Errorf("expected completed status, got %s", got.MitigationActions[0].Status)
		}
	})

	t.Run("Delete removes the opportunity", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Opportunity().Create(ctx, testOpportunity("acme"))
		if err != nil {
			t.Fatalf("failed to create opportunity: %v", err)
		}
		if err := repo.Opportunity().Delete(ctx, created.ID); err != nil {
			t.Fatalf("failed to delete opportunity: %v", err)
		}
		if _, err := repo.Opportunity().Get(ctx, created.ID); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestMemoryOpportunityRepository(t *testing.T) {
	runOpportunityRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreOpportunityRepository(t *testing.T) {
	runOpportunityRepositoryTest(t, newFirestoreRepository)
}
