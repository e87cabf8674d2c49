package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/repository/memory"
	"github.com/revlens-lab/revlens/pkg/usecase"
)

type fakeArchiver struct {
	archived []*model.RiskSnapshot
	err      error
}

func (f *fakeArchiver) Archive(ctx context.Context, snapshots []*model.RiskSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.archived = append(f.archived, snapshots...)
	return nil
}

func seedSnapshots(t *testing.T, repo *memory.Memory, oppID model.OpportunityID, dates ...time.Time) {
	t.Helper()
	for _, d := range dates {
		_, err := repo.Snapshot().Append(context.Background(), &model.RiskSnapshot{
			OpportunityID: oppID,
			TenantID:      "acme",
			SnapshotDate:  d,
			Evaluation:    model.RiskEvaluation{RiskScore: 0.1, CalculatedAt: d},
		})
		gt.NoError(t, err).Required()
	}
}

func TestPruneSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	archiver := &fakeArchiver{}
	uc := usecase.New(repo, usecase.WithArchiver(archiver))

	oppID := model.NewOpportunityID()
	now := time.Now().UTC()
	seedSnapshots(t, repo, oppID,
		now.Add(-96*time.Hour),
		now.Add(-72*time.Hour),
		now.Add(-1*time.Hour),
	)

	deleted, err := uc.PruneSnapshots(ctx, oppID, now.Add(-24*time.Hour))
	gt.NoError(t, err).Required()
	gt.Value(t, deleted).Equal(2)
	gt.Array(t, archiver.archived).Length(2)

	remaining, err := uc.ListSnapshots(ctx, oppID)
	gt.NoError(t, err).Required()
	gt.Array(t, remaining).Length(1)
}

func TestPruneSnapshotsArchiveFailure(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	archiver := &fakeArchiver{err: errors.New("bucket unavailable")}
	uc := usecase.New(repo, usecase.WithArchiver(archiver))

	oppID := model.NewOpportunityID()
	now := time.Now().UTC()
	seedSnapshots(t, repo, oppID, now.Add(-96*time.Hour))

	_, err := uc.PruneSnapshots(ctx, oppID, now)
	gt.Error(t, err)

	// nothing deleted when the archive step fails
	remaining, err := uc.ListSnapshots(ctx, oppID)
	gt.NoError(t, err).Required()
	gt.Array(t, remaining).Length(1)
}

func TestPruneSnapshotsWithoutArchiver(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)

	oppID := model.NewOpportunityID()
	now := time.Now().UTC()
	seedSnapshots(t, repo, oppID, now.Add(-96*time.Hour))

	deleted, err := uc.PruneSnapshots(ctx, oppID, now)
	gt.NoError(t, err).Required()
	gt.Value(t, deleted).Equal(1)
}
