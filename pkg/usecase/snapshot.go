package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
)

// ListSnapshots returns an opportunity's evaluation history, newest first
func (uc *UseCases) ListSnapshots(ctx context.Context, oppID model.OpportunityID) ([]*model.RiskSnapshot, error) {
	snapshots, err := uc.repo.Snapshot().ListByOpportunity(ctx, oppID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list snapshots", goerr.V("opportunityID", oppID))
	}
	return snapshots, nil
}

// PruneSnapshots deletes snapshots taken before olderThan. When an
// archiver is configured the batch is archived first; an archive failure
// aborts the prune so no history is lost. Returns the number deleted.
func (uc *UseCases) PruneSnapshots(ctx context.Context, oppID model.OpportunityID, olderThan time.Time) (int, error) {
	expired, err := uc.repo.Snapshot().ListOlderThan(ctx, oppID, olderThan)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list expired snapshots", goerr.V("opportunityID", oppID))
	}
	if len(expired) == 0 {
		return 0, nil
	}

	if uc.archiver != nil {
		if err := uc.archiver.Archive(ctx, expired); err != nil {
			return 0, goerr.Wrap(err, "failed to archive snapshots before pruning",
				goerr.V("opportunityID", oppID), goerr.V("count", len(expired)))
		}
	}

	deleted := 0
	for _, snap := range expired {
		if err := uc.repo.Snapshot().Delete(ctx, snap.ID); err != nil {
			logging.From(ctx).Warn("failed to delete expired snapshot",
				"snapshotID", snap.ID, "error", err.Error())
			continue
		}
		deleted++
	}

	logging.From(ctx).Info("pruned snapshots",
		"opportunityID", oppID, "deleted", deleted, "cutoff", olderThan)
	return deleted, nil
}
