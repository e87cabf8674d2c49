package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/model"
)

type snapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[model.SnapshotID]*model.RiskSnapshot
}

func newSnapshotRepository() *snapshotRepository {
	return &snapshotRepository{
		snapshots: make(map[model.SnapshotID]*model.RiskSnapshot),
	}
}

func cloneSnapshot(s *model.RiskSnapshot) *model.RiskSnapshot {
	c := *s
	c.Evaluation = *s.Evaluation.Clone()
	return &c
}

func (r *snapshotRepository) Append(ctx context.Context, snapshot *model.RiskSnapshot) (*model.RiskSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := cloneSnapshot(snapshot)
	if created.ID == "" {
		created.ID = model.NewSnapshotID()
	}
	if _, exists := r.snapshots[created.ID]; exists {
		return nil, goerr.New("snapshot already exists", goerr.V("id", created.ID))
	}
	created.CreatedAt = time.Now().UTC()

	r.snapshots[created.ID] = created
	return cloneSnapshot(created), nil
}

func (r *snapshotRepository) Get(ctx context.Context, id model.SnapshotID) (*model.RiskSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.snapshots[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "snapshot not found", goerr.V("id", id))
	}
	return cloneSnapshot(s), nil
}

func (r *snapshotRepository) ListByOpportunity(ctx context.Context, oppID model.OpportunityID) ([]*model.RiskSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.RiskSnapshot
	for _, s := range r.snapshots {
		if s.OpportunityID == oppID {
			result = append(result, cloneSnapshot(s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SnapshotDate.After(result[j].SnapshotDate)
	})
	return result, nil
}

func (r *snapshotRepository) CountByOpportunity(ctx context.Context, oppID model.OpportunityID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, s := range r.snapshots {
		if s.OpportunityID == oppID {
			count++
		}
	}
	return count, nil
}

func (r *snapshotRepository) ListOlderThan(ctx context.Context, oppID model.OpportunityID, cutoff time.Time) ([]*model.RiskSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.RiskSnapshot
	for _, s := range r.snapshots {
		if s.OpportunityID == oppID && s.SnapshotDate.Before(cutoff) {
			result = append(result, cloneSnapshot(s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SnapshotDate.Before(result[j].SnapshotDate)
	})
	return result, nil
}

func (r *snapshotRepository) Delete(ctx context.Context, id model.SnapshotID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.snapshots[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "snapshot not found", goerr.V("id", id))
	}

	delete(r.snapshots, id)
	return nil
}
