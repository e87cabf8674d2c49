package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
	"github.com/revlens-lab/revlens/pkg/utils/safe"
)

// Archiver writes expired snapshots to a GCS bucket before they are
// pruned from the primary store. One object per opportunity and batch.
type Archiver struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

var _ interfaces.Archiver = (*Archiver)(nil)

// Option is a functional option for Archiver configuration
type Option func(*Archiver)

// WithPrefix sets the object name prefix (default "snapshots")
func WithPrefix(prefix string) Option {
	return func(a *Archiver) {
		a.prefix = prefix
	}
}

// WithClock overrides the batch timestamp source, mainly for testing
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) {
		a.now = now
	}
}

// New creates a GCS-backed archiver
func New(ctx context.Context, bucket string, opts ...Option) (*Archiver, error) {
	if bucket == "" {
		return nil, goerr.New("archive bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	a := &Archiver{
		client: client,
		bucket: bucket,
		prefix: "snapshots",
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Archive writes the snapshots as JSON batch objects, grouped by
// opportunity. A failed object fails the whole call so the caller does
// not prune snapshots that were never archived.
func (a *Archiver) Archive(ctx context.Context, snapshots []*model.RiskSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	byOpportunity := make(map[model.OpportunityID][]*model.RiskSnapshot)
	for _, snap := range snapshots {
		byOpportunity[snap.OpportunityID] = append(byOpportunity[snap.OpportunityID], snap)
	}

	stamp := a.now()
	for oppID, batch := range byOpportunity {
		name := a.objectName(oppID, stamp)
		if err := a.writeObject(ctx, name, batch); err != nil {
			return goerr.Wrap(err, "failed to archive snapshot batch",
				goerr.V("object", name),
				goerr.V("opportunityID", oppID),
				goerr.V("count", len(batch)))
		}
		logging.From(ctx).Debug("archived snapshot batch",
			"object", name, "count", len(batch))
	}
	return nil
}

// Close releases the underlying storage client
func (a *Archiver) Close() error {
	return a.client.Close()
}

func (a *Archiver) objectName(oppID model.OpportunityID, stamp time.Time) string {
	return fmt.Sprintf("%s/%s/%s.json", a.prefix, oppID, stamp.Format("20060102T150405Z"))
}

func (a *Archiver) writeObject(ctx context.Context, name string, batch []*model.RiskSnapshot) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal snapshots")
	}

	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to write object")
	}
	return w.Close()
}
