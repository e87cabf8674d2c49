package interfaces

import (
	"context"

	"github.com/revlens-lab/revlens/pkg/domain/model"
)

// Detection is the outcome of running one catalog entry's detection rule
// against an opportunity
type Detection struct {
	// Confidence is the detector's certainty in [0, 1] that the risk
	// applies. Zero means the risk was not detected.
	Confidence float64

	// Warnings are early warning signals the rule chose to raise
	Warnings []model.EarlyWarningSignal
}

// Detector turns an opportunity plus a catalog entry's detection rule into
// a confidence. Implementations may be rule engines or external
// classifiers; the evaluation writer treats them as opaque.
type Detector interface {
	Detect(ctx context.Context, entry *model.RiskCatalogEntry, opp *model.Opportunity) (*Detection, error)
}

// Notifier dispatches early warning alerts to an external channel
type Notifier interface {
	NotifyWarning(ctx context.Context, opp *model.Opportunity, signal model.EarlyWarningSignal) error
}

// Archiver persists expired snapshots to long-term storage before pruning
type Archiver interface {
	Archive(ctx context.Context, snapshots []*model.RiskSnapshot) error
}
