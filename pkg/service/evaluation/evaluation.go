package evaluation

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/utils/async"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
)

const (
	// DefaultTimeout bounds one evaluation run. A timed-out run discards
	// its partial result and writes nothing.
	DefaultTimeout = 30 * time.Second

	// maxWriteAttempts bounds the optimistic-concurrency retry loop
	maxWriteAttempts = 3
)

// Writer computes and persists the current risk evaluation of an
// opportunity. Each committed run appends one immutable snapshot of the
// evaluation it wrote, so history survives the overwrite.
type Writer struct {
	repo     interfaces.Repository
	detector interfaces.Detector
	notifier interfaces.Notifier
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*Writer)

// WithNotifier sets the early-warning notifier. Without one, triggered
// warnings are stored but not dispatched.
func WithNotifier(n interfaces.Notifier) Option {
	return func(w *Writer) {
		w.notifier = n
	}
}

// WithTimeout overrides the per-run timeout
func WithTimeout(d time.Duration) Option {
	return func(w *Writer) {
		w.timeout = d
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

func New(repo interfaces.Repository, detector interfaces.Detector, opts ...Option) *Writer {
	w := &Writer{
		repo:     repo,
		detector: detector,
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Evaluate recomputes the opportunity's risk evaluation and commits it.
//
// For every active catalog entry visible to the opportunity's tenant the
// detection rule is run; a failing rule skips that risk and logs, it does
// not fail the run. Detected risks contribute confidence x ponderation;
// the risk score is the contribution sum capped at 1 and revenue at risk
// is dealValue x riskScore.
//
// The commit path is guarded by the opportunity's EvalVersion: the
// overwrite lands only if no other run committed in between, with a
// bounded retry on conflict. A snapshot of the committed evaluation is
// appended in the same atomic write, so the snapshot count always
// equals the number of completed runs and no committed evaluation is
// ever missing from history.
func (w *Writer) Evaluate(ctx context.Context, oppID model.OpportunityID) (*model.RiskEvaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	logger := logging.From(ctx)

	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		opp, err := w.repo.Opportunity().Get(ctx, oppID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get opportunity", goerr.V("id", oppID))
		}

		eval, warnings, err := w.compute(ctx, opp)
		if err != nil {
			return nil, err
		}

		snapshot := &model.RiskSnapshot{
			OpportunityID: oppID,
			TenantID:      opp.TenantID,
			SnapshotDate:  eval.CalculatedAt,
			Evaluation:    *eval,
		}
		committed, err := w.repo.Opportunity().UpdateEvaluation(ctx, oppID, opp.EvalVersion, eval, snapshot)
		if err != nil {
			if errors.Is(err, model.ErrConcurrentModification) {
				logger.Warn("concurrent evaluation detected, retrying",
					"opportunityID", oppID, "attempt", attempt+1)
				lastErr = err
				continue
			}
			return nil, goerr.Wrap(err, "failed to commit evaluation", goerr.V("id", oppID))
		}

		if len(warnings) > 0 {
			if err := w.repo.Opportunity().AppendEarlyWarnings(ctx, oppID, warnings); err != nil {
				return nil, goerr.Wrap(err, "failed to append early warnings", goerr.V("id", oppID))
			}
			w.dispatchWarnings(ctx, committed, warnings)
		}

		return committed.Evaluation, nil
	}

	return nil, goerr.Wrap(lastErr, "evaluation retries exhausted", goerr.V("id", oppID))
}

func (w *Writer) compute(ctx context.Context, opp *model.Opportunity) (*model.RiskEvaluation, []model.EarlyWarningSignal, error) {
	logger := logging.From(ctx)

	entries, err := w.repo.Catalog().ListVisible(ctx, opp.TenantID, opp.IndustryID)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to list catalog entries", goerr.V("tenantID", opp.TenantID))
	}
	// Stable contribution order regardless of backend iteration order
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RiskID < entries[j].RiskID
	})

	asOf := w.now().UTC()
	var contributions []model.RiskContribution
	var warnings []model.EarlyWarningSignal

	for _, entry := range entries {
		detection, err := w.detector.Detect(ctx, entry, opp)
		if err != nil {
			// One bad rule must not block revenue reporting
			logger.Warn("detection rule failed, skipping risk",
				"riskID", entry.RiskID, "error", err.Error())
			continue
		}
		if detection.Confidence <= 0 {
			continue
		}

		ponderation, err := resolvePonderation(entry, opp, asOf)
		if err != nil {
			logger.Warn("ponderation resolution failed, skipping risk",
				"riskID", entry.RiskID, "error", err.Error())
			continue
		}

		c := model.RiskContribution{
			RiskID:         entry.RiskID,
			Ponderation:    ponderation,
			Confidence:     detection.Confidence,
			Contribution:   detection.Confidence * ponderation,
			LifecycleState: carriedState(opp.Evaluation, entry.RiskID),
		}
		carryAudit(opp.Evaluation, &c)
		contributions = append(contributions, c)
		warnings = append(warnings, detection.Warnings...)
	}

	riskScore := Score(contributions)
	eval := &model.RiskEvaluation{
		RiskScore:     riskScore,
		RevenueAtRisk: opp.DealValue * riskScore,
		Risks:         contributions,
		CalculatedAt:  asOf,
		CalculatedBy:  "evaluation-writer",
	}
	return eval, warnings, nil
}

// Score aggregates per-risk contributions into a risk score: the sum of
// contributions capped at 1. Dismissed (closed or accepted) risks do not
// count toward the score.
func Score(risks []model.RiskContribution) float64 {
	var total float64
	for _, r := range risks {
		if r.LifecycleState.IsTerminal() {
			continue
		}
		total += r.Contribution
	}
	if total > 1 {
		return 1
	}
	return total
}

func (w *Writer) dispatchWarnings(ctx context.Context, opp *model.Opportunity, warnings []model.EarlyWarningSignal) {
	if w.notifier == nil {
		return
	}
	for _, warning := range warnings {
		warning := warning
		async.Dispatch(ctx, func(ctx context.Context) error {
			return w.notifier.NotifyWarning(ctx, opp, warning)
		})
	}
}
