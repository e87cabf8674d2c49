package detect

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// Rule kinds understood by the built-in engine. Anything else fails with
// an error so the evaluation writer can skip and log the risk.
const (
	KindStatic      = "static"
	KindDealValue   = "deal_value"
	KindCloseWindow = "close_window"
)

// Engine is a rule-based Detector over opportunity fields. It stands in
// for external classifiers; the evaluation writer only sees the Detector
// interface.
type Engine struct {
	now func() time.Time
}

var _ interfaces.Detector = &Engine{}

type Option func(*Engine)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect runs the entry's detection rule against the opportunity and
// returns a confidence in [0, 1]. A confidence of zero means the risk does
// not apply. Rules may also raise early warning signals via the "warn"
// params.
func (e *Engine) Detect(ctx context.Context, entry *model.RiskCatalogEntry, opp *model.Opportunity) (*interfaces.Detection, error) {
	rule := entry.DetectionRule

	var confidence float64
	switch rule.Kind {
	case KindStatic:
		confidence = paramFloat(rule.Params, "confidence", 0)

	case KindDealValue:
		// Fires when the deal value exceeds the configured floor
		floor := paramFloat(rule.Params, "min", 0)
		if opp.DealValue >= floor {
			confidence = paramFloat(rule.Params, "confidence", 1)
		}

	case KindCloseWindow:
		// Fires when the expected close date is within max_days from now
		if opp.ExpectedCloseAt != nil {
			maxDays := paramFloat(rule.Params, "max_days", 30)
			remaining := opp.ExpectedCloseAt.Sub(e.now())
			if remaining < time.Duration(maxDays)*24*time.Hour {
				confidence = paramFloat(rule.Params, "confidence", 1)
			}
		}

	default:
		return nil, goerr.New("unknown detection rule kind",
			goerr.V("kind", rule.Kind), goerr.V("riskID", entry.RiskID))
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	detection := &interfaces.Detection{Confidence: confidence}

	if confidence > 0 {
		if severity, ok := rule.Params["warn"].(string); ok && severity != "" {
			detection.Warnings = append(detection.Warnings, model.EarlyWarningSignal{
				ID:       model.NewSignalID(),
				RiskID:   entry.RiskID,
				Title:    entry.Name,
				Detail:   entry.Description,
				Severity: severity,
				Status:   types.SignalStatusActive,
				RaisedBy: "detector",
				RaisedAt: e.now().UTC(),
			})
		}
	}

	return detection, nil
}

func paramFloat(params map[string]any, key string, fallback float64) float64 {
	if params == nil {
		return fallback
	}
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}
