package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// QuotaID is a UUID-based identifier for Quota
type QuotaID string

// NewQuotaID generates a new UUID v4 QuotaID
func NewQuotaID() QuotaID {
	return QuotaID(uuid.New().String())
}

// String returns the string representation of QuotaID
func (id QuotaID) String() string {
	return string(id)
}

// Quota is a sales target for a user, team or tenant over a period.
// Performance is a mutable cache overwritten on each rollup run, not an
// event log. Quotas form a tree via ParentQuotaID; the tree must stay
// acyclic, enforced at write time.
type Quota struct {
	ID            QuotaID          `json:"id"`
	TenantID      types.TenantID   `json:"tenant_id"`
	QuotaType     types.QuotaType  `json:"quota_type"`
	TargetUserID  string           `json:"target_user_id,omitempty"`
	TeamID        string           `json:"team_id,omitempty"`
	ParentQuotaID QuotaID          `json:"parent_quota_id,omitempty"`
	Period        QuotaPeriod      `json:"period"`
	Target        QuotaTarget      `json:"target"`
	Performance   QuotaPerformance `json:"performance"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// QuotaPeriod is the time span a quota covers
type QuotaPeriod struct {
	Type      types.PeriodType `json:"type"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
}

// Contains reports whether t falls within the period [StartDate, EndDate)
func (p *QuotaPeriod) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && t.Before(p.EndDate)
}

// QuotaTarget is the goal figures for the period
type QuotaTarget struct {
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	OpportunityCount int     `json:"opportunity_count,omitempty"`
}

// QuotaPerformance is the cached rollup result for a quota
type QuotaPerformance struct {
	Actual                 float64   `json:"actual"`
	Forecasted             float64   `json:"forecasted"`
	RiskAdjusted           float64   `json:"risk_adjusted"`
	Attainment             float64   `json:"attainment"`
	RiskAdjustedAttainment float64   `json:"risk_adjusted_attainment"`
	CalculatedAt           time.Time `json:"calculated_at"`
}

// Validate checks structural invariants of the quota
func (q *Quota) Validate() error {
	if err := q.TenantID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant ID")
	}
	if !q.QuotaType.IsValid() {
		return goerr.New("invalid quota type", goerr.V("quotaType", q.QuotaType))
	}
	if !q.Period.Type.IsValid() {
		return goerr.New("invalid period type", goerr.V("periodType", q.Period.Type))
	}
	if !q.Period.EndDate.After(q.Period.StartDate) {
		return goerr.New("quota period is empty",
			goerr.V("start", q.Period.StartDate), goerr.V("end", q.Period.EndDate))
	}
	if q.Target.Amount < 0 {
		return goerr.New("quota target cannot be negative", goerr.V("amount", q.Target.Amount))
	}
	switch q.QuotaType {
	case types.QuotaTypeUser:
		if q.TargetUserID == "" {
			return goerr.New("user quota requires target user ID")
		}
	case types.QuotaTypeTeam:
		if q.TeamID == "" {
			return goerr.New("team quota requires team ID")
		}
	}
	if q.ParentQuotaID == q.ID && q.ID != "" {
		return goerr.Wrap(ErrCycleDetected, "quota cannot be its own parent", goerr.V("id", q.ID))
	}
	return nil
}

// Attain computes attainment figures against the quota target. Returns
// ErrZeroTarget when the target amount is zero so callers never divide by
// zero silently.
func (q *Quota) Attain(actual, riskAdjusted float64) (attainment, riskAdjustedAttainment float64, err error) {
	if q.Target.Amount == 0 {
		return 0, 0, goerr.Wrap(ErrZeroTarget, "cannot compute attainment", goerr.V("quotaID", q.ID))
	}
	return actual / q.Target.Amount, riskAdjusted / q.Target.Amount, nil
}
