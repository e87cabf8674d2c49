package evaluation

import (
	"time"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/service/catalog"
)

func resolvePonderation(entry *model.RiskCatalogEntry, opp *model.Opportunity, asOf time.Time) (float64, error) {
	return catalog.EffectivePonderation(entry, opp.TenantID, opp.IndustryID, opp.OpportunityType, asOf)
}

// carriedState preserves the lifecycle state a user already set on the
// risk. A freshly detected risk starts as identified.
func carriedState(prev *model.RiskEvaluation, riskID types.RiskID) types.RiskLifecycleState {
	if prior := prev.Contribution(riskID); prior != nil {
		return prior.LifecycleState
	}
	return types.RiskStateIdentified
}

// carryAudit copies acknowledge/dismiss audit fields from the prior
// contribution so re-evaluation does not erase who acted on the risk
func carryAudit(prev *model.RiskEvaluation, c *model.RiskContribution) {
	prior := prev.Contribution(c.RiskID)
	if prior == nil {
		return
	}
	c.AcknowledgedBy = prior.AcknowledgedBy
	c.AcknowledgedAt = prior.AcknowledgedAt
	c.DismissedBy = prior.DismissedBy
	c.DismissedAt = prior.DismissedAt
	c.Reason = prior.Reason
}
