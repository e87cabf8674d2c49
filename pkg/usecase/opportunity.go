package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// CreateOpportunity registers a new opportunity with no evaluation
func (uc *UseCases) CreateOpportunity(ctx context.Context, opp *model.Opportunity) (*model.Opportunity, error) {
	if err := opp.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid opportunity")
	}

	created, err := uc.repo.Opportunity().Create(ctx, opp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create opportunity")
	}
	return created, nil
}

// GetOpportunity retrieves an opportunity with its embedded risk state
func (uc *UseCases) GetOpportunity(ctx context.Context, id model.OpportunityID) (*model.Opportunity, error) {
	opp, err := uc.repo.Opportunity().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get opportunity", goerr.V("opportunityID", id))
	}
	return opp, nil
}

// ListOpportunities lists a tenant's opportunities with optional filters
func (uc *UseCases) ListOpportunities(ctx context.Context, tenantID types.TenantID, opts ...interfaces.ListOpportunityOption) ([]*model.Opportunity, error) {
	opps, err := uc.repo.Opportunity().List(ctx, tenantID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list opportunities", goerr.V("tenantID", tenantID))
	}
	return opps, nil
}

// UpdateOpportunity updates opportunity metadata. Evaluation state is
// untouched; it only changes through evaluation runs and lifecycle ops.
func (uc *UseCases) UpdateOpportunity(ctx context.Context, opp *model.Opportunity) (*model.Opportunity, error) {
	if err := opp.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid opportunity")
	}

	updated, err := uc.repo.Opportunity().Update(ctx, opp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update opportunity", goerr.V("opportunityID", opp.ID))
	}
	return updated, nil
}

// DeleteOpportunity removes an opportunity
func (uc *UseCases) DeleteOpportunity(ctx context.Context, id model.OpportunityID) error {
	if err := uc.repo.Opportunity().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete opportunity", goerr.V("opportunityID", id))
	}
	return nil
}
