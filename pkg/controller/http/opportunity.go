package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

func (s *Server) createOpportunity(w http.ResponseWriter, r *http.Request) {
	var opp model.Opportunity
	if err := decodeJSON(r, &opp); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid opportunity payload"))
		return
	}

	created, err := s.uc.CreateOpportunity(r.Context(), &opp)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) getOpportunity(w http.ResponseWriter, r *http.Request) {
	id := model.OpportunityID(chi.URLParam(r, "opportunityID"))

	opp, err := s.uc.GetOpportunity(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, opp)
}

func (s *Server) listOpportunities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantID := types.TenantID(q.Get("tenant_id"))

	var opts []interfaces.ListOpportunityOption
	if owner := q.Get("owner_id"); owner != "" {
		opts = append(opts, interfaces.WithOwner(owner))
	}
	if team := q.Get("team_id"); team != "" {
		opts = append(opts, interfaces.WithTeam(team))
	}
	if stage := q.Get("stage"); stage != "" {
		parsed, err := types.ParseOpportunityStage(stage)
		if err != nil {
			respondBadRequest(w, r, goerr.Wrap(err, "invalid stage filter"))
			return
		}
		opts = append(opts, interfaces.WithStage(parsed))
	}

	opps, err := s.uc.ListOpportunities(r.Context(), tenantID, opts...)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, opps)
}

func (s *Server) updateOpportunity(w http.ResponseWriter, r *http.Request) {
	var opp model.Opportunity
	if err := decodeJSON(r, &opp); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid opportunity payload"))
		return
	}
	opp.ID = model.OpportunityID(chi.URLParam(r, "opportunityID"))

	updated, err := s.uc.UpdateOpportunity(r.Context(), &opp)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) deleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id := model.OpportunityID(chi.URLParam(r, "opportunityID"))

	if err := s.uc.DeleteOpportunity(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) evaluateOpportunity(w http.ResponseWriter, r *http.Request) {
	id := model.OpportunityID(chi.URLParam(r, "opportunityID"))

	eval, err := s.uc.Evaluate(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, eval)
}

// transitionRequest is the shared payload for risk lifecycle endpoints
type transitionRequest struct {
	By     string `json:"by"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) acknowledgeRisk(w http.ResponseWriter, r *http.Request) {
	s.transitionRisk(w, r, s.uc.AcknowledgeRisk)
}

func (s *Server) dismissRisk(w http.ResponseWriter, r *http.Request) {
	s.transitionRisk(w, r, s.uc.DismissRisk)
}

func (s *Server) mitigateRisk(w http.ResponseWriter, r *http.Request) {
	s.transitionRisk(w, r, s.uc.MitigateRisk)
}

func (s *Server) acceptRisk(w http.ResponseWriter, r *http.Request) {
	s.transitionRisk(w, r, s.uc.AcceptRisk)
}

func (s *Server) transitionRisk(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, oppID model.OpportunityID, riskID types.RiskID, by, reason string) (*model.Opportunity, error)) {
	oppID := model.OpportunityID(chi.URLParam(r, "opportunityID"))
	riskID := types.RiskID(chi.URLParam(r, "riskID"))

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid transition payload"))
		return
	}

	updated, err := op(r.Context(), oppID, riskID, req.By, req.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) addEarlyWarning(w http.ResponseWriter, r *http.Request) {
	oppID := model.OpportunityID(chi.URLParam(r, "opportunityID"))

	var signal model.EarlyWarningSignal
	if err := decodeJSON(r, &signal); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid early warning payload"))
		return
	}

	created, err := s.uc.AddEarlyWarning(r.Context(), oppID, signal)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) acknowledgeEarlyWarning(w http.ResponseWriter, r *http.Request) {
	oppID := model.OpportunityID(chi.URLParam(r, "opportunityID"))
	signalID := model.SignalID(chi.URLParam(r, "signalID"))

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid transition payload"))
		return
	}

	signal, err := s.uc.AcknowledgeEarlyWarning(r.Context(), oppID, signalID, req.By)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, signal)
}

func (s *Server) resolveEarlyWarning(w http.ResponseWriter, r *http.Request) {
	oppID := model.OpportunityID(chi.URLParam(r, "opportunityID"))
	signalID := model.SignalID(chi.URLParam(r, "signalID"))

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid transition payload"))
		return
	}

	signal, err := s.uc.ResolveEarlyWarning(r.Context(), oppID, signalID, req.By)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, signal)
}

func (s *Server) addMitigationAction(w http.ResponseWriter, r *http.Request) {
	oppID := model.OpportunityID(chi.URLParam(r, "opportunityID"))

	var action model.MitigationAction
	if err := decodeJSON(r, &action); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid mitigation action payload"))
		return
	}

	created, err := s.uc.AddMitigationAction(r.Context(), oppID, action)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) updateMitigationActionStatus(w http.ResponseWriter, r *http.Request) {
	oppID := model.OpportunityID(chi.URLParam(r, "opportunityID"))
	actionID := model.ActionID(chi.URLParam(r, "actionID"))

	var req struct {
		Status types.ActionStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid status payload"))
		return
	}

	action, err := s.uc.UpdateMitigationActionStatus(r.Context(), oppID, actionID, req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, action)
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	oppID := model.OpportunityID(chi.URLParam(r, "opportunityID"))

	var req struct {
		Modifications model.SimulationModifications `json:"modifications"`
		CreatedBy     string                        `json:"created_by"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid simulation payload"))
		return
	}

	sim, err := s.uc.Simulate(r.Context(), oppID, req.Modifications, req.CreatedBy)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, sim)
}

func (s *Server) listSimulations(w http.ResponseWriter, r *http.Request) {
	oppID := model.OpportunityID(chi.URLParam(r, "opportunityID"))

	sims, err := s.uc.ListSimulations(r.Context(), oppID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sims)
}

func (s *Server) getSimulation(w http.ResponseWriter, r *http.Request) {
	id := model.SimulationID(chi.URLParam(r, "simulationID"))

	sim, err := s.uc.GetSimulation(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sim)
}

func (s *Server) listSnapshots(w http.ResponseWriter, r *http.Request) {
	oppID := model.OpportunityID(chi.URLParam(r, "opportunityID"))

	snapshots, err := s.uc.ListSnapshots(r.Context(), oppID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, snapshots)
}

func (s *Server) pruneSnapshots(w http.ResponseWriter, r *http.Request) {
	oppID := model.OpportunityID(chi.URLParam(r, "opportunityID"))

	var req struct {
		OlderThan time.Time `json:"older_than"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid prune payload"))
		return
	}

	deleted, err := s.uc.PruneSnapshots(r.Context(), oppID, req.OlderThan)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]int{"deleted": deleted})
}
