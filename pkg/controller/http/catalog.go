package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

func (s *Server) createCatalogEntry(w http.ResponseWriter, r *http.Request) {
	var entry model.RiskCatalogEntry
	if err := decodeJSON(r, &entry); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid catalog entry payload"))
		return
	}

	created, err := s.uc.CreateCatalogEntry(r.Context(), &entry)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) updateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	var entry model.RiskCatalogEntry
	if err := decodeJSON(r, &entry); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid catalog entry payload"))
		return
	}

	updated, err := s.uc.UpdateCatalogEntry(r.Context(), &entry)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) listCatalog(w http.ResponseWriter, r *http.Request) {
	tenantID := types.TenantID(r.URL.Query().Get("tenant_id"))
	industryID := types.IndustryID(r.URL.Query().Get("industry_id"))

	entries, err := s.uc.ListCatalog(r.Context(), tenantID, industryID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, entries)
}

func (s *Server) disableCatalogEntry(w http.ResponseWriter, r *http.Request) {
	catalogType := types.CatalogType(chi.URLParam(r, "catalogType"))
	riskID := types.RiskID(chi.URLParam(r, "riskID"))
	scopeID := r.URL.Query().Get("scope_id")

	disabled, err := s.uc.DisableCatalogEntry(r.Context(), catalogType, scopeID, riskID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, disabled)
}

func (s *Server) resolveRisk(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	riskID := types.RiskID(q.Get("risk_id"))
	tenantID := types.TenantID(q.Get("tenant_id"))
	industryID := types.IndustryID(q.Get("industry_id"))
	oppType := types.OpportunityType(q.Get("opportunity_type"))

	asOf := time.Now().UTC()
	if raw := q.Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(w, r, goerr.Wrap(err, "invalid as_of timestamp"))
			return
		}
		asOf = parsed
	}

	resolved, err := s.uc.ResolveRisk(r.Context(), riskID, tenantID, industryID, oppType, asOf)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, resolved)
}
