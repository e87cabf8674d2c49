package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

func (s *Server) createQuota(w http.ResponseWriter, r *http.Request) {
	var quota model.Quota
	if err := decodeJSON(r, &quota); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid quota payload"))
		return
	}

	created, err := s.uc.CreateQuota(r.Context(), &quota)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) getQuota(w http.ResponseWriter, r *http.Request) {
	id := model.QuotaID(chi.URLParam(r, "quotaID"))

	quota, err := s.uc.GetQuota(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, quota)
}

func (s *Server) listQuotas(w http.ResponseWriter, r *http.Request) {
	tenantID := types.TenantID(r.URL.Query().Get("tenant_id"))

	quotas, err := s.uc.ListQuotas(r.Context(), tenantID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, quotas)
}

func (s *Server) updateQuota(w http.ResponseWriter, r *http.Request) {
	var quota model.Quota
	if err := decodeJSON(r, &quota); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid quota payload"))
		return
	}
	quota.ID = model.QuotaID(chi.URLParam(r, "quotaID"))

	updated, err := s.uc.UpdateQuota(r.Context(), &quota)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) deleteQuota(w http.ResponseWriter, r *http.Request) {
	id := model.QuotaID(chi.URLParam(r, "quotaID"))

	if err := s.uc.DeleteQuota(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) rollupQuota(w http.ResponseWriter, r *http.Request) {
	id := model.QuotaID(chi.URLParam(r, "quotaID"))

	perf, err := s.uc.RollupQuota(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, perf)
}

func (s *Server) rollupPortfolio(w http.ResponseWriter, r *http.Request) {
	scope, err := types.ParseRollupScope(chi.URLParam(r, "scope"))
	if err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid rollup scope"))
		return
	}
	scopeID := chi.URLParam(r, "scopeID")
	tenantID := types.TenantID(r.URL.Query().Get("tenant_id"))

	rollup, err := s.uc.RollupPortfolio(r.Context(), scope, scopeID, tenantID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, rollup)
}

// benchmarkScope decodes the shared benchmark scope parameters
type benchmarkScope struct {
	TenantID   types.TenantID    `json:"tenant_id"`
	IndustryID types.IndustryID  `json:"industry_id,omitempty"`
	Period     model.QuotaPeriod `json:"period"`
}

func (s *Server) calculateBenchmark(w http.ResponseWriter, r *http.Request) {
	var req benchmarkScope
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid benchmark payload"))
		return
	}

	bm, err := s.uc.CalculateBenchmark(r.Context(), req.TenantID, req.IndustryID, req.Period)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, bm)
}

func (s *Server) getBenchmark(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantID := types.TenantID(q.Get("tenant_id"))
	industryID := types.IndustryID(q.Get("industry_id"))

	periodType, err := types.ParsePeriodType(q.Get("period_type"))
	if err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid period type"))
		return
	}
	start, err := time.Parse(time.RFC3339, q.Get("period_start"))
	if err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid period_start"))
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("period_end"))
	if err != nil {
		respondBadRequest(w, r, goerr.Wrap(err, "invalid period_end"))
		return
	}

	period := model.QuotaPeriod{Type: periodType, StartDate: start, EndDate: end}
	bm, err := s.uc.GetBenchmark(r.Context(), tenantID, industryID, period)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, bm)
}
