package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	server "github.com/revlens-lab/revlens/pkg/controller/http"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/repository/memory"
	"github.com/revlens-lab/revlens/pkg/usecase"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	uc := usecase.New(memory.New())
	srv := httptest.NewServer(server.New(uc))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	gt.NoError(t, err).Required()
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	gt.NoError(t, err).Required()
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) *T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&v)).Required()
	return &v
}

func TestOpportunityCRUD(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/opportunities", map[string]any{
		"tenant_id":  "acme",
		"name":       "Globex renewal",
		"deal_value": 120000.0,
		"currency":   "USD",
		"stage":      "open",
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
	created := decodeBody[model.Opportunity](t, resp)
	gt.True(t, created.ID != "")

	resp, err := http.Get(srv.URL + "/api/opportunities/" + string(created.ID))
	gt.NoError(t, err).Required()
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	got := decodeBody[model.Opportunity](t, resp)
	gt.Value(t, got.Name).Equal("Globex renewal")

	resp, err = http.Get(srv.URL + "/api/opportunities/no-such-id")
	gt.NoError(t, err).Required()
	resp.Body.Close()
	gt.Value(t, resp.StatusCode).Equal(http.StatusNotFound)
}

func TestEvaluateAndAcknowledge(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/catalog", map[string]any{
		"risk_id":             "no-executive-sponsor",
		"catalog_type":        "global",
		"name":                "No executive sponsor",
		"category":            "commercial",
		"default_ponderation": 0.5,
		"detection_rule": map[string]any{
			"kind":   "static",
			"params": map[string]any{"confidence": 0.8},
		},
		"is_active": true,
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/opportunities", map[string]any{
		"tenant_id":  "acme",
		"name":       "Initech expansion",
		"deal_value": 200000.0,
		"currency":   "USD",
		"stage":      "open",
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
	opp := decodeBody[model.Opportunity](t, resp)

	base := srv.URL + "/api/opportunities/" + string(opp.ID)

	resp = postJSON(t, base+"/evaluate", nil)
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	eval := decodeBody[model.RiskEvaluation](t, resp)
	gt.Array(t, eval.Risks).Length(1)
	gt.Value(t, eval.Risks[0].RiskID).Equal("no-executive-sponsor")

	resp = postJSON(t, base+"/risks/no-executive-sponsor/acknowledge", map[string]any{
		"by":     "user-1",
		"reason": "sponsor search started",
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	updated := decodeBody[model.Opportunity](t, resp)
	gt.Value(t, updated.Evaluation.Risks[0].LifecycleState).Equal(types.RiskStateAcknowledged)
	gt.Value(t, updated.Evaluation.Risks[0].AcknowledgedBy).Equal("user-1")

	resp = postJSON(t, base+"/risks/unknown-risk/acknowledge", map[string]any{"by": "user-1"})
	resp.Body.Close()
	gt.Value(t, resp.StatusCode).Equal(http.StatusNotFound)
}

func TestQuotaCycleConflict(t *testing.T) {
	srv := newTestServer(t)

	now := time.Now().UTC()
	period := map[string]any{
		"type":       "quarter",
		"start_date": now.Add(-30 * 24 * time.Hour).Format(time.RFC3339),
		"end_date":   now.Add(60 * 24 * time.Hour).Format(time.RFC3339),
	}

	resp := postJSON(t, srv.URL+"/api/quotas", map[string]any{
		"tenant_id":  "acme",
		"quota_type": "tenant",
		"period":     period,
		"target":     map[string]any{"amount": 1000000.0, "currency": "USD"},
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
	top := decodeBody[model.Quota](t, resp)

	resp = postJSON(t, srv.URL+"/api/quotas", map[string]any{
		"tenant_id":       "acme",
		"quota_type":      "team",
		"team_id":         "emea",
		"parent_quota_id": string(top.ID),
		"period":          period,
		"target":          map[string]any{"amount": 400000.0, "currency": "USD"},
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
	child := decodeBody[model.Quota](t, resp)

	top.ParentQuotaID = child.ID
	data, err := json.Marshal(top)
	gt.NoError(t, err).Required()
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/quotas/"+string(top.ID), bytes.NewReader(data))
	gt.NoError(t, err).Required()
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	gt.NoError(t, err).Required()
	resp.Body.Close()
	gt.Value(t, resp.StatusCode).Equal(http.StatusConflict)
}

func TestRollupQuota(t *testing.T) {
	srv := newTestServer(t)

	now := time.Now().UTC()
	period := map[string]any{
		"type":       "quarter",
		"start_date": now.Add(-30 * 24 * time.Hour).Format(time.RFC3339),
		"end_date":   now.Add(60 * 24 * time.Hour).Format(time.RFC3339),
	}

	resp := postJSON(t, srv.URL+"/api/quotas", map[string]any{
		"tenant_id":  "acme",
		"quota_type": "tenant",
		"period":     period,
		"target":     map[string]any{"amount": 1000000.0, "currency": "USD"},
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
	quota := decodeBody[model.Quota](t, resp)

	resp = postJSON(t, srv.URL+"/api/opportunities", map[string]any{
		"tenant_id":         "acme",
		"name":              "Hooli platform",
		"deal_value":        300000.0,
		"currency":          "USD",
		"stage":             "open",
		"expected_close_at": now.Add(14 * 24 * time.Hour).Format(time.RFC3339),
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
	resp.Body.Close()

	resp = postJSON(t, fmt.Sprintf("%s/api/quotas/%s/rollup", srv.URL, quota.ID), nil)
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	perf := decodeBody[model.QuotaPerformance](t, resp)
	gt.Value(t, perf.Forecasted).Equal(300000.0)
}

func TestBenchmarkEndpoints(t *testing.T) {
	srv := newTestServer(t)

	now := time.Now().UTC()
	start := now.Add(-30 * 24 * time.Hour)
	end := now.Add(90 * 24 * time.Hour)
	period := map[string]any{
		"type":       "quarter",
		"start_date": start.Format(time.RFC3339),
		"end_date":   end.Format(time.RFC3339),
	}

	resp := postJSON(t, srv.URL+"/api/benchmarks/calculate", map[string]any{
		"tenant_id": "acme",
		"period":    period,
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	bm := decodeBody[model.Benchmark](t, resp)
	gt.Value(t, bm.Stats.DealCount).Equal(0)

	url := fmt.Sprintf("%s/api/benchmarks?tenant_id=acme&period_type=quarter&period_start=%s&period_end=%s",
		srv.URL, start.Format(time.RFC3339), end.Format(time.RFC3339))
	resp, err := http.Get(url)
	gt.NoError(t, err).Required()
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	cached := decodeBody[model.Benchmark](t, resp)
	gt.Value(t, cached.TenantID).Equal("acme")
}

func TestCreateOpportunityBadJSON(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/opportunities", map[string]any{
		"tenant_id":     "acme",
		"name":          "bad field",
		"deal_value":    1.0,
		"currency":      "USD",
		"stage":         "open",
		"unknown_field": true,
	})
	resp.Body.Close()
	gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
}
