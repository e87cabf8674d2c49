package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/revlens-lab/revlens/pkg/domain/types"
)

// BenchmarkID is a UUID-based identifier for Benchmark
type BenchmarkID string

// NewBenchmarkID generates a new UUID v4 BenchmarkID
func NewBenchmarkID() BenchmarkID {
	return BenchmarkID(uuid.New().String())
}

// Benchmark is a cached aggregate of historical opportunity statistics
// scoped to a tenant (and optionally an industry) over a period. It is
// recomputed periodically; stale reads are acceptable.
type Benchmark struct {
	ID           BenchmarkID      `json:"id"`
	TenantID     types.TenantID   `json:"tenant_id"`
	IndustryID   types.IndustryID `json:"industry_id,omitempty"`
	Period       QuotaPeriod      `json:"period"`
	Stats        BenchmarkStats   `json:"stats"`
	CalculatedAt time.Time        `json:"calculated_at"`
}

// BenchmarkStats holds the aggregate figures
type BenchmarkStats struct {
	WinRate            float64 `json:"win_rate"`
	AvgClosingDays     float64 `json:"avg_closing_days"`
	AvgDealValue       float64 `json:"avg_deal_value"`
	DealCount          int     `json:"deal_count"`
	WonCount           int     `json:"won_count"`
	LostCount          int     `json:"lost_count"`
	RenewalProbability float64 `json:"renewal_probability"`
}
