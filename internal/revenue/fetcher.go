package revenue

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"drawstats/internal/domain"
)

// Fetcher is one per-token revenue strategy. Fetch errors are expected and
// local: the orchestrator substitutes Estimate() and moves on, so a
// strategy never takes the other tokens down with it.
type Fetcher interface {
	Token() string
	Fetch(ctx context.Context) (domain.RevenueSnapshot, error)
	Estimate() domain.RevenueSnapshot
}

var (
	daysPerWeek = decimal.New(7, 0)
	daysPerYear = decimal.New(365, 0)
)

// Hard-coded fallback figures for one token, shipped in config. These are
// manually verified point-in-time values, not derived truths.
type EstimateConfig struct {
	WeeklyRevenue   float64 `yaml:"weekly_revenue"`
	AccrualFraction float64 `yaml:"accrual_fraction"`
}

type estimator struct {
	symbol  string
	weekly  decimal.Decimal
	accrual decimal.Decimal
}

func newEstimator(symbol string, cfg EstimateConfig) estimator {
	return estimator{
		symbol:  symbol,
		weekly:  decimal.NewFromFloat(cfg.WeeklyRevenue),
		accrual: decimal.NewFromFloat(cfg.AccrualFraction),
	}
}

func (e estimator) Estimate() domain.RevenueSnapshot {
	annual := e.weekly.Div(daysPerWeek).Mul(daysPerYear)
	return buildSnapshot(e.symbol, e.weekly, annual, e.accrual, domain.ConfidenceEstimated, time.Now())
}

// buildSnapshot derives the earnings figures and enforces the accrual
// fraction invariant (0..1) at the single construction point.
func buildSnapshot(symbol string, weekly, annual, accrual decimal.Decimal, conf domain.Confidence, at time.Time) domain.RevenueSnapshot {
	if accrual.IsNegative() {
		accrual = decimal.Zero
	}
	one := decimal.New(1, 0)
	if accrual.GreaterThan(one) {
		accrual = one
	}

	return domain.RevenueSnapshot{
		TokenSymbol:     symbol,
		WeeklyRevenue:   weekly,
		AnnualRevenue:   annual,
		WeeklyEarnings:  weekly.Mul(accrual),
		AnnualEarnings:  annual.Mul(accrual),
		AccrualFraction: accrual,
		Confidence:      conf,
		CapturedAt:      at,
	}
}
