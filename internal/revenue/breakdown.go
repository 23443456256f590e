package revenue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"gitlab.com/nevasik7/alerting/logger"

	"drawstats/internal/browser"
	"drawstats/internal/domain"
	"drawstats/internal/extract"
)

// One business line on the scraped stats page, with its own accrual share.
type CategoryConfig struct {
	Name            string  `yaml:"name"` // matched case-insensitively in page text
	AccrualFraction float64 `yaml:"accrual_fraction"`
}

type BreakdownConfig struct {
	URL             string           `yaml:"url"`
	ReadySelector   string           `yaml:"ready_selector"`
	TotalLabel      string           `yaml:"total_label"` // e.g. "30 Days Combined Revenue"
	WindowDays      int              `yaml:"window_days"` // days the labeled figure covers
	Categories      []CategoryConfig `yaml:"categories"`
	AccrualFraction float64          `yaml:"accrual_fraction"` // flat fallback when categories don't extract
	TextWindow      int              `yaml:"text_window"`
	Estimate        EstimateConfig   `yaml:"estimate"`
}

// BreakdownFetcher scrapes a stats page carrying an aggregate
// "N Days Combined Revenue" figure plus per-category sub-revenues, and
// blends the per-category accrual fractions by revenue weight.
type BreakdownFetcher struct {
	estimator
	log  logger.Logger
	pool *browser.Pool
	cfg  BreakdownConfig
}

func NewBreakdownFetcher(log logger.Logger, pool *browser.Pool, symbol string, cfg BreakdownConfig) *BreakdownFetcher {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	if cfg.TextWindow <= 0 {
		cfg.TextWindow = 80
	}
	return &BreakdownFetcher{
		estimator: newEstimator(symbol, cfg.Estimate),
		log:       log,
		pool:      pool,
		cfg:       cfg,
	}
}

func (f *BreakdownFetcher) Token() string { return f.symbol }

func (f *BreakdownFetcher) Fetch(ctx context.Context) (domain.RevenueSnapshot, error) {
	html, err := scrapePage(ctx, f.pool, f.cfg.URL, f.cfg.ReadySelector)
	if err != nil {
		return domain.RevenueSnapshot{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.RevenueSnapshot{}, fmt.Errorf("parse stats page: %w", err)
	}
	text := doc.Text()

	total, ok := f.amountNear(text, f.cfg.TotalLabel)
	if !ok {
		return domain.RevenueSnapshot{}, fmt.Errorf("label %q not found on page", f.cfg.TotalLabel)
	}

	accrual := f.blendedAccrual(text)

	daily := total.Div(decimal.New(int64(f.cfg.WindowDays), 0))
	f.log.Debugf("%s combined revenue %s over %d days, accrual %s", f.symbol, total, f.cfg.WindowDays, accrual)

	return buildSnapshot(
		f.symbol,
		daily.Mul(daysPerWeek),
		daily.Mul(daysPerYear),
		accrual,
		domain.ConfidenceLive,
		time.Now(),
	), nil
}

// blendedAccrual weights each category's accrual by its extracted revenue:
// sum(rev_i * accrual_i) / sum(rev_i). Categories that don't extract drop
// out; none extracting falls back to the flat configured fraction.
func (f *BreakdownFetcher) blendedAccrual(text string) decimal.Decimal {
	weighted := decimal.Zero
	sum := decimal.Zero

	for _, cat := range f.cfg.Categories {
		rev, ok := f.amountNear(text, cat.Name)
		if !ok {
			f.log.Debugf("%s category %q not extractable", f.symbol, cat.Name)
			continue
		}
		weighted = weighted.Add(rev.Mul(decimal.NewFromFloat(cat.AccrualFraction)))
		sum = sum.Add(rev)
	}

	if sum.IsZero() {
		return decimal.NewFromFloat(f.cfg.AccrualFraction)
	}
	return weighted.Div(sum)
}

// amountNear finds the first monetary amount in the text window following
// a case-insensitive label match.
func (f *BreakdownFetcher) amountNear(text, label string) (decimal.Decimal, bool) {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(label))
	if idx < 0 {
		return decimal.Zero, false
	}
	start := idx + len(label)
	end := start + f.cfg.TextWindow
	if end > len(text) {
		end = len(text)
	}
	return extract.Money(text[start:end])
}
