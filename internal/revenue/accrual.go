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

type AccrualTableConfig struct {
	URL           string         `yaml:"url"`
	ReadySelector string         `yaml:"ready_selector"`
	TableSelector string         `yaml:"table_selector"` // defaults to "table"
	MinAmount     float64        `yaml:"min_amount"`     // reject stray numbers below this
	Estimate      EstimateConfig `yaml:"estimate"`
}

// AccrualTableFetcher scrapes a results table whose rows are time periods,
// newest first, carrying a monetary amount column and a "% of revenue"
// column. Weekly revenue is the sum of the newest 7 rows; the accrual
// fraction is the average of the percentage column over the same window.
type AccrualTableFetcher struct {
	estimator
	log  logger.Logger
	pool *browser.Pool
	cfg  AccrualTableConfig
}

func NewAccrualTableFetcher(log logger.Logger, pool *browser.Pool, symbol string, cfg AccrualTableConfig) *AccrualTableFetcher {
	if cfg.TableSelector == "" {
		cfg.TableSelector = "table"
	}
	if cfg.MinAmount <= 0 {
		cfg.MinAmount = 100
	}
	return &AccrualTableFetcher{
		estimator: newEstimator(symbol, cfg.Estimate),
		log:       log,
		pool:      pool,
		cfg:       cfg,
	}
}

func (f *AccrualTableFetcher) Token() string { return f.symbol }

type periodRow struct {
	amount  decimal.Decimal
	accrual decimal.Decimal
	hasPct  bool
}

func (f *AccrualTableFetcher) Fetch(ctx context.Context) (domain.RevenueSnapshot, error) {
	html, err := scrapePage(ctx, f.pool, f.cfg.URL, f.cfg.ReadySelector)
	if err != nil {
		return domain.RevenueSnapshot{}, err
	}

	rows, err := f.parseRows(html)
	if err != nil {
		return domain.RevenueSnapshot{}, err
	}
	if len(rows) == 0 {
		return domain.RevenueSnapshot{}, fmt.Errorf("no period rows extracted")
	}

	weeklyWindow := rows
	if len(weeklyWindow) > 7 {
		weeklyWindow = weeklyWindow[:7]
	}
	weekly := decimal.Zero
	for _, r := range weeklyWindow {
		weekly = weekly.Add(r.amount)
	}

	// annualize from the monthly window when the table is deep enough,
	// otherwise from the weekly one
	var annual decimal.Decimal
	if len(rows) >= 30 {
		monthly := decimal.Zero
		for _, r := range rows[:30] {
			monthly = monthly.Add(r.amount)
		}
		annual = monthly.Div(decimal.New(30, 0)).Mul(daysPerYear)
	} else {
		annual = weekly.Div(daysPerWeek).Mul(daysPerYear)
	}

	accrual := decimal.Zero
	pctRows := 0
	for _, r := range weeklyWindow {
		if r.hasPct {
			accrual = accrual.Add(r.accrual)
			pctRows++
		}
	}
	if pctRows == 0 {
		return domain.RevenueSnapshot{}, fmt.Errorf("accrual column not extractable")
	}
	accrual = accrual.Div(decimal.New(int64(pctRows), 0))

	f.log.Debugf("%s accrual table: weekly %s over %d rows, accrual %s", f.symbol, weekly, len(weeklyWindow), accrual)

	return buildSnapshot(f.symbol, weekly, annual, accrual, domain.ConfidenceLive, time.Now()), nil
}

func (f *AccrualTableFetcher) parseRows(html string) ([]periodRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse periods page: %w", err)
	}

	minAmount := decimal.NewFromFloat(f.cfg.MinAmount)
	var rows []periodRow

	doc.Find(f.cfg.TableSelector).First().Find("tr").Each(func(_ int, tr *goquery.Selection) {
		row := periodRow{}
		ok := false
		var plain decimal.Decimal
		hasPlain := false

		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cell := strings.TrimSpace(td.Text())
			if pct, found := extract.Percent(cell); found {
				row.accrual = pct
				row.hasPct = true
				return
			}
			v, found := extract.Money(cell)
			if !found || v.LessThan(minAmount) {
				return
			}
			// currency-marked cells beat bare numbers, which can be
			// dates or period indices
			if strings.ContainsAny(cell, "$€£") {
				if !ok {
					row.amount = v
					ok = true
				}
			} else if !hasPlain {
				plain = v
				hasPlain = true
			}
		})

		if !ok && hasPlain {
			row.amount = plain
			ok = true
		}
		if ok {
			rows = append(rows, row)
		}
	})

	return rows, nil
}
