package service

import (
	"context"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"drawstats/internal/cache"
	"drawstats/internal/domain"
	"drawstats/internal/metrics"
	"drawstats/internal/revenue"
)

const reportKey = "latest"

type AggregatorConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// AggregatorService runs the per-token revenue fetchers in sequence and
// keeps the last good report around. Scraped sources share one browser
// slot, so sequencing is also what keeps memory bounded.
//
// Report never fails: a dead source is replaced by its static estimate,
// and a fully dead scrape is replaced by the last good report.
type AggregatorService struct {
	log      logger.Logger
	fetchers []revenue.Fetcher
	cache    *cache.TTL[string, domain.RevenueReport]
	now      func() time.Time
}

func NewAggregatorService(log logger.Logger, fetchers []revenue.Fetcher, cfg AggregatorConfig) *AggregatorService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &AggregatorService{
		log:      log,
		fetchers: fetchers,
		// no janitor: the expired report must survive as the last-good
		// fallback for GetStale
		cache:    cache.New[string, domain.RevenueReport](cfg.CacheTTL, 0),
		now:      time.Now,
	}
}

// Tokens lists the configured token symbols in fetch order.
func (a *AggregatorService) Tokens() []string {
	out := make([]string, 0, len(a.fetchers))
	for _, f := range a.fetchers {
		out = append(out, f.Token())
	}
	return out
}

// Report returns the current revenue report and whether it was served
// from cache. refresh bypasses the fresh-cache check but still falls
// back to the last good report when every source fails.
func (a *AggregatorService) Report(ctx context.Context, refresh bool) (domain.RevenueReport, bool) {
	if !refresh {
		if rep, ok := a.cache.Get(reportKey); ok {
			metrics.CacheEvents.WithLabelValues("revenue", "hit").Inc()
			return rep, true
		}
		metrics.CacheEvents.WithLabelValues("revenue", "miss").Inc()
	}

	rep := a.collect(ctx)
	if rep.LiveCount > 0 {
		a.cache.Put(reportKey, rep)
		return rep, false
	}

	// Every source failed. A previous live report, even expired, beats a
	// page of static estimates.
	if stale, _, ok := a.cache.GetStale(reportKey); ok {
		a.log.Warnf("all %d revenue sources failed, serving last good report from %s",
			len(a.fetchers), stale.ScrapedAt.Format(time.RFC3339))
		return stale, true
	}

	a.log.Errorf("all revenue sources failed with no prior report, serving static estimates")
	return rep, false
}

func (a *AggregatorService) collect(ctx context.Context) domain.RevenueReport {
	start := time.Now()
	snaps := make([]domain.RevenueSnapshot, 0, len(a.fetchers))
	live := 0

	for _, f := range a.fetchers {
		snap, err := f.Fetch(ctx)
		if err != nil {
			a.log.Warnf("revenue fetch failed for %s: %v", f.Token(), err)
			metrics.ScrapeTotal.WithLabelValues("revenue:"+f.Token(), "estimated").Inc()
			snap = f.Estimate()
		} else {
			metrics.ScrapeTotal.WithLabelValues("revenue:"+f.Token(), "live").Inc()
			live++
		}
		snaps = append(snaps, snap)
	}

	metrics.ScrapeDuration.WithLabelValues("revenue").Observe(time.Since(start).Seconds())
	metrics.LiveSources.Set(float64(live))

	return domain.RevenueReport{
		Snapshots: snaps,
		LiveCount: live,
		ScrapedAt: a.now(),
	}
}

// Close stops the report cache janitor.
func (a *AggregatorService) Close() {
	a.cache.Close()
}
