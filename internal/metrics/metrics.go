package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScrapeTotal counts resolution attempts per source and outcome.
	// source: "draw", "revenue:<symbol>"; outcome: "live", "empty",
	// "failed", "estimated".
	ScrapeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "drawstats",
		Name:      "scrape_total",
		Help:      "Scrape attempts by source and outcome.",
	}, []string{"source", "outcome"})

	ScrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "drawstats",
		Name:      "scrape_duration_seconds",
		Help:      "Wall time of one source scrape.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
	}, []string{"source"})

	CacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "drawstats",
		Name:      "cache_events_total",
		Help:      "Cache hits, misses and stale fallbacks by cache name.",
	}, []string{"cache", "event"})

	LiveSources = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "drawstats",
		Name:      "revenue_live_sources",
		Help:      "Revenue sources served live in the latest report.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
