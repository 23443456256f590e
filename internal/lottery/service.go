package lottery

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"drawstats/internal/browser"
	"drawstats/internal/cache"
	"drawstats/internal/domain"
	"drawstats/internal/metrics"
)

type ServiceConfig struct {
	Navigator NavigatorConfig `yaml:"navigator"`
	Extractor ExtractorConfig `yaml:"extractor"`
	CacheTTL  time.Duration   `yaml:"cache_ttl"`
}

// Service resolves draw snapshots through the single-session browser pool
// and owns the draw cache. Extraction components stay stateless; everything
// they produce lands here by value.
type Service struct {
	log   logger.Logger
	pool  *browser.Pool
	cache *cache.TTL[int, domain.DrawSnapshot]
	ext   *Extractor
	cfg   ServiceConfig
	now   func() time.Time
}

func NewService(log logger.Logger, pool *browser.Pool, cfg ServiceConfig) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &Service{
		log:   log,
		pool:  pool,
		cache: cache.New[int, domain.DrawSnapshot](cfg.CacheTTL, 0),
		ext:   NewExtractor(log, cfg.Extractor),
		cfg:   cfg,
		now:   time.Now,
	}
}

// Prizes returns the snapshot for one draw, resolving it through the
// browser on a cache miss. The bool reports whether the cache served it.
func (s *Service) Prizes(ctx context.Context, draw int, refresh bool) (domain.DrawSnapshot, bool, error) {
	if refresh {
		// NGR depends on the preceding draw too, so a forced refresh
		// evicts both entries
		s.cache.Evict(draw)
		s.cache.Evict(draw - 1)
	} else if snap, ok := s.cache.Get(draw); ok {
		metrics.CacheEvents.WithLabelValues("draws", "hit").Inc()
		return snap, true, nil
	}
	metrics.CacheEvents.WithLabelValues("draws", "miss").Inc()

	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return domain.DrawSnapshot{}, false, fmt.Errorf("resolve draw %d: %w", draw, err)
	}
	defer lease.Release()

	nav := NewNavigator(s.log, lease.Session, s.cfg.Navigator)
	snap, err := s.resolve(ctx, nav, draw)
	if err != nil {
		return domain.DrawSnapshot{}, false, err
	}
	return snap, false, nil
}

// NGR reconciles every requested draw against its predecessor. One
// unresolvable draw fails only its own entry; the rest of the batch is
// unaffected. A single browser session serves all misses in the batch.
func (s *Service) NGR(ctx context.Context, draws []int, refresh bool) []domain.NGRResult {
	if refresh {
		for _, d := range draws {
			s.cache.Evict(d)
			s.cache.Evict(d - 1)
		}
	}

	var nav *Navigator
	var lease *browser.Lease
	defer func() {
		if lease != nil {
			lease.Release()
		}
	}()

	// snapshot serves from cache, lazily opening the shared session on the
	// first miss
	snapshot := func(draw int) (*domain.DrawSnapshot, error) {
		if snap, ok := s.cache.Get(draw); ok {
			metrics.CacheEvents.WithLabelValues("draws", "hit").Inc()
			return &snap, nil
		}
		metrics.CacheEvents.WithLabelValues("draws", "miss").Inc()

		if nav == nil {
			var err error
			lease, err = s.pool.Acquire(ctx)
			if err != nil {
				return nil, fmt.Errorf("draw %d: %w", draw, err)
			}
			nav = NewNavigator(s.log, lease.Session, s.cfg.Navigator)
		}

		snap, err := s.resolve(ctx, nav, draw)
		if err != nil {
			return nil, err
		}
		return &snap, nil
	}

	results := make([]domain.NGRResult, 0, len(draws))
	for _, draw := range draws {
		cur, err := snapshot(draw)
		if err == nil {
			var prev *domain.DrawSnapshot
			prev, err = snapshot(draw - 1)
			if err == nil {
				res, rerr := Reconcile(prev, cur)
				if rerr != nil {
					err = rerr
				} else {
					results = append(results, res)
					continue
				}
			}
		}

		s.log.Warnf("ngr for draw %d failed: %v", draw, err)
		results = append(results, domain.NGRResult{
			DrawNumber: draw,
			Success:    false,
			Error:      err.Error(),
		})
	}

	return results
}

func (s *Service) resolve(ctx context.Context, nav *Navigator, draw int) (domain.DrawSnapshot, error) {
	start := s.now()

	html, err := nav.Seek(ctx, draw)
	metrics.ScrapeDuration.WithLabelValues("draw").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ScrapeTotal.WithLabelValues("draw", "failed").Inc()
		return domain.DrawSnapshot{}, fmt.Errorf("draw %d: %w", draw, err)
	}

	snap := s.ext.Snapshot(html, draw, s.now())
	if snap.Empty() {
		metrics.ScrapeTotal.WithLabelValues("draw", "empty").Inc()
	} else {
		metrics.ScrapeTotal.WithLabelValues("draw", "live").Inc()
	}

	s.cache.Put(draw, snap)
	return snap, nil
}

func (s *Service) Close() { s.cache.Close() }
