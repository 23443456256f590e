package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/grafana/pyroscope-go"
	lgcfg "gitlab.com/nevasik7/alerting/config"
	"gitlab.com/nevasik7/alerting/logger"

	httpapi "drawstats/internal/api/http"
	"drawstats/internal/api/http/handlers"
	"drawstats/internal/api/http/mw"
	"drawstats/internal/browser"
	"drawstats/internal/config"
	"drawstats/internal/lottery"
	"drawstats/internal/metrics"
	"drawstats/internal/revenue"
	"drawstats/internal/service"
)

type Container struct {
	app *App

	// services
	lotterySvc *lottery.Service
	aggSvc     *service.AggregatorService

	// servers
	httpSrv *httpapi.Server

	// background refresh
	sched *gocron.Scheduler

	// metrics
	profiler *pyroscope.Profiler

	cleanupF func()
}

func (c *Container) Start() error {
	if c.sched != nil {
		c.sched.StartAsync()
	}
	return c.app.Start()
}

func (c *Container) Stop(ctx context.Context) error {
	if err := c.app.Shutdown(ctx); err != nil {
		return fmt.Errorf("app shutdown is failed, error=%w", err)
	}

	if c.cleanupF != nil {
		c.cleanupF()
	}
	return nil
}

// Construct image app
func Build(cfg *config.Config) (*Container, func()) {
	lg := logger.New(lgcfg.LoggerCfg{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	lg.Info("Successfully initialize logger")

	profiler, err := metrics.InitProfiler(&metrics.ProfilerConfig{
		Enabled:       cfg.Metrics.Profiler.Enabled,
		AppName:       cfg.Metrics.Profiler.AppName,
		ServerAddr:    cfg.Metrics.Profiler.ServerAddr,
		AuthToken:     cfg.Metrics.Profiler.AuthToken,
		Tags:          cfg.Metrics.Profiler.Tags,
		AppInstanceID: cfg.App.InstanceID,
	})
	if err != nil {
		lg.Panicf("Profiler initialize failed: %v", err)
	}
	if profiler != nil {
		lg.Infof("Successfully initialize profiler to %s as %s",
			cfg.Metrics.Profiler.ServerAddr, cfg.Metrics.Profiler.AppName)
	}

	// One browser slot shared by every scraping component
	pool := browser.NewPool(lg, browser.NewChromeFactory(cfg.Browser))
	lg.Info("Successfully initialize browser pool")

	// Service Layer
	lotterySvc := lottery.NewService(lg, pool, cfg.Lottery)
	lg.Infof("Successfully initialize lottery service, results_url=%s", cfg.Lottery.Navigator.ResultsURL)

	fetchers := buildFetchers(lg, pool, cfg.Revenue.Tokens)
	aggSvc := service.NewAggregatorService(lg, fetchers, service.AggregatorConfig{
		CacheTTL: cfg.Revenue.CacheTTL,
	})
	lg.Infof("Successfully initialize revenue aggregator for tokens %v", aggSvc.Tokens())

	// HTTP Server
	handler := handlers.NewHandler(lg, aggSvc, lotterySvc)

	var corsMW *mw.CORSMiddleware
	if cfg.API.HTTP.CORS.Enabled {
		corsMW = mw.NewCORS(&cfg.API.HTTP.CORS)
	}
	router := httpapi.BuildRouter(
		handler,
		mw.NewLogging(lg),
		mw.NewGzip(0, lg),
		mw.NewRateLimit(mw.RateBucket{
			RefillPerSec: cfg.RateLimit.ByIP.RefillPerSec,
			Burst:        cfg.RateLimit.ByIP.Burst,
		}),
		corsMW,
	)
	httpSrv := httpapi.NewServer(lg, cfg.API.HTTP, router)
	lg.Info("Successfully initialize HTTP server")

	// Background warmer keeps the revenue report hot so dashboard requests
	// rarely pay the scrape latency
	var sched *gocron.Scheduler
	if cfg.Revenue.RefreshEvery > 0 {
		sched = gocron.NewScheduler(time.UTC)
		if _, err = sched.Every(cfg.Revenue.RefreshEvery).Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			rep, _ := aggSvc.Report(ctx, true)
			lg.Infof("revenue warmer: %d/%d sources live", rep.LiveCount, len(fetchers))
		}); err != nil {
			lg.Panicf("Failed to schedule revenue warmer: %v", err)
		}
		lg.Infof("Successfully schedule revenue warmer every %s", cfg.Revenue.RefreshEvery)
	}

	c := &Container{
		app:        NewApp(lg, httpSrv),
		lotterySvc: lotterySvc,
		aggSvc:     aggSvc,
		httpSrv:    httpSrv,
		sched:      sched,
		profiler:   profiler,
	}

	cleanupF := func() {
		if c.sched != nil {
			c.sched.Stop()
		}

		lotterySvc.Close()
		aggSvc.Close()

		if c.profiler != nil {
			if err := c.profiler.Stop(); err != nil {
				lg.Errorf("Failed to stop profiler: %v", err)
			}
		}

		lg.Info("Successfully cleaned up dependency")
	}

	lg.Info("Successfully initialize Wiring")
	return c, cleanupF
}

func buildFetchers(lg logger.Logger, pool *browser.Pool, tokens []config.TokenConfig) []revenue.Fetcher {
	out := make([]revenue.Fetcher, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Strategy {
		case config.StrategyAPI:
			out = append(out, revenue.NewAPIFetcher(lg, tok.Symbol, tok.API))
		case config.StrategyBreakdown:
			out = append(out, revenue.NewBreakdownFetcher(lg, pool, tok.Symbol, tok.Breakdown))
		case config.StrategyAccrualTable:
			out = append(out, revenue.NewAccrualTableFetcher(lg, pool, tok.Symbol, tok.AccrualTable))
		}
	}
	return out
}
