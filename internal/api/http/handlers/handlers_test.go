package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	loggerCfg "gitlab.com/nevasik7/alerting/config"
	"gitlab.com/nevasik7/alerting/logger"

	"drawstats/internal/browser"
	"drawstats/internal/domain"
	"drawstats/internal/lottery"
	"drawstats/internal/revenue"
	"drawstats/internal/service"
)

func newTestLogger() logger.Logger {
	return logger.New(loggerCfg.LoggerCfg{
		Level:  "error",
		Format: "json",
	})
}

type staticFetcher struct {
	symbol string
	err    error
}

func (f staticFetcher) Token() string { return f.symbol }

func (f staticFetcher) Fetch(context.Context) (domain.RevenueSnapshot, error) {
	if f.err != nil {
		return domain.RevenueSnapshot{}, f.err
	}
	return f.snapshot(domain.ConfidenceLive), nil
}

func (f staticFetcher) Estimate() domain.RevenueSnapshot {
	return f.snapshot(domain.ConfidenceEstimated)
}

func (f staticFetcher) snapshot(conf domain.Confidence) domain.RevenueSnapshot {
	return domain.RevenueSnapshot{
		TokenSymbol:   f.symbol,
		WeeklyRevenue: decimal.New(1000, 0),
		Confidence:    conf,
		CapturedAt:    time.Now(),
	}
}

// testHandler wires real services over fakes: static revenue fetchers and a
// browser pool whose factory always fails, which exercises the degraded
// paths without a browser.
func testHandler(t *testing.T, fetchers ...revenue.Fetcher) *Handler {
	t.Helper()
	log := newTestLogger()

	pool := browser.NewPool(log, func(context.Context) (browser.Session, error) {
		return nil, errors.New("no browser in tests")
	})
	lotSvc := lottery.NewService(log, pool, lottery.ServiceConfig{
		Navigator: lottery.NavigatorConfig{
			ResultsURL:   "https://lottery.example/results",
			PrevSelector: "#prev",
			NextSelector: "#next",
		},
	})
	t.Cleanup(lotSvc.Close)

	aggSvc := service.NewAggregatorService(log, fetchers, service.AggregatorConfig{CacheTTL: time.Hour})
	t.Cleanup(aggSvc.Close)

	return NewHandler(log, aggSvc, lotSvc)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	h := testHandler(t, staticFetcher{symbol: "RLB"})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])

	rec = httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRevenueEndpoint(t *testing.T) {
	t.Parallel()

	h := testHandler(t,
		staticFetcher{symbol: "RLB"},
		staticFetcher{symbol: "WINR", err: errors.New("api down")},
		staticFetcher{symbol: "SHFL"},
	)

	rec := httptest.NewRecorder()
	h.Revenue(rec, httptest.NewRequest(http.MethodGet, "/api/revenue", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["liveCount"])
	assert.Equal(t, false, body["cached"])
	assert.Len(t, body["data"], 3, "failed source still yields a snapshot")

	// second request comes from cache
	rec = httptest.NewRecorder()
	h.Revenue(rec, httptest.NewRequest(http.MethodGet, "/api/revenue", nil))
	assert.Equal(t, true, decode(t, rec)["cached"])
}

func TestNGREndpoint_BadRequest(t *testing.T) {
	t.Parallel()

	h := testHandler(t, staticFetcher{symbol: "RLB"})

	for _, target := range []string{
		"/api/lottery-ngr",
		"/api/lottery-ngr?draws=",
		"/api/lottery-ngr?draws=abc,-1,0",
	} {
		rec := httptest.NewRecorder()
		h.NGR(rec, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
	}
}

func TestNGREndpoint_BrowserFailureIsolatedPerDraw(t *testing.T) {
	t.Parallel()

	h := testHandler(t, staticFetcher{symbol: "RLB"})

	rec := httptest.NewRecorder()
	h.NGR(rec, httptest.NewRequest(http.MethodGet, "/api/lottery-ngr?draws=64,65", nil))

	assert.Equal(t, http.StatusOK, rec.Code, "resolution failures stay inside result entries")
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)
	for _, raw := range results {
		entry := raw.(map[string]any)
		assert.Equal(t, false, entry["success"])
		assert.NotEmpty(t, entry["error"])
	}
}

func TestPrizesEndpoint(t *testing.T) {
	t.Parallel()

	h := testHandler(t, staticFetcher{symbol: "RLB"})

	for _, target := range []string{
		"/api/lottery-prizes",
		"/api/lottery-prizes?draw=abc",
		"/api/lottery-prizes?draw=0",
	} {
		rec := httptest.NewRecorder()
		h.Prizes(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	// valid draw with no browser available surfaces as an upstream error
	rec := httptest.NewRecorder()
	h.Prizes(rec, httptest.NewRequest(http.MethodGet, "/api/lottery-prizes?draw=64", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
