package lottery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawstats/internal/browser"
)

func prizeBody(pool, winners, paid string) string {
	return `<table>
	<tr><td>Jackpot</td><td>` + pool + `</td><td>` + winners + `</td><td>` + paid + `</td></tr>
	</table>`
}

func testService(t *testing.T, sess browser.Session, factoryCalls *int) *Service {
	t.Helper()

	pool := browser.NewPool(newTestLogger(), func(context.Context) (browser.Session, error) {
		if factoryCalls != nil {
			*factoryCalls++
		}
		if sess == nil {
			return nil, errors.New("browser start failed")
		}
		return sess, nil
	})

	svc := NewService(newTestLogger(), pool, ServiceConfig{
		Navigator: navCfg(),
		CacheTTL:  time.Minute,
	})
	t.Cleanup(svc.Close)
	return svc
}

func TestService_PrizesResolvesAndCaches(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 70, home: 70, pages: map[int]string{
		64: prizeBody("$1,400,000", "0", "-"),
	}}
	calls := 0
	svc := testService(t, sess, &calls)

	snap, cached, err := svc.Prizes(context.Background(), 64, false)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 64, snap.DrawNumber)
	assert.True(t, snap.TotalPrizePool.Equal(decimal.RequireFromString("1400000")))
	assert.Equal(t, 1, calls)

	// hit within TTL: identical payload, no new session
	again, cached, err := svc.Prizes(context.Background(), 64, false)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, snap, again)
	assert.Equal(t, 1, calls, "cache hit must not open a browser session")
}

func TestService_ForceRefreshEvictsTargetAndPredecessor(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 70, home: 70, pages: map[int]string{
		63: prizeBody("$1,000,000", "0", "-"),
		64: prizeBody("$1,400,000", "0", "-"),
	}}
	calls := 0
	svc := testService(t, sess, &calls)

	_, _, err := svc.Prizes(context.Background(), 64, false)
	require.NoError(t, err)
	_, _, err = svc.Prizes(context.Background(), 63, false)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, cached, err := svc.Prizes(context.Background(), 64, true)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 3, calls)

	// 63 was evicted alongside 64
	_, cached, err = svc.Prizes(context.Background(), 63, false)
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestService_PrizesBrowserStartFailure(t *testing.T) {
	t.Parallel()

	svc := testService(t, nil, nil)

	_, _, err := svc.Prizes(context.Background(), 64, false)
	assert.Error(t, err)
}

func TestService_NGRBatch(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 70, home: 70, pages: map[int]string{
		63: prizeBody("$1,200,000", "1", "$50,000"),
		64: prizeBody("$1,400,000", "0", "-"),
	}}
	svc := testService(t, sess, nil)

	results := svc.NGR(context.Background(), []int{64}, false)
	require.Len(t, results, 1)

	res := results[0]
	assert.True(t, res.Success)
	assert.True(t, res.PreviousRollover.Equal(decimal.RequireFromString("1150000")))
	assert.True(t, res.NGRAdded.Equal(decimal.RequireFromString("250000")))
	assert.NotEmpty(t, res.Formula)
}

func TestService_NGRMissingPredecessor(t *testing.T) {
	t.Parallel()

	// draw 63's page never renders a parseable draw number
	sess := &fakeSession{current: 70, home: 70, failAtDraw: 63, pages: map[int]string{
		64: prizeBody("$1,400,000", "0", "-"),
	}}
	svc := testService(t, sess, nil)

	results := svc.NGR(context.Background(), []int{64}, false)
	require.Len(t, results, 1)

	res := results[0]
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "63")
	assert.True(t, res.NGRAdded.IsZero())
}

func TestService_NGRBatchIsolatesFailures(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 70, home: 70, failAtDraw: 66, pages: map[int]string{
		63: prizeBody("$1,200,000", "1", "$50,000"),
		64: prizeBody("$1,400,000", "0", "-"),
		69: prizeBody("$800,000", "0", "-"),
		70: prizeBody("$900,000", "0", "-"),
	}}
	svc := testService(t, sess, nil)

	results := svc.NGR(context.Background(), []int{64, 67, 70}, false)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success, "draw 64: %s", results[0].Error)
	assert.False(t, results[1].Success, "draw 67 depends on unresolvable draw 66")
	assert.Contains(t, results[1].Error, "66")
	assert.True(t, results[2].Success, "draw 70: %s", results[2].Error)
}

func TestService_NGRUsesOneSessionPerBatch(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 70, home: 70, pages: map[int]string{
		62: prizeBody("$700,000", "0", "-"),
		63: prizeBody("$1,200,000", "1", "$50,000"),
		64: prizeBody("$1,400,000", "0", "-"),
	}}
	calls := 0
	svc := testService(t, sess, &calls)

	results := svc.NGR(context.Background(), []int{63, 64}, false)
	require.Len(t, results, 2)
	assert.Equal(t, 1, calls, "one lease must cover the whole batch")
}
