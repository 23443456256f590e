package lottery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	loggerCfg "gitlab.com/nevasik7/alerting/config"
	"gitlab.com/nevasik7/alerting/logger"
)

func newTestLogger() logger.Logger {
	return logger.New(loggerCfg.LoggerCfg{
		Level:  "error",
		Format: "json",
	})
}

// fakeSession models the paginated results surface: a current draw number,
// prev/next controls and per-draw page bodies.
type fakeSession struct {
	current     int
	home        int            // draw shown after a page (re)load; 0 keeps current
	pages       map[int]string // extra body per draw, appended after the header
	failClicks  bool
	failAtDraw  int // navigating onto this draw renders no draw number
	clicks      int
	navigations int
}

func (f *fakeSession) Navigate(_ context.Context, _ string) error {
	f.navigations++
	if f.home != 0 {
		f.current = f.home
	}
	return nil
}

func (f *fakeSession) WaitVisible(_ context.Context, _ string) error { return nil }

func (f *fakeSession) Click(_ context.Context, selector string) error {
	if f.failClicks {
		return errors.New("control not found")
	}
	f.clicks++
	switch selector {
	case "#prev":
		f.current--
	case "#next":
		f.current++
	default:
		return fmt.Errorf("unknown selector %q", selector)
	}
	return nil
}

func (f *fakeSession) HTML(_ context.Context) (string, error) {
	if f.current == f.failAtDraw {
		return "<html><body>loading...</body></html>", nil
	}
	body := f.pages[f.current]
	return fmt.Sprintf("<html><body><h2>Draw #%d</h2>%s</body></html>", f.current, body), nil
}

func (f *fakeSession) Close() {}

func navCfg() NavigatorConfig {
	return NavigatorConfig{
		ResultsURL:   "https://lottery.example/results",
		PrevSelector: "#prev",
		NextSelector: "#next",
		SettleDelay:  1, // nanosecond, keep tests fast
	}
}

func TestNavigator_PositionReadsCurrentDraw(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 70}
	nav := NewNavigator(newTestLogger(), sess, navCfg())

	cur, err := nav.Position(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 70, cur)
	assert.Equal(t, 1, sess.navigations)
}

func TestNavigator_SeekBackwards(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 70}
	nav := NewNavigator(newTestLogger(), sess, navCfg())

	html, err := nav.Seek(context.Background(), 64)
	require.NoError(t, err)
	assert.Contains(t, html, "Draw #64")
	assert.Equal(t, 6, nav.Interactions(), "interaction count must equal |70-64|")
}

func TestNavigator_SeekForwards(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 60}
	nav := NewNavigator(newTestLogger(), sess, navCfg())

	html, err := nav.Seek(context.Background(), 63)
	require.NoError(t, err)
	assert.Contains(t, html, "Draw #63")
	assert.Equal(t, 3, nav.Interactions())
}

func TestNavigator_SeekCurrentDrawIssuesZeroClicks(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 64}
	nav := NewNavigator(newTestLogger(), sess, navCfg())

	_, err := nav.Seek(context.Background(), 64)
	require.NoError(t, err)
	assert.Equal(t, 0, nav.Interactions())
	assert.Equal(t, 0, sess.clicks)
}

func TestNavigator_MissingControlAborts(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 70, failClicks: true}
	nav := NewNavigator(newTestLogger(), sess, navCfg())

	_, err := nav.Seek(context.Background(), 69)
	assert.ErrorIs(t, err, ErrNavigation)
}

func TestNavigator_NoDrawNumberOnPage(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{current: 70, failAtDraw: 70}
	nav := NewNavigator(newTestLogger(), sess, navCfg())

	_, err := nav.Position(context.Background())
	require.ErrorIs(t, err, ErrNavigation)
	assert.Contains(t, err.Error(), "no draw number")
}

func TestNavigator_ArrivalPageUnreadable(t *testing.T) {
	t.Parallel()

	// the target page never renders a parseable draw number
	sess := &fakeSession{current: 66, failAtDraw: 64}
	nav := NewNavigator(newTestLogger(), sess, navCfg())

	_, err := nav.Seek(context.Background(), 64)
	assert.ErrorIs(t, err, ErrNavigation)
}

// stuckSession accepts clicks but never actually changes page.
type stuckSession struct{ fakeSession }

func (s *stuckSession) Click(_ context.Context, _ string) error { return nil }

func TestNavigator_ArrivalMismatchAborts(t *testing.T) {
	t.Parallel()

	sess := &stuckSession{fakeSession{current: 66}}
	nav := NewNavigator(newTestLogger(), sess, navCfg())

	_, err := nav.Seek(context.Background(), 64)
	require.ErrorIs(t, err, ErrNavigation)
	assert.Contains(t, err.Error(), "expected draw 64")
}

func TestNavigator_InvalidTarget(t *testing.T) {
	t.Parallel()

	nav := NewNavigator(newTestLogger(), &fakeSession{current: 5}, navCfg())

	_, err := nav.Seek(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNavigation)
}
