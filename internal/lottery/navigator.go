package lottery

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"drawstats/internal/browser"
)

// Navigation failure: control not found, timeout, or the page never showed
// the requested draw. Aborts the whole draw resolution; no partial credit.
var ErrNavigation = errors.New("navigation failed")

var drawNumberRe = regexp.MustCompile(`(?i)draw\s*#?\s*([0-9]+)`)

type NavigatorConfig struct {
	ResultsURL    string        `yaml:"results_url"`
	ReadySelector string        `yaml:"ready_selector"` // element that signals dynamic content settled
	PrevSelector  string        `yaml:"prev_selector"`
	NextSelector  string        `yaml:"next_selector"`
	SettleDelay   time.Duration `yaml:"settle_delay"` // wait after each click
}

// Navigator walks the paginated results surface one session at a time.
// States: unpositioned (current=0) -> positioned (current read from the
// page) -> on target (after Seek verified the displayed number).
type Navigator struct {
	log     logger.Logger
	sess    browser.Session
	cfg     NavigatorConfig
	current int
	clicks  int
}

func NewNavigator(log logger.Logger, sess browser.Session, cfg NavigatorConfig) *Navigator {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 1500 * time.Millisecond
	}
	return &Navigator{log: log, sess: sess, cfg: cfg}
}

// Position loads the results surface and reads the currently displayed
// draw number.
func (n *Navigator) Position(ctx context.Context) (int, error) {
	if err := n.sess.Navigate(ctx, n.cfg.ResultsURL); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	if n.cfg.ReadySelector != "" {
		if err := n.sess.WaitVisible(ctx, n.cfg.ReadySelector); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrNavigation, err)
		}
	}

	cur, err := n.readDrawNumber(ctx)
	if err != nil {
		return 0, err
	}

	n.current = cur
	n.log.Debugf("positioned on draw %d", cur)
	return cur, nil
}

// Seek moves from the current draw to the target by clicking previous/next
// the computed number of times, then re-reads the displayed number to
// confirm arrival. Returns the rendered HTML of the target page.
// One failed interaction aborts; the caller decides whether to fall back.
func (n *Navigator) Seek(ctx context.Context, target int) (string, error) {
	if target <= 0 {
		return "", fmt.Errorf("%w: invalid target draw %d", ErrNavigation, target)
	}
	if n.current == 0 {
		if _, err := n.Position(ctx); err != nil {
			return "", err
		}
	}

	delta := n.current - target
	selector := n.cfg.PrevSelector
	if delta < 0 {
		selector = n.cfg.NextSelector
		delta = -delta
	}

	for i := 0; i < delta; i++ {
		if err := n.sess.Click(ctx, selector); err != nil {
			n.current = 0 // position unknown after a partial batch
			return "", fmt.Errorf("%w: interaction %d/%d towards draw %d: %v", ErrNavigation, i+1, delta, target, err)
		}
		n.clicks++
		if err := n.settle(ctx); err != nil {
			n.current = 0
			return "", err
		}
	}

	got, err := n.readDrawNumber(ctx)
	if err != nil {
		n.current = 0
		return "", err
	}
	n.current = got
	if got != target {
		return "", fmt.Errorf("%w: expected draw %d, page shows draw %d", ErrNavigation, target, got)
	}

	return n.sess.HTML(ctx)
}

// Interactions reports how many previous/next clicks were issued.
func (n *Navigator) Interactions() int { return n.clicks }

func (n *Navigator) readDrawNumber(ctx context.Context) (int, error) {
	html, err := n.sess.HTML(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	m := drawNumberRe.FindStringSubmatch(html)
	if m == nil {
		return 0, fmt.Errorf("%w: no draw number found in rendered page", ErrNavigation)
	}
	num, err := strconv.Atoi(m[1])
	if err != nil || num <= 0 {
		return 0, fmt.Errorf("%w: implausible draw number %q", ErrNavigation, m[1])
	}
	return num, nil
}

func (n *Navigator) settle(ctx context.Context) error {
	t := time.NewTimer(n.cfg.SettleDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNavigation, ctx.Err())
	}
}
