package revenue

import (
	"context"
	"fmt"

	"drawstats/internal/browser"
)

// scrapePage captures the rendered HTML of one page through the shared
// single-slot browser pool. The lease is released on every path.
func scrapePage(ctx context.Context, pool *browser.Pool, url, readySelector string) (string, error) {
	lease, err := pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire browser: %w", err)
	}
	defer lease.Release()

	if err := lease.Navigate(ctx, url); err != nil {
		return "", err
	}
	if readySelector != "" {
		if err := lease.WaitVisible(ctx, readySelector); err != nil {
			return "", err
		}
	}
	return lease.HTML(ctx)
}
