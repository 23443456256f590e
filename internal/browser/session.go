package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Session is the minimal automation surface the scrapers drive. The chromedp
// implementation is the only production one; tests script their own.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	HTML(ctx context.Context) (string, error)
	Close()
}

type Config struct {
	Headless  bool          `yaml:"headless"`
	ExecPath  string        `yaml:"exec_path"`  // optional chrome binary path
	RemoteURL string        `yaml:"remote_url"` // optional devtools ws:// endpoint
	UserAgent string        `yaml:"user_agent"`
	OpTimeout time.Duration `yaml:"op_timeout"` // per-operation bound
}

type chromeSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
	timeout time.Duration
}

// NewChromeFactory returns a Factory that starts one headless browser per
// session. Startup failure is the total-failure condition the orchestrator
// degrades on, so it is surfaced from the factory, not from later operations.
func NewChromeFactory(cfg Config) Factory {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 30 * time.Second
	}

	return func(ctx context.Context) (Session, error) {
		var (
			allocCtx    context.Context
			cancelAlloc context.CancelFunc
		)
		if cfg.RemoteURL != "" {
			allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
		} else {
			opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
			opts = append(opts,
				chromedp.Flag("headless", cfg.Headless),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
			)
			if cfg.ExecPath != "" {
				opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
			}
			if cfg.UserAgent != "" {
				opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
			}
			allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
		}

		taskCtx, cancelTask := chromedp.NewContext(allocCtx)

		// empty run forces the browser process to actually start
		if err := chromedp.Run(taskCtx); err != nil {
			cancelTask()
			cancelAlloc()
			return nil, fmt.Errorf("browser session start failed: %w", err)
		}

		return &chromeSession{
			ctx:     taskCtx,
			cancels: []context.CancelFunc{cancelTask, cancelAlloc},
			timeout: cfg.OpTimeout,
		}, nil
	}
}

func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(opCtx, actions...) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) WaitVisible(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capture html: %w", err)
	}
	return html, nil
}

// Close tears the session and its browser process down.
func (s *chromeSession) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}
