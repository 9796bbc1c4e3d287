package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// ChromeOptions configures launched browsers
type ChromeOptions struct {
	ExecPath          string
	UserAgent         string
	Headless          bool
	NavigationTimeout time.Duration
}

// Chrome launches one Chrome process per session. Every process gets its own
// temporary profile, so no cookies or cache are shared between sessions.
type Chrome struct {
	opts   ChromeOptions
	logger *log.Logger
}

// NewChrome returns a factory for chromedp sessions.
func NewChrome(opts ChromeOptions, logger *log.Logger) *Chrome {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	return &Chrome{opts: opts, logger: logger}
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", c.opts.Headless),
	)
	if c.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.ExecPath))
	}
	if c.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.opts.UserAgent))
	}
	return opts
}

// NewSession starts a browser. Failure to start is fatal for the run.
func (c *Chrome) NewSession(ctx context.Context) (Session, error) {
	// The browser must outlive ctx's deadline-bound callers, but not its
	// cancellation.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), c.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, common.Fatal("launch browser: %w", err)
	}

	s := &chromeSession{
		ctx:        browserCtx,
		navTimeout: c.opts.NavigationTimeout,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}
	s.stop = context.AfterFunc(ctx, s.cancel)
	c.logger.Debug("Browser launched", "headless", c.opts.Headless)
	return s, nil
}

type chromeSession struct {
	ctx        context.Context
	cancel     context.CancelFunc
	stop       func() bool
	navTimeout time.Duration
}

// run executes actions within timeout, bounded by both the browser and the
// caller's context.
func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w after %v: %w", common.ErrTimeout, timeout, err)
	}
	return err
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.navTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) CurrentURL(ctx context.Context) (string, error) {
	var u string
	if err := s.run(ctx, s.navTimeout, chromedp.Location(&u)); err != nil {
		return "", fmt.Errorf("location: %w", err)
	}
	return u, nil
}

func (s *chromeSession) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, s.navTimeout, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("title: %w", err)
	}
	return title, nil
}

func (s *chromeSession) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	if err := s.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if err := s.run(ctx, timeout, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) Evaluate(ctx context.Context, expression string, out any) error {
	if err := s.run(ctx, s.navTimeout, chromedp.Evaluate(expression, out)); err != nil {
		return fmt.Errorf("evaluate %q: %w", expression, err)
	}
	return nil
}

func (s *chromeSession) Document(ctx context.Context) (*goquery.Document, error) {
	var html string
	if err := s.run(ctx, s.navTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return doc, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (s *chromeSession) Close() error {
	s.stop()
	s.cancel()
	return nil
}
