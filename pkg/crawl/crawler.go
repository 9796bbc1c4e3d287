// Package crawl runs a harvest: category discovery, list pages (Phase 1) and
// article contents (Phase 2), merged into one record per stub.
package crawl

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/arovil7777/naver-news-crawling/internal/browser"
	"github.com/arovil7777/naver-news-crawling/internal/crawler"
	"github.com/arovil7777/naver-news-crawling/internal/dates"
	"github.com/arovil7777/naver-news-crawling/internal/pool"
	"github.com/arovil7777/naver-news-crawling/internal/progress"
	"github.com/arovil7777/naver-news-crawling/internal/queue"
	"github.com/arovil7777/naver-news-crawling/internal/templates"
	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// Crawler represents the news harvester
type Crawler struct {
	config   *common.Configuration
	factory  browser.Factory
	portal   templates.Portal
	registry *templates.Registry
	cache    *templates.Cache
	lists    *crawler.ListCrawler
	contents *crawler.ContentCrawler
	progress *progress.Tracker
	logger   *log.Logger
	now      func() time.Time
	runID    string
}

// Option customizes a Crawler
type Option func(*Crawler)

// WithRegistry replaces the default Naver templates.
func WithRegistry(r *templates.Registry) Option {
	return func(c *Crawler) { c.registry = r }
}

// WithPortal replaces the default Naver taxonomy layout.
func WithPortal(p templates.Portal) Option {
	return func(c *Crawler) { c.portal = p }
}

// WithProgress sets the progress display.
func WithProgress(p *progress.Tracker) Option {
	return func(c *Crawler) { c.progress = p }
}

// WithClock sets the clock used for date parameters and the summary.
func WithClock(now func() time.Time) Option {
	return func(c *Crawler) { c.now = now }
}

// NewCrawler creates and initializes a new Crawler instance
func NewCrawler(config *common.Configuration, factory browser.Factory, logger *log.Logger, opts ...Option) (*Crawler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := &Crawler{
		config:   config,
		factory:  factory,
		portal:   templates.NaverPortal,
		registry: templates.DefaultRegistry(),
		progress: progress.Quiet(),
		logger:   logger,
		now:      time.Now,
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}

	timeouts := crawler.Timeouts{
		List:    config.ListTimeout,
		Trigger: config.TriggerTimeout,
		Content: config.ContentTimeout,
	}
	c.logger = logger.With("run", c.runID[:8])
	c.cache = templates.NewCache(c.registry)
	c.lists = crawler.NewListCrawler(c.cache, timeouts, config.MaxLoadMore, c.logger)
	c.contents = crawler.NewContentCrawler(c.cache, timeouts, dates.New(dates.KST), c.logger)
	return c, nil
}

// RunID identifies this harvest in logs, file names and the summary.
func (c *Crawler) RunID() string {
	return c.runID
}

// Result is the outcome of a run
type Result struct {
	Records []common.ArticleRecord
	Summary common.Summary
}

// Run performs one full sweep. Only fatal conditions (the browser cannot be
// launched, the home page cannot be read) are returned as errors; everything
// else degrades to fewer or partial records.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	started := c.now()
	c.logger.Info("Starting crawl", "base_url", c.config.BaseURL)

	categories, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}

	stubs, err := c.CollectStubs(ctx, categories)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Collected article stubs", "stubs", len(stubs))

	contents, err := c.FetchContents(ctx, stubs)
	if err != nil {
		return nil, err
	}

	summary := common.Summary{
		RunID:      c.runID,
		StartedAt:  started,
		Categories: len(categories),
		Stubs:      len(stubs),
		Attempted:  len(contents),
	}
	for _, content := range contents {
		switch {
		case content.Complete():
			summary.Complete++
		case content.UnavailableReason != "":
			summary.Unavailable++
		default:
			summary.Partial++
		}
	}
	summary.Elapsed = c.now().Sub(started)

	c.logger.Info("Crawl completed",
		"categories", summary.Categories,
		"stubs", summary.Stubs,
		"complete", summary.Complete,
		"partial", summary.Partial,
		"unavailable", summary.Unavailable,
		"elapsed", summary.Elapsed)

	return &Result{Records: Merge(stubs, contents), Summary: summary}, nil
}

func (c *Crawler) discover(ctx context.Context) ([]common.CategoryRef, error) {
	s, err := c.factory.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Close(); err != nil {
			c.logger.Warn("Error closing browser session", "error", err)
		}
	}()
	return c.DiscoverCategories(ctx, s)
}

// DiscoverCategories reads the top-level categories from the home page,
// keeping those whose position falls in the configured range. Date-scoped
// categories carry today's date parameter.
func (c *Crawler) DiscoverCategories(ctx context.Context, s browser.Session) ([]common.CategoryRef, error) {
	if err := s.Navigate(ctx, c.config.BaseURL); err != nil {
		return nil, fmt.Errorf("open home page: %w", err)
	}
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, fmt.Errorf("read home page: %w", err)
	}
	base, err := s.CurrentURL(ctx)
	if err != nil || base == "" {
		base = c.config.BaseURL
	}

	var categories []common.CategoryRef
	for i, link := range browser.FindMany(doc.Selection, c.portal.Categories) {
		if i < c.config.CategoryFrom || i > c.config.CategoryTo {
			continue
		}
		href, ok := link.Attr("href")
		if !ok {
			c.logger.Warn("Category without link", "index", i)
			continue
		}
		u, err := browser.ResolveURL(base, strings.TrimSpace(href))
		if err != nil {
			c.logger.Warn("Error collecting category", "index", i, "error", err)
			continue
		}

		category := common.CategoryRef{
			Name: strings.TrimSpace(link.Text()),
			URL:  u,
		}
		if c.portal.DateScoped != "" && strings.Contains(u, c.portal.DateScoped) {
			category.DateScoped = true
			category.URL = c.withDate(u)
		}
		categories = append(categories, category)
	}

	c.logger.Info("Discovered categories", "categories", len(categories))
	return categories, nil
}

// SubCategories lists the children of category. A date-scoped category has
// none and is returned as its own single sub-category.
func (c *Crawler) SubCategories(ctx context.Context, s browser.Session, category common.CategoryRef) []common.SubCategoryRef {
	if category.DateScoped {
		return []common.SubCategoryRef{{Name: category.Name, URL: c.withDate(category.URL)}}
	}

	logger := c.logger.With("category", category.Name)
	if err := s.Navigate(ctx, category.URL); err != nil {
		logger.Error("Error collecting sub categories", "error", err)
		return nil
	}
	doc, err := s.Document(ctx)
	if err != nil {
		logger.Error("Error collecting sub categories", "error", err)
		return nil
	}
	base, err := s.CurrentURL(ctx)
	if err != nil || base == "" {
		base = category.URL
	}

	var subs []common.SubCategoryRef
	for _, link := range browser.FindMany(doc.Selection, c.portal.SubCategories) {
		href, ok := link.Attr("href")
		if !ok {
			continue
		}
		u, err := browser.ResolveURL(base, strings.TrimSpace(href))
		if err != nil {
			logger.Warn("Invalid sub category link", "href", href, "error", err)
			continue
		}
		subs = append(subs, common.SubCategoryRef{
			Name: strings.TrimSpace(link.Text()),
			URL:  c.withDate(u),
		})
	}
	return subs
}

// withDate sets the portal's date parameter to today, replacing any value
// already present.
func (c *Crawler) withDate(raw string) string {
	if c.portal.DateParam == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(c.portal.DateParam, c.now().In(dates.KST).Format(c.portal.DateLayout))
	u.RawQuery = q.Encode()
	return u.String()
}

// CollectStubs runs Phase 1: every category is crawled with its own session
// and the stubs are returned in category order.
func (c *Crawler) CollectStubs(ctx context.Context, categories []common.CategoryRef) ([]common.ArticleStub, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	p := pool.New(c.factory, min(c.config.CategoryWorkers, len(categories)), c.logger)
	c.progress.StartPhase(fmt.Sprintf("Collecting article lists of %d categories", len(categories)))
	defer c.progress.StopPhase()

	results, err := pool.Scatter(ctx, p, categories, c.crawlCategory)
	if err != nil {
		return nil, err
	}

	ordered := make([][]common.ArticleStub, len(categories))
	for _, r := range results {
		ordered[r.Index] = r.Value
	}
	var stubs []common.ArticleStub
	for _, found := range ordered {
		stubs = append(stubs, found...)
	}
	return stubs, nil
}

func (c *Crawler) crawlCategory(ctx context.Context, s browser.Session, category common.CategoryRef) []common.ArticleStub {
	c.progress.UpdatePhase(category.Name)

	var stubs []common.ArticleStub
	for _, sub := range c.SubCategories(ctx, s, category) {
		if ctx.Err() != nil {
			break
		}
		found := c.lists.Crawl(ctx, s, sub.URL)
		c.logger.Debug("Crawled sub category",
			"category", category.Name,
			"sub_category", sub.Name,
			"stubs", len(found))
		stubs = append(stubs, found...)
	}
	return stubs
}

// FetchContents runs Phase 2: each distinct stub URL is fetched with its own
// session. Contents are returned in completion order.
func (c *Crawler) FetchContents(ctx context.Context, stubs []common.ArticleStub) ([]common.ArticleContent, error) {
	q := queue.New()
	for _, stub := range stubs {
		q.Add(stub)
	}
	unique := q.Drain()
	if len(unique) == 0 {
		return nil, nil
	}

	workers := pool.Size(len(unique), c.config.Parallelism, c.config.WorkerFactor, c.config.WorkerReserve)
	c.logger.Info("Fetching article contents",
		"articles", len(unique),
		"duplicates", len(stubs)-q.VisitedCount(),
		"workers", workers)

	c.progress.SetTotal(len(unique))
	defer c.progress.Finish()

	results, err := pool.Scatter(ctx, pool.New(c.factory, workers, c.logger), unique,
		func(ctx context.Context, s browser.Session, stub common.ArticleStub) common.ArticleContent {
			content := c.contents.Crawl(ctx, s, stub)
			c.progress.Increment()
			return content
		})
	if err != nil {
		return nil, err
	}

	contents := make([]common.ArticleContent, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Value)
	}
	return contents, nil
}

// Merge pairs every stub with the content fetched for its URL. The output
// follows the order of stubs whatever the order of contents; a stub with no
// content keeps its list fields only.
func Merge(stubs []common.ArticleStub, contents []common.ArticleContent) []common.ArticleRecord {
	byURL := make(map[string]*common.ArticleContent, len(contents))
	for i := range contents {
		byURL[contents[i].URL] = &contents[i]
	}

	records := make([]common.ArticleRecord, 0, len(stubs))
	for _, stub := range stubs {
		records = append(records, common.NewRecord(stub, byURL[stub.URL]))
	}
	return records
}
