package crawler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/arovil7777/naver-news-crawling/internal/browser"
	"github.com/arovil7777/naver-news-crawling/internal/templates"
	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// ListCrawler turns an article list page into stubs
type ListCrawler struct {
	lookup      Lookup
	timeouts    Timeouts
	maxLoadMore int
	logger      *log.Logger
	now         func() time.Time
}

// NewListCrawler creates a list crawler. maxLoadMore caps the number of
// "load more" activations per page.
func NewListCrawler(lookup Lookup, timeouts Timeouts, maxLoadMore int, logger *log.Logger) *ListCrawler {
	if maxLoadMore <= 0 {
		maxLoadMore = 100
	}
	return &ListCrawler{
		lookup:      lookup,
		timeouts:    timeouts.withDefaults(),
		maxLoadMore: maxLoadMore,
		logger:      discard(logger).With("component", "list"),
		now:         time.Now,
	}
}

// Crawl extracts every article on the list page at url after expanding it
// fully. Failures are logged and yield fewer or no stubs, never an error.
func (c *ListCrawler) Crawl(ctx context.Context, s browser.Session, url string) []common.ArticleStub {
	logger := c.logger.With("url", url)

	tmpl, ok := c.lookup.List(url)
	if !ok {
		logger.Warn("No list template matches page, skipping")
		return nil
	}

	if err := s.Navigate(ctx, url); err != nil {
		logger.Error("Navigation failed", "error", err)
		return nil
	}
	if err := s.WaitPresent(ctx, tmpl.ListContainer, c.timeouts.List); err != nil {
		logger.Warn("List container did not appear", "error", err)
		return nil
	}

	doc, err := s.Document(ctx)
	if err != nil {
		logger.Error("Error reading page", "error", err)
		return nil
	}
	category1, err := browser.Text(doc.Selection, tmpl.Category1)
	if err != nil {
		logger.Warn("Primary category label missing", "error", err)
	}
	var category2 string
	if tmpl.Category2 != "" {
		category2, _ = browser.Text(doc.Selection, tmpl.Category2)
	}

	expansions := c.expand(ctx, s, tmpl, logger)

	// Pagination is cumulative: the final DOM holds every loaded item.
	doc, err = s.Document(ctx)
	if err != nil {
		logger.Error("Error reading expanded page", "error", err)
		return nil
	}
	title, err := s.Title(ctx)
	if err != nil {
		logger.Debug("Error getting title", "error", err)
	}
	base, err := s.CurrentURL(ctx)
	if err != nil || base == "" {
		base = url
	}

	site := siteName(title)
	scrapedAt := c.now()
	items := browser.FindMany(doc.Selection, tmpl.Item)
	stubs := make([]common.ArticleStub, 0, len(items))
	for i, item := range items {
		stub, err := c.extract(item, tmpl, base)
		if err != nil {
			logger.Warn("Error while processing article", "index", i+1, "error", err)
			continue
		}
		stub.Site = site
		stub.Category1 = category1
		stub.Category2 = category2
		stub.ScrapedAt = scrapedAt
		stubs = append(stubs, stub)
	}

	logger.Info("Collected article list", "articles", len(stubs), "items", len(items), "expansions", expansions)
	return stubs
}

// expand activates the load-more trigger until it stops appearing or the
// cap is reached, and returns the number of activations.
func (c *ListCrawler) expand(ctx context.Context, s browser.Session, tmpl templates.ListTemplate, logger *log.Logger) int {
	if tmpl.LoadMore == "" {
		return 0
	}
	for n := 0; n < c.maxLoadMore; n++ {
		if ctx.Err() != nil {
			return n
		}
		if err := s.WaitPresent(ctx, tmpl.LoadMore, c.timeouts.Trigger); err != nil {
			return n
		}
		if err := s.Click(ctx, tmpl.LoadMore, c.timeouts.Trigger); err != nil {
			logger.Debug("Load more trigger not clickable", "error", err)
			return n
		}
		if err := s.WaitPresent(ctx, tmpl.ListContainer, c.timeouts.List); err != nil {
			logger.Warn("List container vanished after loading more", "error", err)
			return n + 1
		}
	}
	logger.Warn("Load more cap reached, list may be incomplete", "cap", c.maxLoadMore)
	return c.maxLoadMore
}

func (c *ListCrawler) extract(item *goquery.Selection, tmpl templates.ListTemplate, base string) (common.ArticleStub, error) {
	var stub common.ArticleStub

	title, err := browser.Text(item, tmpl.Title)
	if err != nil {
		return stub, fmt.Errorf("title: %w", err)
	}
	link, err := browser.Href(item, tmpl.Link, base)
	if err != nil {
		return stub, fmt.Errorf("url: %w", err)
	}
	publisher, err := browser.Text(item, tmpl.Publisher)
	if err != nil && tmpl.PublisherScope != "" {
		publisher, err = browser.Text(item.Closest(tmpl.PublisherScope), tmpl.Publisher)
	}
	if err != nil {
		return stub, fmt.Errorf("publisher: %w", err)
	}

	stub.Title = title
	stub.URL = link
	stub.Publisher = publisher
	if tmpl.Summary != "" {
		stub.Summary, _ = browser.Text(item, tmpl.Summary)
	}
	if tmpl.Rank != "" {
		if rank, err := browser.Text(item, tmpl.Rank); err == nil {
			stub.Rank, _ = strconv.Atoi(rank)
		}
	}
	return stub, nil
}
