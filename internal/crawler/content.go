package crawler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/arovil7777/naver-news-crawling/internal/browser"
	"github.com/arovil7777/naver-news-crawling/internal/dates"
	"github.com/arovil7777/naver-news-crawling/internal/templates"
	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// articlePath matches /article/{office id}/{article id}.
var articlePath = regexp.MustCompile(`/article/(\d+)/(\d+)`)

// Attributes carrying machine-readable timestamps on news pages.
var dateAttrs = []string{"data-date-time", "data-modify-date-time"}

// ContentCrawler fetches the body of one article
type ContentCrawler struct {
	lookup   Lookup
	timeouts Timeouts
	dates    dates.Normalizer
	logger   *log.Logger
}

// NewContentCrawler creates a content crawler.
func NewContentCrawler(lookup Lookup, timeouts Timeouts, normalizer dates.Normalizer, logger *log.Logger) *ContentCrawler {
	return &ContentCrawler{
		lookup:   lookup,
		timeouts: timeouts.withDefaults(),
		dates:    normalizer,
		logger:   discard(logger).With("component", "content"),
	}
}

// Crawl fetches the article behind stub. Extraction stops at the first
// failing field; the failure is logged and recorded on the result.
func (c *ContentCrawler) Crawl(ctx context.Context, s browser.Session, stub common.ArticleStub) common.ArticleContent {
	content := common.ArticleContent{URL: stub.URL}
	logger := c.logger.With("url", stub.URL)

	err := c.extract(ctx, s, &content)
	var unavailable *common.ContentUnavailableError
	switch {
	case err == nil:
	case errors.As(err, &unavailable):
		content.UnavailableReason = unavailable.Notice
		if content.UnavailableReason == "" {
			content.UnavailableReason = "content unavailable"
		}
		logger.Warn("Article unavailable", "notice", unavailable.Notice)
	case errors.Is(err, common.ErrNoTemplate):
		logger.Warn("No content template matches page, skipping", "error", err)
	default:
		logger.Error("Error while processing article content", "error", err)
	}
	return content
}

func (c *ContentCrawler) extract(ctx context.Context, s browser.Session, content *common.ArticleContent) error {
	fail := func(field string, err error) error {
		content.Fail(field, err)
		return err
	}

	if err := s.Navigate(ctx, content.URL); err != nil {
		return fail("page", err)
	}
	current, err := s.CurrentURL(ctx)
	if err != nil || current == "" {
		current = content.URL
	}

	tmpl, ok := c.lookup.Content(current)
	if !ok {
		return fail("template", fmt.Errorf("%s: %w", current, common.ErrNoTemplate))
	}

	id, err := c.articleID(ctx, s, tmpl, current)
	if err != nil {
		return fail("article_id", err)
	}
	content.ArticleID = id

	if err := s.WaitPresent(ctx, tmpl.Container, c.timeouts.Content); err != nil {
		return fail("content", err)
	}
	doc, err := s.Document(ctx)
	if err != nil {
		return fail("content", err)
	}
	container, err := browser.FindOne(doc.Selection, tmpl.Container)
	if err != nil {
		return fail("content", err)
	}
	body, err := browser.Text(container, tmpl.Body)
	if err != nil {
		return fail("content", err)
	}
	content.Content = body
	content.Writer = writer(container, tmpl.Bylines)

	stamps, err := dateStamps(doc, tmpl)
	if err != nil {
		return fail("published_at", err)
	}
	published, err := c.dates.Parse(dates.Meridian(stamps[0]))
	if err != nil {
		return fail("published_at", err)
	}
	if published == nil {
		return fail("published_at", fmt.Errorf("empty date stamp: %w", common.ErrNotFound))
	}
	content.PublishedAt = published
	if len(stamps) > 1 {
		updated, err := c.dates.Parse(dates.Meridian(stamps[1]))
		if err != nil {
			return fail("updated_at", err)
		}
		content.UpdatedAt = updated
	}
	return nil
}

// articleID evaluates the template's id script, falls back to the URL
// pattern, and otherwise reports the page's unavailable notice.
func (c *ContentCrawler) articleID(ctx context.Context, s browser.Session, tmpl templates.ContentTemplate, pageURL string) (string, error) {
	if tmpl.IDScript != "" {
		var v any
		if err := s.Evaluate(ctx, tmpl.IDScript, &v); err != nil {
			c.logger.Debug("Article id script failed", "url", pageURL, "error", err)
		} else if id := scalar(v); id != "" {
			return id, nil
		}
	}

	if m := articlePath.FindStringSubmatch(pageURL); m != nil {
		return m[1] + "_" + m[2], nil
	}

	var notice string
	if tmpl.Notice != "" {
		if doc, err := s.Document(ctx); err == nil {
			notice, _ = browser.Text(doc.Selection, tmpl.Notice)
		}
	}
	return "", &common.ContentUnavailableError{URL: pageURL, Notice: notice}
}

func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// writer returns the first non-empty byline.
func writer(container *goquery.Selection, bylines []string) string {
	for _, sel := range bylines {
		if text, err := browser.Text(container, sel); err == nil && text != "" {
			return text
		}
	}
	return common.NoWriter
}

// dateStamps returns the raw published and, if present, updated stamps.
func dateStamps(doc *goquery.Document, tmpl templates.ContentTemplate) ([]string, error) {
	box, err := browser.FindOne(doc.Selection, tmpl.DateContainer)
	if err != nil {
		return nil, err
	}
	var stamps []string
	for _, el := range browser.FindMany(box, tmpl.DateTag().Selector()) {
		stamps = append(stamps, stampValue(el))
	}
	if len(stamps) == 0 {
		return nil, fmt.Errorf("date elements in %q: %w", tmpl.DateContainer, common.ErrNotFound)
	}
	return stamps, nil
}

func stampValue(el *goquery.Selection) string {
	for _, attr := range dateAttrs {
		if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return strings.TrimSpace(el.Text())
}
