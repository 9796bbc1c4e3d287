// Package browser wraps the browser controller used to render portal pages.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// Session is one isolated browser instance. Sessions are not safe for
// concurrent use; each worker owns its own.
type Session interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	// WaitPresent blocks until selector matches or timeout passes, in which
	// case the error wraps common.ErrTimeout.
	WaitPresent(ctx context.Context, selector string, timeout time.Duration) error
	// Click activates the first element matching selector.
	Click(ctx context.Context, selector string, timeout time.Duration) error
	Evaluate(ctx context.Context, expression string, out any) error
	// Document returns a snapshot of the current DOM.
	Document(ctx context.Context) (*goquery.Document, error)
	Close() error
}

// Factory creates sessions
type Factory interface {
	NewSession(ctx context.Context) (Session, error)
}

// FindOne returns the first match of selector under sel.
func FindOne(sel *goquery.Selection, selector string) (*goquery.Selection, error) {
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, fmt.Errorf("element %q: %w", selector, common.ErrNotFound)
	}
	return found, nil
}

// FindMany returns every match of selector under sel, possibly none.
func FindMany(sel *goquery.Selection, selector string) []*goquery.Selection {
	var out []*goquery.Selection
	sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// Text returns the trimmed text content of the first match of selector.
func Text(sel *goquery.Selection, selector string) (string, error) {
	found, err := FindOne(sel, selector)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(found.Text()), nil
}

// Href returns the href of the first match of selector resolved against base.
func Href(sel *goquery.Selection, selector, base string) (string, error) {
	found, err := FindOne(sel, selector)
	if err != nil {
		return "", err
	}
	href, ok := found.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", fmt.Errorf("href of %q: %w", selector, common.ErrNotFound)
	}
	return ResolveURL(base, strings.TrimSpace(href))
}

// ResolveURL resolves href against baseURL.
func ResolveURL(baseURL, href string) (string, error) {
	reference, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if baseURL == "" {
		return reference.String(), nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(reference).String(), nil
}
