// Package browsertest provides an in-memory browser for tests. Pages are
// static HTML; clicks may rewrite a page to simulate dynamic loading.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/arovil7777/naver-news-crawling/internal/browser"
	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// Page is a fake document served at a URL
type Page struct {
	Title string
	HTML  string
	// RedirectTo makes CurrentURL report another address after navigation.
	RedirectTo string
	// Scripts maps expressions to the values Evaluate returns.
	Scripts map[string]any
	// OnClick maps selectors to page mutations run by Click.
	OnClick map[string]func(p *Page)
	// Delay is slept on navigation.
	Delay time.Duration

	Clicks int
}

// Factory hands out fake sessions over a shared set of pages
type Factory struct {
	mu    sync.Mutex
	pages map[string]*Page

	// LaunchErr is returned by NewSession when set.
	LaunchErr error

	opened atomic.Int64
	closed atomic.Int64
}

// NewFactory returns a factory serving pages keyed by URL.
func NewFactory(pages map[string]*Page) *Factory {
	if pages == nil {
		pages = make(map[string]*Page)
	}
	return &Factory{pages: pages}
}

// Add registers a page.
func (f *Factory) Add(url string, p *Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[url] = p
}

// Page returns the page registered at url.
func (f *Factory) Page(url string) *Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pages[url]
}

// Opened returns the number of sessions created.
func (f *Factory) Opened() int { return int(f.opened.Load()) }

// Closed returns the number of sessions closed.
func (f *Factory) Closed() int { return int(f.closed.Load()) }

func (f *Factory) NewSession(ctx context.Context) (browser.Session, error) {
	if f.LaunchErr != nil {
		return nil, common.Fatal("launch browser: %w", f.LaunchErr)
	}
	f.opened.Add(1)
	return &Session{factory: f}, nil
}

// Session is a fake browser tab
type Session struct {
	factory *Factory
	url     string
	closed  bool
}

func (s *Session) page() (*Page, error) {
	if s.closed {
		return nil, fmt.Errorf("session closed")
	}
	p := s.factory.Page(s.url)
	if p == nil {
		return nil, fmt.Errorf("no page at %q", s.url)
	}
	return p, nil
}

func (s *Session) snapshot() (*goquery.Document, error) {
	p, err := s.page()
	if err != nil {
		return nil, err
	}
	s.factory.mu.Lock()
	html := p.HTML
	s.factory.mu.Unlock()
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.closed {
		return fmt.Errorf("session closed")
	}
	p := s.factory.Page(url)
	if p == nil {
		return fmt.Errorf("navigate %s: no such page", url)
	}
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.url = url
	if p.RedirectTo != "" {
		s.url = p.RedirectTo
	}
	return nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	return s.url, nil
}

func (s *Session) Title(ctx context.Context) (string, error) {
	p, err := s.page()
	if err != nil {
		return "", err
	}
	return p.Title, nil
}

// WaitPresent does not wait: a missing element times out immediately.
func (s *Session) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	doc, err := s.snapshot()
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("wait for %q: %w", selector, common.ErrTimeout)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	doc, err := s.snapshot()
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("click %q: %w", selector, common.ErrTimeout)
	}
	p, _ := s.page()
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()
	p.Clicks++
	if fn, ok := p.OnClick[selector]; ok {
		fn(p)
	}
	return nil
}

func (s *Session) Evaluate(ctx context.Context, expression string, out any) error {
	p, err := s.page()
	if err != nil {
		return err
	}
	v, ok := p.Scripts[expression]
	if !ok {
		return fmt.Errorf("evaluate %q: ReferenceError", expression)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (s *Session) Document(ctx context.Context) (*goquery.Document, error) {
	return s.snapshot()
}

func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.factory.closed.Add(1)
	return nil
}
