// Package crawler extracts article stubs from list pages and article bodies
// from content pages, driven by the rules in package templates.
package crawler

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/arovil7777/naver-news-crawling/internal/templates"
)

// Timeouts bounds every wait the crawlers perform
type Timeouts struct {
	List    time.Duration
	Trigger time.Duration
	Content time.Duration
}

// DefaultTimeouts mirrors the waits used against the live portal.
var DefaultTimeouts = Timeouts{
	List:    5 * time.Second,
	Trigger: 5 * time.Second,
	Content: 10 * time.Second,
}

func (t Timeouts) withDefaults() Timeouts {
	if t.List <= 0 {
		t.List = DefaultTimeouts.List
	}
	if t.Trigger <= 0 {
		t.Trigger = DefaultTimeouts.Trigger
	}
	if t.Content <= 0 {
		t.Content = DefaultTimeouts.Content
	}
	return t
}

// Lookup resolves templates; *templates.Cache implements it.
type Lookup interface {
	List(url string) (templates.ListTemplate, bool)
	Content(url string) (templates.ContentTemplate, bool)
}

func discard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

// siteName derives the site label from a page title such as
// "정치 : 네이버 뉴스", giving "네이버뉴스".
func siteName(title string) string {
	compact := strings.ReplaceAll(title, " ", "")
	if parts := strings.Split(compact, ":"); len(parts) > 1 {
		return parts[1]
	}
	return compact
}
