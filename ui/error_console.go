package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// ErrorConsole lists the records that are not complete
type ErrorConsole struct {
	entries []common.ArticleRecord
	hidden  int
	style   lipgloss.Style
}

// NewErrorConsole keeps at most limit incomplete records.
func NewErrorConsole(records []common.ArticleRecord, limit int) *ErrorConsole {
	e := &ErrorConsole{
		style: borderStyle.BorderForeground(lipgloss.Color("196")),
	}
	for _, r := range records {
		if len(r.Failures) == 0 && r.UnavailableReason == "" {
			continue
		}
		if len(e.entries) < limit {
			e.entries = append(e.entries, r)
		} else {
			e.hidden++
		}
	}
	return e
}

// Len returns the number of incomplete records, shown or not
func (e *ErrorConsole) Len() int {
	return len(e.entries) + e.hidden
}

func (e *ErrorConsole) View() string {
	var lines []string
	lines = append(lines, titleStyle.Render("Incomplete Articles"), "")

	for _, r := range e.entries {
		if r.UnavailableReason != "" {
			lines = append(lines, warningStyle.Render("• "+r.URL))
			lines = append(lines, infoStyle.Render("  "+r.UnavailableReason))
			continue
		}
		lines = append(lines, errorStyle.Render("• "+r.URL))
		for _, f := range r.Failures {
			lines = append(lines, infoStyle.Render(fmt.Sprintf("  %s (%s): %s", f.Field, f.Kind, f.Message)))
		}
	}
	if e.hidden > 0 {
		lines = append(lines, "", infoStyle.Render(fmt.Sprintf("… and %d more", e.hidden)))
	}

	return e.style.Render(strings.Join(lines, "\n"))
}
