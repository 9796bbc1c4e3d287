// Package ui renders the end-of-run report shown on the terminal.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// Define common styles
var (
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// Report renders the summary panel followed, when some records are
// incomplete, by the failure console.
func Report(summary common.Summary, records []common.ArticleRecord) string {
	var b strings.Builder
	b.WriteString(NewStatsPanel(summary).View())
	if console := NewErrorConsole(records, 10); console.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(console.View())
	}
	return b.String()
}
