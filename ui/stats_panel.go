package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// StatsPanel displays the counts of a finished run
type StatsPanel struct {
	summary    common.Summary
	style      lipgloss.Style
	labelStyle lipgloss.Style
	valueStyle lipgloss.Style
}

func NewStatsPanel(summary common.Summary) *StatsPanel {
	return &StatsPanel{
		summary: summary,
		style: borderStyle.
			BorderForeground(lipgloss.Color("99")),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
	}
}

type stat struct {
	label string
	value string
}

func (s *StatsPanel) View() string {
	sum := s.summary

	stats := []stat{
		{"Run", sum.RunID},
		{"Categories", fmt.Sprintf("%d", sum.Categories)},
		{"Articles", fmt.Sprintf("%d stubs, %d distinct", sum.Stubs, sum.Attempted)},
		{"Complete", fmt.Sprintf("%d (%.1f%%)", sum.Complete, percent(sum.Complete, sum.Attempted))},
		{"Partial", fmt.Sprintf("%d", sum.Partial)},
		{"Unavailable", fmt.Sprintf("%d", sum.Unavailable)},
		{"Saved", fmt.Sprintf("%d new", sum.Saved)},
		{"Elapsed Time", formatElapsed(sum.Elapsed)},
	}
	if sum.FlatFile != "" {
		stats = append(stats, stat{"Flat File", sum.FlatFile})
	}
	if sum.Transferred != "" {
		stats = append(stats, stat{"Transferred", sum.Transferred})
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("Crawling Statistics") + "\n\n")
	for i, st := range stats {
		content.WriteString(fmt.Sprintf("%-*s %s",
			14,
			s.labelStyle.Render(st.label+":"),
			s.valueStyle.Render(st.value),
		))
		if i < len(stats)-1 {
			content.WriteString("\n")
		}
	}

	return s.style.Render(content.String())
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func formatElapsed(elapsed time.Duration) string {
	return fmt.Sprintf("%02d:%02d:%02d",
		int(elapsed.Hours()),
		int(elapsed.Minutes())%60,
		int(elapsed.Seconds())%60,
	)
}
