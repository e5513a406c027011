package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-periodnet/recommend"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#6E6E6E")).
			Padding(0, 1)
)

func renderRecommendation(rec recommend.Recommendation) string {
	confidence := goodStyle
	if rec.LowConfidence() {
		confidence = warnStyle
	}

	var scores strings.Builder
	for i, sc := range rec.Scores {
		if i > 0 {
			scores.WriteByte('\n')
		}
		line := fmt.Sprintf("%s  combined %.3f  overlap %.3f  centroid %.3f",
			sc.ConfigID, sc.Combined, sc.Overlap, sc.Centroid)
		if sc.ConfigID == rec.Config.ID {
			scores.WriteString(titleStyle.Render(line))
		} else {
			scores.WriteString(mutedStyle.Render(line))
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Configuration %s: %s", rec.Config.ID, rec.Config.Name)),
		confidence.Render(fmt.Sprintf("Confidence %.0f%%", 100*rec.Confidence)),
		"",
		scores.String(),
		"",
		strings.TrimRight(rec.Guidance(), "\n"),
	)
	return panelStyle.Render(body)
}
