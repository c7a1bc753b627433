package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/deepfocus-cli/notes"
	"github.com/user/deepfocus-cli/pkg/timeutil"
	"github.com/user/deepfocus-cli/tui/styles"
)

// Timeline renders the seek bar with a marker for every note, in a titled box.
// Digits 0-9 seek to the matching tenth of the bar.
func Timeline(timePos, duration float64, items []notes.Note, width int) string {
	if width < 20 {
		return ""
	}

	filled := lipgloss.NewStyle().Foreground(styles.Focus)
	empty := lipgloss.NewStyle().Foreground(styles.Border)
	marker := lipgloss.NewStyle().Foreground(styles.Info)
	head := lipgloss.NewStyle().Foreground(styles.Accent).Bold(true)

	pct := 0.0
	if duration > 0 {
		pct = math.Min(timePos/duration, 1) * 100
	}
	label := styles.PrimaryText.Bold(true).Render(fmt.Sprintf(" %s %3.0f%%",
		timeutil.FormatTimestamp(duration), pct))

	barWidth := width - 4 - lipgloss.Width(label)
	if barWidth < 10 {
		barWidth = 10
	}

	fillPos := 0
	if duration > 0 {
		fillPos = int(math.Round(float64(barWidth) * math.Min(timePos/duration, 1)))
	}

	markers := make(map[int]bool, len(items))
	if duration > 0 {
		for _, n := range items {
			markers[int(math.Round(float64(barWidth-1)*n.TimestampSeconds/duration))] = true
		}
	}

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case markers[i]:
			bar.WriteString(marker.Render("◆"))
		case i < fillPos:
			bar.WriteString(filled.Render("━"))
		case i == fillPos:
			bar.WriteString(head.Render("╸"))
		default:
			bar.WriteString(empty.Render("─"))
		}
	}

	return RenderInfoBox("Timeline", []string{" " + bar.String() + label}, width)
}

// RenderInfoBox draws contentLines inside a rounded box with the title set into the
// top border: ╭─ Title ───╮.
func RenderInfoBox(title string, contentLines []string, width int) string {
	if width < 4 {
		return ""
	}
	inner := width - 2
	border := lipgloss.NewStyle().Foreground(styles.Border)

	titleText := styles.Header.Render(" " + title + " ")
	fill := inner - 1 - lipgloss.Width(titleText)
	if fill < 0 {
		fill = 0
	}

	lines := make([]string, 0, len(contentLines)+2)
	lines = append(lines, border.Render("╭─")+titleText+border.Render(strings.Repeat("─", fill)+"╮"))
	for _, line := range contentLines {
		pad := inner - lipgloss.Width(line)
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, border.Render("│")+line+strings.Repeat(" ", pad)+border.Render("│"))
	}
	lines = append(lines, border.Render("╰"+strings.Repeat("─", inner)+"╯"))
	return strings.Join(lines, "\n")
}
