package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/deepfocus-cli/tui/styles"
)

const (
	MinTerminalWidth = 60
	// PanelThreshold is the width below which the study panel is hidden.
	PanelThreshold = 100
	PanelMinWidth  = 32
)

// ComputeColumnWidths splits the terminal between the notes column and the study panel.
// At 140 columns and wider the two share the space evenly; below PanelThreshold the panel
// is hidden and notes take the full width.
func ComputeColumnWidths(termWidth int) (notes, panel int, showPanel bool) {
	if termWidth < PanelThreshold {
		return termWidth, 0, false
	}
	usable := termWidth - 1
	if termWidth >= 140 {
		notes = usable / 2
		return notes, usable - notes, true
	}
	panel = PanelMinWidth
	return usable - panel, panel, true
}

// JoinColumns lays rendered columns side by side with a vertical rule between them.
func JoinColumns(columns []string, widths []int, height int) string {
	rule := lipgloss.NewStyle().Foreground(styles.Border).Render("│")

	colLines := make([][]string, len(columns))
	for i, col := range columns {
		colLines[i] = NormalizeLines(strings.Split(col, "\n"), height)
	}

	rows := make([]string, 0, height)
	for row := 0; row < height; row++ {
		parts := make([]string, 0, len(colLines))
		for i, lines := range colLines {
			parts = append(parts, PadToWidth(lines[row], widths[i]))
		}
		rows = append(rows, strings.Join(parts, rule))
	}
	return strings.Join(rows, "\n")
}
