package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/deepfocus-cli/tui/styles"
)

// Container clips content to an exact Width x Height box. Content taller than the box
// loses its tail and the last line becomes a "more" marker.
type Container struct {
	Width  int
	Height int
}

func (c Container) Render(content string) string {
	if c.Height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")

	if len(lines) > c.Height {
		lines = lines[:c.Height]
		lines[c.Height-1] = lipgloss.NewStyle().Foreground(styles.Border).Render("↓ more")
	}
	lines = NormalizeLines(lines, c.Height)
	for i, line := range lines {
		lines[i] = PadToWidth(line, c.Width)
	}
	return strings.Join(lines, "\n")
}
