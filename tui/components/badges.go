package components

import (
	"strings"

	"github.com/user/deepfocus-cli/status"
	"github.com/user/deepfocus-cli/tui/styles"
)

// ActionBadge is one async action shown in the action row.
type ActionBadge struct {
	Key   string
	Label string
	State status.State
}

// ActionBadges renders "o Obsidian  d Drive ✓  s Summary …" with each badge colored by
// its state. Errors stay red until the action is retried.
func ActionBadges(badges []ActionBadge, width int) string {
	parts := make([]string, 0, len(badges))
	for _, b := range badges {
		key := styles.SecondaryText.Render(b.Key)
		var label string
		switch b.State {
		case status.Pending:
			label = styles.Pending.Render(b.Label + " …")
		case status.Success:
			label = styles.Success.Render(b.Label + " ✓")
		case status.Error:
			label = styles.Warning.Render(b.Label + " ✗")
		default:
			label = styles.PrimaryText.Render(b.Label)
		}
		parts = append(parts, key+" "+label)
	}
	return styles.Panel.Width(width).Render(strings.Join(parts, "   "))
}
