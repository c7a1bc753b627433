// Package components renders the pieces of the watch screen. Each renderer is a pure
// function of its state struct.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/deepfocus-cli/pkg/timeutil"
	"github.com/user/deepfocus-cli/tui/styles"
)

// StatusBarState is what the top bar shows about playback.
type StatusBarState struct {
	Title    string
	Ready    bool
	Playing  bool
	Muted    bool
	Captions bool
	TimePos  float64
	Duration float64
	// User is the signed-in email, empty when signed out.
	User string
}

// StatusBar renders the full-width top bar: play state, position and title on the
// left, flags and account on the right.
func StatusBar(state StatusBarState, width int) string {
	icon := "⏸"
	switch {
	case !state.Ready:
		icon = "…"
	case state.Playing:
		icon = "▶"
	}

	left := fmt.Sprintf(" %s %s / %s  %s", icon,
		timeutil.FormatTimestamp(state.TimePos),
		timeutil.FormatTimestamp(state.Duration),
		state.Title)

	right := ""
	if state.Muted {
		right += "🔇 "
	}
	if state.Captions {
		right += "CC "
	}
	if state.User != "" {
		right += state.User + " "
	} else {
		right += "signed out "
	}

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	content := left + fmt.Sprintf("%*s", pad, "") + right

	return lipgloss.NewStyle().
		Background(styles.Surface).
		Foreground(styles.Text).
		Bold(true).
		Width(width).
		MaxWidth(width).
		Render(content)
}
