package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/deepfocus-cli/tui/styles"
)

type binding struct {
	key  string
	desc string
}

var helpGroups = []struct {
	title    string
	bindings []binding
}{
	{"Playback", []binding{
		{"Space", "Play / pause"},
		{"h / ←", "Back 10 seconds"},
		{"l / →", "Forward 10 seconds"},
		{"0-9", "Seek to 0%-90%"},
		{"m", "Mute / unmute"},
		{"c", "Captions on / off (next launch)"},
	}},
	{"Notes", []binding{
		{"n", "Capture a note at the current time"},
		{"j / k", "Select next / previous note"},
		{"Enter", "Jump to the selected note"},
	}},
	{"Export", []binding{
		{"o", "Open notes in Obsidian"},
		{"d", "Save notes to Google Drive"},
		{"s", "Generate study aid"},
		{"Tab", "Change study aid kind"},
	}},
	{"General", []binding{
		{"?", "Show / hide this help"},
		{"q", "Save progress and quit"},
	}},
}

// HelpOverlay renders the key bindings centred in a bordered panel.
func HelpOverlay(width, height int) string {
	key := lipgloss.NewStyle().Foreground(styles.Muted).Bold(true).Width(10)
	desc := lipgloss.NewStyle().Foreground(styles.Text)

	lines := []string{styles.Pending.Render("Keybindings")}
	for _, g := range helpGroups {
		lines = append(lines, "", styles.Header.Render(g.title))
		for _, b := range g.bindings {
			lines = append(lines, "  "+key.Render(b.key)+desc.Render(b.desc))
		}
	}
	lines = append(lines, "", styles.Hint.Render("Press any key to close"))

	panel := lipgloss.NewStyle().
		Background(styles.Surface).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Focus).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
