package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/deepfocus-cli/pkg/timeutil"
	"github.com/user/deepfocus-cli/tui/styles"
)

// NoteInputState is the capture prompt. The timestamp is not frozen when the prompt
// opens: a note is stamped with the position at the moment it is submitted.
type NoteInputState struct {
	Active bool
	Text   []rune
}

func (s *NoteInputState) Open() {
	s.Active = true
	s.Text = s.Text[:0]
}

func (s *NoteInputState) Clear() {
	s.Active = false
	s.Text = nil
}

func (s *NoteInputState) InsertRunes(r []rune) {
	s.Text = append(s.Text, r...)
}

func (s *NoteInputState) Backspace() {
	if len(s.Text) > 0 {
		s.Text = s.Text[:len(s.Text)-1]
	}
}

func (s *NoteInputState) Value() string {
	return string(s.Text)
}

// NoteInput renders the one-line prompt with the live position.
func NoteInput(state NoteInputState, width int, timePos float64) string {
	label := styles.Pending.Render(fmt.Sprintf("Note @ %s ", timeutil.FormatTimestamp(timePos)))
	field := lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Border).
		Render(string(state.Text) + "_")
	hint := styles.Hint.Render("  Enter: save  Esc: cancel")

	return lipgloss.NewStyle().
		Background(styles.Surface).
		Width(width).
		Padding(0, 1).
		Render(label + field + hint)
}
