package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/user/deepfocus-cli/notes"
	"github.com/user/deepfocus-cli/tui/styles"
)

// NotesListState holds the note log as last read from the session plus the cursor.
type NotesListState struct {
	Items         []notes.Note
	SelectedIndex int
	ScrollOffset  int
}

// SetItems replaces the notes, keeping the cursor in range. A newly captured note moves
// the cursor to the end of the log.
func (s *NotesListState) SetItems(items []notes.Note) {
	grew := len(items) > len(s.Items)
	s.Items = items
	if grew {
		s.SelectedIndex = len(items) - 1
	}
	if s.SelectedIndex >= len(items) {
		s.SelectedIndex = len(items) - 1
	}
	if s.SelectedIndex < 0 {
		s.SelectedIndex = 0
	}
}

func (s *NotesListState) MoveUp() {
	if s.SelectedIndex > 0 {
		s.SelectedIndex--
	}
}

func (s *NotesListState) MoveDown() {
	if s.SelectedIndex < len(s.Items)-1 {
		s.SelectedIndex++
	}
}

// Selected returns the note under the cursor.
func (s *NotesListState) Selected() (notes.Note, bool) {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Items) {
		return notes.Note{}, false
	}
	return s.Items[s.SelectedIndex], true
}

// scroll keeps the cursor inside a window of rows lines.
func (s *NotesListState) scroll(rows int) {
	if s.SelectedIndex < s.ScrollOffset {
		s.ScrollOffset = s.SelectedIndex
	} else if s.SelectedIndex >= s.ScrollOffset+rows {
		s.ScrollOffset = s.SelectedIndex - rows + 1
	}
	maxOffset := len(s.Items) - rows
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.ScrollOffset > maxOffset {
		s.ScrollOffset = maxOffset
	}
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
}

// NotesList renders the log in capture order, one note per row. A highlighted note
// (just jumped to) is drawn with the flash style.
func NotesList(state *NotesListState, width, height int) string {
	header := styles.Header.Render(fmt.Sprintf(" Notes (%d)", len(state.Items)))
	rows := height - 1
	if rows < 1 {
		return header
	}

	lines := []string{header}
	if len(state.Items) == 0 {
		lines = append(lines, styles.Hint.Render(" No notes yet. Press n to capture one at the current time."))
		return strings.Join(lines, "\n")
	}

	state.scroll(rows)
	textWidth := width - 12
	if textWidth < 8 {
		textWidth = 8
	}

	for i := state.ScrollOffset; i < len(state.Items) && i < state.ScrollOffset+rows; i++ {
		n := state.Items[i]
		text := n.Text
		if lipgloss.Width(text) > textWidth {
			text = ansi.Truncate(text, textWidth, "…")
		}
		row := fmt.Sprintf(" %-9s %s", "["+n.DisplayTimestamp+"]", text)

		style := styles.PrimaryText
		switch {
		case n.IsHighlighted:
			style = styles.Flash
		case i == state.SelectedIndex:
			style = styles.Selected
		}
		lines = append(lines, style.Width(width).Render(row))
	}
	return strings.Join(lines, "\n")
}
