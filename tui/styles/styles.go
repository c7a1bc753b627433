// Package styles holds the Lipgloss palette and shared styles of the watch screen.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette: dark slate background with warm text and a few accents.
const (
	Background = lipgloss.Color("#191C27")
	Surface    = lipgloss.Color("#181818")
	Border     = lipgloss.Color("#5C4F4B")
	Focus      = lipgloss.Color("#724D7C")
	Muted      = lipgloss.Color("#AEA47A")
	Text       = lipgloss.Color("#F3DBB2")
	Accent     = lipgloss.Color("#D33061")
	Info       = lipgloss.Color("#3097C6")
	Amber      = lipgloss.Color("#CC8B3F")
	Red        = lipgloss.Color("#AC3835")
	Green      = lipgloss.Color("#A6A75D")
)

var Panel = lipgloss.NewStyle().
	Background(Surface).
	Padding(0, 1)

// Selected marks the cursor row of a list.
var Selected = lipgloss.NewStyle().
	Background(Focus).
	Foreground(Text).
	Bold(true)

// Flash is the short pulse on a note whose timestamp was just activated.
var Flash = lipgloss.NewStyle().
	Background(Amber).
	Foreground(Surface).
	Bold(true)

var PrimaryText = lipgloss.NewStyle().
	Foreground(Text)

var SecondaryText = lipgloss.NewStyle().
	Foreground(Muted)

var Header = lipgloss.NewStyle().
	Foreground(Accent).
	Bold(true)

var Hint = lipgloss.NewStyle().
	Foreground(Muted).
	Italic(true)

var Warning = lipgloss.NewStyle().
	Foreground(Red).
	Bold(true)

var Success = lipgloss.NewStyle().
	Foreground(Green).
	Bold(true)

var Pending = lipgloss.NewStyle().
	Foreground(Info).
	Bold(true)
