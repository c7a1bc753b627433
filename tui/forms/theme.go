package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/deepfocus-cli/tui/styles"
)

// Theme returns a huh theme in the watch screen palette.
func Theme() *huh.Theme {
	t := huh.ThemeBase()
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	t.Focused.Base = t.Focused.Base.
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Focus).
		PaddingLeft(1)
	t.Focused.Title = fg(styles.Accent).Bold(true)
	t.Focused.Description = fg(styles.Muted)
	t.Focused.ErrorIndicator = fg(styles.Red).Bold(true)
	t.Focused.ErrorMessage = fg(styles.Red)
	t.Focused.SelectSelector = fg(styles.Info).SetString("▸ ")
	t.Focused.Option = fg(styles.Text)
	t.Focused.SelectedOption = fg(styles.Info)
	t.Focused.UnselectedOption = fg(styles.Muted)
	t.Focused.TextInput.Cursor = fg(styles.Info)
	t.Focused.TextInput.Placeholder = fg(styles.Border)
	t.Focused.TextInput.Prompt = fg(styles.Info)
	t.Focused.TextInput.Text = fg(styles.Text)
	t.Focused.FocusedButton = lipgloss.NewStyle().
		Background(styles.Focus).
		Foreground(styles.Text).
		Bold(true).
		Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Background(styles.Border).
		Foreground(styles.Muted).
		Padding(0, 1)
	t.Focused.Next = t.Focused.FocusedButton

	t.Blurred.Base = t.Blurred.Base.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true).
		PaddingLeft(1)
	t.Blurred.Title = fg(styles.Muted)
	t.Blurred.Description = fg(styles.Border)
	t.Blurred.SelectSelector = lipgloss.NewStyle().SetString("  ")
	t.Blurred.Option = fg(styles.Muted)
	t.Blurred.SelectedOption = fg(styles.Muted)
	t.Blurred.FocusedButton = t.Focused.BlurredButton
	t.Blurred.BlurredButton = lipgloss.NewStyle().
		Background(styles.Background).
		Foreground(styles.Border).
		Padding(0, 1)
	t.Blurred.Next = t.Blurred.FocusedButton

	return t
}
