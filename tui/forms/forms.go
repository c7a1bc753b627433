// Package forms provides the huh prompts used outside the watch screen.
package forms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/user/deepfocus-cli/summarize"
)

// NewConfirmDeleteForm asks before removing a video from the watch history. The answer
// is bound to confirm.
func NewConfirmDeleteForm(title string, confirm *bool) *huh.Form {
	return NewConfirmForm(
		fmt.Sprintf("Remove %q from your history?", title),
		"Saved progress for this video will be lost.",
		confirm,
	)
}

// NewConfirmForm is a yes/no question with a short description of the consequence.
func NewConfirmForm(question, description string, confirm *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Description(description).
				Affirmative("Yes, remove").
				Negative("No, keep it").
				Value(confirm),
		),
	).WithTheme(Theme())
}

// NewPlaylistForm asks for a new playlist's name and description.
func NewPlaylistForm(name, description *string, public *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Playlist name").
				Value(name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(description),
			huh.NewConfirm().
				Title("Public?").
				Value(public),
		),
	).WithTheme(Theme())
}

// NewKindForm lets the user pick which study aid to generate.
func NewKindForm(kind *summarize.Kind) *huh.Form {
	options := []huh.Option[summarize.Kind]{
		huh.NewOption("Summary", summarize.KindSummary),
		huh.NewOption("Key points", summarize.KindKeyPoints),
		huh.NewOption("Review questions", summarize.KindQuestions),
		huh.NewOption("Flashcards", summarize.KindFlashcards),
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[summarize.Kind]().
				Title("Generate").
				Options(options...).
				Value(kind),
		),
	).WithTheme(Theme())
}
