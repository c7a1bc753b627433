package components

import (
	"strings"

	"github.com/user/deepfocus-cli/summarize"
	"github.com/user/deepfocus-cli/tui/layout"
	"github.com/user/deepfocus-cli/tui/styles"
)

// StudyPanelState is the right-hand column with the last generated study aid.
type StudyPanelState struct {
	Kind    summarize.Kind
	Text    string
	Err     error
	Enabled bool
}

// NextKind cycles through summarize.Kinds.
func (s *StudyPanelState) NextKind() {
	for i, k := range summarize.Kinds {
		if k == s.Kind {
			s.Kind = summarize.Kinds[(i+1)%len(summarize.Kinds)]
			return
		}
	}
	s.Kind = summarize.KindSummary
}

func StudyPanel(state StudyPanelState, width, height int) string {
	lines := []string{styles.Header.Render(" Study: " + string(state.Kind))}

	switch {
	case !state.Enabled:
		lines = append(lines, styles.Hint.Render(" Set ai.api_key to generate study aids."))
	case state.Err != nil:
		for _, l := range layout.Wrap(state.Err.Error(), width-2) {
			lines = append(lines, " "+styles.Warning.Render(l))
		}
	case state.Text == "":
		lines = append(lines, styles.Hint.Render(" s: generate  tab: change kind"))
	default:
		for _, l := range layout.Wrap(state.Text, width-2) {
			lines = append(lines, " "+styles.PrimaryText.Render(l))
		}
	}

	return layout.Container{Width: width, Height: height}.Render(strings.Join(lines, "\n"))
}
