// Package tui is the watch screen: a Bubble Tea program that drives a watch.Session
// while mpv shows the video.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/user/deepfocus-cli/notes"
	"github.com/user/deepfocus-cli/player"
	"github.com/user/deepfocus-cli/tui/components"
	"github.com/user/deepfocus-cli/tui/layout"
	"github.com/user/deepfocus-cli/tui/styles"
	"github.com/user/deepfocus-cli/watch"
)

const (
	// refreshInterval is how often the screen re-reads the session. Progress ticks are
	// the driver's business and run on their own ticker.
	refreshInterval = 200 * time.Millisecond
	// resultDisplayDuration is how long a footer message stays up.
	resultDisplayDuration = 3 * time.Second
	skipSeconds           = 10.0
	driveTimeout          = 30 * time.Second
	summarizeTimeout      = 90 * time.Second
)

type refreshMsg time.Time

type clearMessageMsg struct{ seq int }

type actionDoneMsg struct {
	action string
	detail string
	err    error
}

type summaryMsg struct {
	text string
	err  error
}

// Options configure the screen.
type Options struct {
	// User is shown in the status bar; empty means signed out.
	User      string
	AIEnabled bool
	Logger    zerolog.Logger
}

// Model is the Bubble Tea model of the watch screen.
type Model struct {
	session *watch.Session
	logger  zerolog.Logger

	width  int
	height int

	statusBar components.StatusBarState
	notesList components.NotesListState
	noteInput components.NoteInputState
	study     components.StudyPanelState

	showHelp   bool
	message    string
	messageErr bool
	messageSeq int
	quitting   bool
}

// NewModel creates the screen for session.
func NewModel(session *watch.Session, opts Options) *Model {
	m := &Model{
		session: session,
		logger:  opts.Logger,
		study:   components.StudyPanelState{Enabled: opts.AIEnabled},
	}
	m.study.NextKind()
	m.statusBar.Title = session.Video().Title
	if m.statusBar.Title == "" {
		m.statusBar.Title = session.Video().ID
	}
	m.statusBar.User = opts.User
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return refreshCmd()
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		if err := m.session.Driver().Refresh(); err != nil {
			m.logger.Debug().Err(err).Msg("player refresh failed")
		}
		m.refresh()
		return m, refreshCmd()

	case clearMessageMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			return m, m.flash(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
		}
		text := msg.action + " done"
		if msg.detail != "" {
			text += ": " + msg.detail
		}
		return m, m.flash(text, false)

	case summaryMsg:
		m.study.Err = msg.err
		if msg.err == nil {
			m.study.Text = msg.text
		}
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.noteInput.Active {
			return m.handleNoteInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.session.Driver()

	switch key := msg.String(); key {
	case "?":
		m.showHelp = true
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ":
		return m, m.control(d.TogglePlay())
	case "h", "left":
		return m, m.control(d.Skip(-skipSeconds))
	case "l", "right":
		return m, m.control(d.Skip(skipSeconds))
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m, m.control(d.SeekTo(float64(key[0]-'0') * 10))
	case "m":
		return m, m.control(d.ToggleMute())
	case "c":
		if d.ToggleCaptions() {
			return m, m.flash("Captions on (applies when the video is reopened)", false)
		}
		return m, m.flash("Captions off (applies when the video is reopened)", false)
	case "n", "i":
		m.noteInput.Open()
	case "j", "down":
		m.notesList.MoveDown()
	case "k", "up":
		m.notesList.MoveUp()
	case "enter":
		return m, m.jumpToSelected()
	case "o":
		return m, m.exportObsidian()
	case "d":
		return m, m.exportDrive()
	case "s":
		return m, m.summarize()
	case "tab":
		m.study.NextKind()
		m.study.Text, m.study.Err = "", nil
	}
	m.refresh()
	return m, nil
}

func (m *Model) handleNoteInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.noteInput.Clear()
	case tea.KeyEnter:
		text := m.noteInput.Value()
		m.noteInput.Clear()
		n, err := m.session.Capture(text)
		if errors.Is(err, notes.ErrEmptyNote) {
			return m, m.flash("Empty note discarded", true)
		}
		if err != nil {
			return m, m.flash("Could not capture note: "+err.Error(), true)
		}
		m.refresh()
		return m, m.flash("Note added at "+n.DisplayTimestamp, false)
	case tea.KeyBackspace:
		m.noteInput.Backspace()
	case tea.KeySpace:
		m.noteInput.InsertRunes([]rune{' '})
	case tea.KeyRunes:
		m.noteInput.InsertRunes(msg.Runes)
	}
	return m, nil
}

func (m *Model) jumpToSelected() tea.Cmd {
	n, ok := m.notesList.Selected()
	if !ok {
		return nil
	}
	err := m.session.JumpTo(n.ID)
	m.refresh()
	if err != nil {
		return m.control(err)
	}
	return nil
}

func (m *Model) exportObsidian() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return actionDoneMsg{action: "Obsidian export", err: s.ExportObsidian()}
	}
}

func (m *Model) exportDrive() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), driveTimeout)
		defer cancel()
		res, err := s.ExportDrive(ctx)
		detail := "updated"
		if res.Created {
			detail = "created"
		}
		return actionDoneMsg{action: "Drive export", detail: detail, err: err}
	}
}

func (m *Model) summarize() tea.Cmd {
	s, kind := m.session, m.study.Kind
	m.study.Err = nil
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), summarizeTimeout)
		defer cancel()
		text, err := s.Summarize(ctx, kind)
		return summaryMsg{text: text, err: err}
	}
}

// control turns a driver error into a footer message. Nothing here stops playback.
func (m *Model) control(err error) tea.Cmd {
	switch {
	case err == nil:
		m.refresh()
		return nil
	case errors.Is(err, player.ErrNotReady):
		return m.flash("Player is still loading", true)
	case errors.Is(err, player.ErrNoDuration):
		return m.flash("Duration unknown, seeking is disabled", true)
	default:
		m.logger.Warn().Err(err).Msg("player control failed")
		return m.flash(err.Error(), true)
	}
}

func (m *Model) flash(text string, isErr bool) tea.Cmd {
	m.messageSeq++
	m.message = text
	m.messageErr = isErr
	seq := m.messageSeq
	return tea.Tick(resultDisplayDuration, func(time.Time) tea.Msg {
		return clearMessageMsg{seq: seq}
	})
}

// refresh copies session state into the view state.
func (m *Model) refresh() {
	d := m.session.Driver()
	st := d.State()
	m.statusBar.Ready = d.Ready()
	m.statusBar.Playing = st.IsPlaying
	m.statusBar.Muted = st.IsMuted
	m.statusBar.Captions = st.CaptionsEnabled
	m.statusBar.TimePos = st.CurrentTimeSeconds
	m.statusBar.Duration = st.DurationSeconds
	m.notesList.SetItems(m.session.Notes())
}

func (m *Model) View() string {
	if m.quitting {
		return "Saving progress…\n"
	}
	if m.width == 0 {
		return ""
	}
	if m.showHelp {
		return components.HelpOverlay(m.width, m.height)
	}
	if m.width < layout.MinTerminalWidth {
		return styles.Warning.Render(fmt.Sprintf("Terminal too narrow (%d cols)", m.width)) + "\n" +
			styles.Hint.Render(fmt.Sprintf("Minimum width: %d columns", layout.MinTerminalWidth))
	}

	statusBar := components.StatusBar(m.statusBar, m.width)
	timeline := components.Timeline(m.statusBar.TimePos, m.statusBar.Duration, m.notesList.Items, m.width)
	badges := components.ActionBadges([]components.ActionBadge{
		{Key: "o", Label: "Obsidian", State: m.session.ObsidianStatus().State()},
		{Key: "d", Label: "Drive", State: m.session.DriveStatus().State()},
		{Key: "s", Label: "Study", State: m.session.SummarizeStatus().State()},
	}, m.width)

	// status bar, 3-line timeline, badges and footer
	colHeight := m.height - 6
	if colHeight < 3 {
		colHeight = 3
	}

	notesWidth, panelWidth, showPanel := layout.ComputeColumnWidths(m.width)
	notesCol := layout.Container{Width: notesWidth, Height: colHeight}.
		Render(components.NotesList(&m.notesList, notesWidth, colHeight))
	columns := notesCol
	if showPanel {
		columns = layout.JoinColumns(
			[]string{notesCol, components.StudyPanel(m.study, panelWidth, colHeight)},
			[]int{notesWidth, panelWidth},
			colHeight,
		)
	}

	return statusBar + "\n" + timeline + "\n" + badges + "\n" + columns + "\n" + m.footer()
}

func (m *Model) footer() string {
	switch {
	case m.noteInput.Active:
		return components.NoteInput(m.noteInput, m.width, m.statusBar.TimePos)
	case m.message != "" && m.messageErr:
		return styles.Warning.Render(" " + m.message)
	case m.message != "":
		return styles.Success.Render(" " + m.message)
	default:
		return styles.Hint.Render(" space play/pause · n note · enter jump · o/d export · ? help · q quit")
	}
}

// Run shows the watch screen until the user quits. The caller closes the session.
func Run(session *watch.Session, opts Options) error {
	p := tea.NewProgram(NewModel(session, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
