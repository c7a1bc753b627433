// Package watch wires one watch session together: the playback driver, the note log, the
// progress persister and the export adapters.
package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/user/deepfocus-cli/notes"
	"github.com/user/deepfocus-cli/pkg/export"
	"github.com/user/deepfocus-cli/pkg/export/drive"
	"github.com/user/deepfocus-cli/player"
	"github.com/user/deepfocus-cli/progress"
	"github.com/user/deepfocus-cli/status"
	"github.com/user/deepfocus-cli/summarize"
)

// How long a successful action keeps its badge before returning to idle.
const (
	ObsidianStatusDelay  = 2 * time.Second
	DriveStatusDelay     = 3 * time.Second
	SummarizeStatusDelay = 3 * time.Second
)

var (
	ErrBusy     = errors.New("watch: action already in progress")
	ErrNoAI     = errors.New("watch: no AI key configured")
	ErrNoLaunch = errors.New("watch: no launcher configured")
)

// Deps are the collaborators of a Session. Store, Auth, Drive and Summarizer may be nil:
// progress then isn't saved and the matching actions fail with a status error.
type Deps struct {
	Player     player.Player
	Store      progress.Store
	Auth       progress.Auth
	Drive      *drive.Exporter
	Summarizer *summarize.Client
	Launcher   export.Launcher
	Clock      clockwork.Clock
	Logger     zerolog.Logger

	Captions     bool
	TickInterval time.Duration
}

// Session is the state of one watch page. Create it with New and release it with Close.
type Session struct {
	video     progress.Video
	clock     clockwork.Clock
	logger    zerolog.Logger
	driver    *player.Driver
	log       *notes.Log
	persister *progress.Persister
	drive     *drive.Exporter
	ai        *summarize.Client
	launcher  export.Launcher

	obsidianStatus  *status.Tracker
	driveStatus     *status.Tracker
	summarizeStatus *status.Tracker

	mu          sync.Mutex
	summary     string
	unsubscribe []func()
	closed      bool
}

// New builds a session for video and registers the persister on the driver's ticks.
func New(video progress.Video, deps Deps) *Session {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := deps.Logger.With().Str("video_id", video.ID).Logger()

	opts := []player.Option{
		player.WithClock(clock),
		player.WithLogger(logger),
		player.WithCaptions(deps.Captions),
	}
	if deps.TickInterval > 0 {
		opts = append(opts, player.WithTickInterval(deps.TickInterval))
	}

	s := &Session{
		video:           video,
		clock:           clock,
		logger:          logger,
		driver:          player.NewDriver(deps.Player, opts...),
		log:             notes.NewLog(clock),
		drive:           deps.Drive,
		ai:              deps.Summarizer,
		launcher:        deps.Launcher,
		obsidianStatus:  status.NewTracker(clock, ObsidianStatusDelay),
		driveStatus:     status.NewTracker(clock, DriveStatusDelay),
		summarizeStatus: status.NewTracker(clock, SummarizeStatusDelay),
	}

	if deps.Store != nil {
		s.persister = progress.NewPersister(deps.Store, deps.Auth, video, logger)
		s.unsubscribe = append(s.unsubscribe, s.driver.SubscribeTick(func(t player.Tick) {
			s.persister.OnTick(t)
		}))
	}
	return s
}

func (s *Session) Video() progress.Video { return s.video }

func (s *Session) Driver() *player.Driver { return s.driver }

// Notes returns the note log in capture order.
func (s *Session) Notes() []notes.Note { return s.log.Notes() }

func (s *Session) ObsidianStatus() *status.Tracker { return s.obsidianStatus }

func (s *Session) DriveStatus() *status.Tracker { return s.driveStatus }

func (s *Session) SummarizeStatus() *status.Tracker { return s.summarizeStatus }

// Summary returns the last generated study aid.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Capture adds a note at the driver's current position. Playing or paused does not matter.
func (s *Session) Capture(text string) (notes.Note, error) {
	return s.log.Capture(text, s.driver.State().CurrentTimeSeconds)
}

// JumpTo highlights the note and seeks the player to it.
func (s *Session) JumpTo(noteID string) error {
	n, err := s.log.Activate(noteID)
	if err != nil {
		return err
	}
	return s.driver.SeekToTime(n.TimestampSeconds)
}

// ExportObsidian builds the vault note and hands its URI to the launcher.
func (s *Session) ExportObsidian() error {
	if !s.obsidianStatus.Begin() {
		return ErrBusy
	}
	err := s.exportObsidian()
	if err != nil {
		s.obsidianStatus.Fail(err)
		s.logger.Warn().Err(err).Msg("obsidian export failed")
		return err
	}
	s.obsidianStatus.Succeed()
	return nil
}

func (s *Session) exportObsidian() error {
	if s.launcher == nil {
		return ErrNoLaunch
	}
	note, err := export.BuildObsidianNote(s.video.ID, s.log.Notes(), s.clock.Now())
	if err != nil {
		return err
	}
	if err := s.launcher.Open(export.ObsidianURI(note)); err != nil {
		return fmt.Errorf("open obsidian: %w", err)
	}
	s.logger.Info().Str("title", note.Title).Strs("tags", note.Tags).Msg("exported to obsidian")
	return nil
}

// ExportDrive saves the note log to Google Drive, creating or updating the video's file.
func (s *Session) ExportDrive(ctx context.Context) (drive.Result, error) {
	if !s.driveStatus.Begin() {
		return drive.Result{}, ErrBusy
	}

	exporter := s.drive
	if exporter == nil {
		exporter = drive.NewExporter(nil, s.logger)
	}
	res, err := exporter.Export(ctx, drive.Request{
		VideoID:    s.video.ID,
		VideoTitle: s.video.Title,
		Notes:      s.log.Notes(),
	})
	if err != nil {
		s.driveStatus.Fail(err)
		s.logger.Warn().Err(err).Msg("drive export failed")
		return drive.Result{}, err
	}
	s.driveStatus.Succeed()
	return res, nil
}

// Summarize generates a study aid of the given kind from the current notes.
func (s *Session) Summarize(ctx context.Context, kind summarize.Kind) (string, error) {
	if !s.summarizeStatus.Begin() {
		return "", ErrBusy
	}
	out, err := s.summarize(ctx, kind)
	if err != nil {
		s.summarizeStatus.Fail(err)
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("summarize failed")
		return "", err
	}

	s.mu.Lock()
	s.summary = out
	s.mu.Unlock()
	s.summarizeStatus.Succeed()
	return out, nil
}

func (s *Session) summarize(ctx context.Context, kind summarize.Kind) (string, error) {
	if s.ai == nil {
		return "", ErrNoAI
	}
	ns := s.log.Notes()
	if len(ns) == 0 {
		return "", summarize.ErrNoNotes
	}
	return s.ai.Generate(ctx, kind, s.video.Title, export.BulletList(ns))
}

// Close unsubscribes from the driver, stops ticking and performs the final progress save.
// Calling it twice is safe.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	// One last sample so the final save sees a position reached by seeking while paused.
	if _, err := s.driver.Tick(); err != nil {
		s.logger.Debug().Err(err).Msg("final sample failed")
	}
	for _, fn := range unsubscribe {
		fn()
	}
	s.driver.Close()
	s.log.Close()
	s.obsidianStatus.Stop()
	s.driveStatus.Stop()
	s.summarizeStatus.Stop()

	if s.persister == nil {
		return nil
	}
	return s.persister.Close(ctx)
}
