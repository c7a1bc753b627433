package progress

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/deepfocus-cli/player"
)

const (
	// SaveInterval is the playback distance between periodic saves.
	SaveInterval = 10.0
	// FinalSaveTimeout bounds the teardown save.
	FinalSaveTimeout = 5 * time.Second
)

// Auth reports whether a user is signed in.
type Auth interface {
	Authenticated() bool
	UserID() string
}

// Video is the metadata sent with every save.
type Video struct {
	ID          string
	Title       string
	Thumbnail   string
	ChannelName string
}

// Persister samples playback ticks and upserts progress every SaveInterval seconds of
// playback, plus once on Close. Saves are fire-and-forget: failures are logged and never
// retried.
type Persister struct {
	store  Store
	auth   Auth
	video  Video
	logger zerolog.Logger

	mu        sync.Mutex
	lastSaved float64
	last      player.Tick
	closed    bool
	inflight  sync.WaitGroup
}

// NewPersister creates a persister for one video.
func NewPersister(store Store, auth Auth, video Video, logger zerolog.Logger) *Persister {
	return &Persister{
		store:  store,
		auth:   auth,
		video:  video,
		logger: logger.With().Str("video_id", video.ID).Logger(),
	}
}

// OnTick is the tick subscriber. It starts an async save when the position moved at
// least SaveInterval past the last saved position. It reports whether a save started.
func (p *Persister) OnTick(t player.Tick) bool {
	p.mu.Lock()
	p.last = t
	if p.closed || !p.authenticated() || t.TimeSeconds-p.lastSaved < SaveInterval {
		p.mu.Unlock()
		return false
	}
	p.lastSaved = t.TimeSeconds
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()
		if _, err := p.Save(context.Background(), t.TimeSeconds, t.DurationSeconds); err != nil {
			p.logger.Warn().Err(err).Float64("time", t.TimeSeconds).Msg("progress save failed")
		}
	}()
	return true
}

// Save upserts the given position synchronously. It is a no-op returning a zero Record
// when no user is signed in.
func (p *Persister) Save(ctx context.Context, timeSeconds, durationSeconds float64) (Record, error) {
	if !p.authenticated() {
		return Record{}, nil
	}
	rec, err := p.store.Upsert(ctx, p.auth.UserID(), p.update(timeSeconds, durationSeconds))
	if err != nil {
		return Record{}, err
	}
	p.logger.Debug().Int("progress", rec.ProgressSeconds).Bool("completed", rec.Completed).Msg("progress saved")
	return rec, nil
}

// LastSaved returns the position of the last started save.
func (p *Persister) LastSaved() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSaved
}

// Close performs the final save of the last observed position and waits for in-flight
// saves. The final save is detached from ctx cancellation and bounded by
// FinalSaveTimeout. Later ticks are ignored.
func (p *Persister) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	last := p.last
	p.mu.Unlock()

	var err error
	if p.authenticated() && last.TimeSeconds > 0 {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FinalSaveTimeout)
		_, err = p.Save(saveCtx, last.TimeSeconds, last.DurationSeconds)
		cancel()
		if err != nil {
			p.logger.Warn().Err(err).Msg("final progress save failed")
		}
	}
	p.inflight.Wait()
	return err
}

func (p *Persister) authenticated() bool {
	return p.auth != nil && p.auth.Authenticated()
}

func (p *Persister) update(t, d float64) Update {
	return Update{
		VideoID:         p.video.ID,
		VideoTitle:      p.video.Title,
		Thumbnail:       p.video.Thumbnail,
		ChannelName:     p.video.ChannelName,
		ProgressSeconds: floorSeconds(t),
		DurationSeconds: floorSeconds(d),
	}
}
