package player

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Option configures a Driver.
type Option func(*Driver)

// WithClock replaces the real clock, mostly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(d *Driver) { d.clock = clock }
}

// WithTickInterval overrides DefaultTickInterval.
func WithTickInterval(interval time.Duration) Option {
	return func(d *Driver) { d.interval = interval }
}

// WithLogger sets the logger used for sampling failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithCaptions sets the initial captions flag.
func WithCaptions(enabled bool) Option {
	return func(d *Driver) { d.state.CaptionsEnabled = enabled }
}

// Driver wraps a Player, owns the PlaybackState and fans out ticks and readiness to
// subscribers. A ticker goroutine runs only while the player is playing.
type Driver struct {
	player   Player
	clock    clockwork.Clock
	interval time.Duration
	logger   zerolog.Logger

	mu         sync.Mutex
	state      PlaybackState
	ready      bool
	stopTicker chan struct{}
	tickSubs   map[int]func(Tick)
	readySubs  map[int]func(PlaybackState)
	nextSubID  int
}

// NewDriver creates a driver for p. The driver is not ready until MarkReady is called.
func NewDriver(p Player, opts ...Option) *Driver {
	d := &Driver{
		player:    p,
		clock:     clockwork.NewRealClock(),
		interval:  DefaultTickInterval,
		logger:    zerolog.Nop(),
		tickSubs:  make(map[int]func(Tick)),
		readySubs: make(map[int]func(PlaybackState)),
	}
	d.state.CaptionsEnabled = true
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns a copy of the current playback state.
func (d *Driver) State() PlaybackState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Ready reports whether the player signalled readiness.
func (d *Driver) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// SubscribeTick registers fn for every tick. The returned func unregisters it.
func (d *Driver) SubscribeTick(fn func(Tick)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextSubID
	d.nextSubID++
	d.tickSubs[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.tickSubs, id)
		d.mu.Unlock()
	}
}

// SubscribeReady registers fn to be called when the player becomes ready.
func (d *Driver) SubscribeReady(fn func(PlaybackState)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextSubID
	d.nextSubID++
	d.readySubs[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.readySubs, id)
		d.mu.Unlock()
	}
}

// MarkReady records the player's ready signal and reads the initial position and
// duration. A resumed video is ready at its start position, not at 0.
func (d *Driver) MarkReady() {
	if _, err := d.sample(); err != nil {
		d.logger.Debug().Err(err).Msg("position not available at ready")
	}

	d.mu.Lock()
	d.ready = true
	state := d.state
	subs := make([]func(PlaybackState), 0, len(d.readySubs))
	for _, fn := range d.readySubs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// TogglePlay pauses when playing and plays otherwise.
func (d *Driver) TogglePlay() error {
	d.mu.Lock()
	if !d.ready {
		d.mu.Unlock()
		return ErrNotReady
	}
	playing := d.state.IsPlaying
	d.mu.Unlock()

	if playing {
		if err := d.player.Pause(); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		d.HandleStateChange(StatePaused)
		return nil
	}
	if err := d.player.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	d.HandleStateChange(StatePlaying)
	return nil
}

// SeekTo seeks to percent (0-100) of the duration and updates the position without
// waiting for the player to confirm.
func (d *Driver) SeekTo(percent float64) error {
	d.mu.Lock()
	if !d.ready {
		d.mu.Unlock()
		return ErrNotReady
	}
	duration := d.state.DurationSeconds
	d.mu.Unlock()

	if duration <= 0 {
		return ErrNoDuration
	}
	percent = math.Max(0, math.Min(percent, 100))
	return d.seek(percent / 100 * duration)
}

// Skip moves the position by delta seconds, clamped to [0, duration].
func (d *Driver) Skip(delta float64) error {
	d.mu.Lock()
	if !d.ready {
		d.mu.Unlock()
		return ErrNotReady
	}
	duration := d.state.DurationSeconds
	current := d.state.CurrentTimeSeconds
	d.mu.Unlock()

	if duration <= 0 {
		return ErrNoDuration
	}
	return d.seek(math.Max(0, math.Min(current+delta, duration)))
}

// SeekToTime seeks to an absolute position, clamped like Skip.
func (d *Driver) SeekToTime(seconds float64) error {
	d.mu.Lock()
	if !d.ready {
		d.mu.Unlock()
		return ErrNotReady
	}
	duration := d.state.DurationSeconds
	d.mu.Unlock()

	seconds = math.Max(0, seconds)
	if duration > 0 {
		seconds = math.Min(seconds, duration)
	}
	return d.seek(seconds)
}

func (d *Driver) seek(seconds float64) error {
	if err := d.player.Seek(seconds); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	d.mu.Lock()
	d.state.CurrentTimeSeconds = seconds
	d.mu.Unlock()
	return nil
}

// ToggleMute flips the mute flag on the player.
func (d *Driver) ToggleMute() error {
	d.mu.Lock()
	if !d.ready {
		d.mu.Unlock()
		return ErrNotReady
	}
	muted := !d.state.IsMuted
	d.mu.Unlock()

	if err := d.player.SetMute(muted); err != nil {
		return fmt.Errorf("mute: %w", err)
	}
	d.mu.Lock()
	d.state.IsMuted = muted
	d.mu.Unlock()
	return nil
}

// ToggleCaptions flips the captions flag and returns the new value. The flag is only
// consulted when the player is (re)launched; the running player is not touched.
func (d *Driver) ToggleCaptions() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.CaptionsEnabled = !d.state.CaptionsEnabled
	return d.state.CaptionsEnabled
}

// Refresh polls the player state and applies it as a state-change notification. The
// first state past StateUnstarted counts as the player's ready signal. While not
// playing, position and duration are re-read here since no ticker runs; tick
// subscribers are not notified.
func (d *Driver) Refresh() error {
	s, err := d.player.State()
	if err != nil {
		return fmt.Errorf("player state: %w", err)
	}
	if s == StateUnstarted {
		d.HandleStateChange(s)
		return nil
	}
	if !d.Ready() {
		d.MarkReady()
	}
	d.HandleStateChange(s)
	if s != StatePlaying {
		if _, err := d.sample(); err != nil {
			return err
		}
	}
	return nil
}

// HandleStateChange applies a player state notification. Entering StatePlaying starts
// the ticker; any other state stops it.
func (d *Driver) HandleStateChange(s State) {
	playing := s == StatePlaying

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.IsPlaying == playing {
		return
	}
	d.state.IsPlaying = playing
	if playing {
		d.startTickerLocked()
	} else {
		d.stopTickerLocked()
	}
}

// Tick samples the player once and notifies tick subscribers. The time is always read
// from the player, never accumulated from the interval.
func (d *Driver) Tick() (Tick, error) {
	tick, err := d.sample()
	if err != nil {
		return Tick{}, err
	}

	d.mu.Lock()
	subs := make([]func(Tick), 0, len(d.tickSubs))
	for _, fn := range d.tickSubs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn(tick)
	}
	return tick, nil
}

// sample reads position and duration from the player into the state.
func (d *Driver) sample() (Tick, error) {
	t, err := d.player.CurrentTime()
	if err != nil {
		return Tick{}, fmt.Errorf("current time: %w", err)
	}
	duration, err := d.player.Duration()
	if err != nil {
		return Tick{}, fmt.Errorf("duration: %w", err)
	}
	t, duration = sanitize(t), sanitize(duration)
	if duration > 0 && t > duration {
		t = duration
	}

	d.mu.Lock()
	d.state.CurrentTimeSeconds = t
	d.state.DurationSeconds = duration
	d.mu.Unlock()
	return Tick{TimeSeconds: t, DurationSeconds: duration}, nil
}

// Ticking reports whether the ticker goroutine is running.
func (d *Driver) Ticking() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopTicker != nil
}

// Close stops the ticker and drops every subscription.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTickerLocked()
	d.ready = false
	d.tickSubs = make(map[int]func(Tick))
	d.readySubs = make(map[int]func(PlaybackState))
}

func (d *Driver) startTickerLocked() {
	if d.stopTicker != nil {
		return
	}
	stop := make(chan struct{})
	d.stopTicker = stop
	ticker := d.clock.NewTicker(d.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				select {
				case <-stop:
					return
				default:
				}
				if _, err := d.Tick(); err != nil {
					d.logger.Debug().Err(err).Msg("tick sample failed")
				}
			}
		}
	}()
}

func (d *Driver) stopTickerLocked() {
	if d.stopTicker == nil {
		return
	}
	close(d.stopTicker)
	d.stopTicker = nil
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
