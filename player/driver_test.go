package player

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	mu       sync.Mutex
	time     float64
	duration float64
	state    State
	muted    bool
	seeks    []float64
	plays    int
	pauses   int
	seekErr  error
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
	p.state = StatePlaying
	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
	p.state = StatePaused
	return nil
}

func (p *fakePlayer) Seek(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seekErr != nil {
		return p.seekErr
	}
	p.seeks = append(p.seeks, seconds)
	p.time = seconds
	return nil
}

func (p *fakePlayer) SetMute(muted bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
	return nil
}

func (p *fakePlayer) CurrentTime() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.time, nil
}

func (p *fakePlayer) Duration() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration, nil
}

func (p *fakePlayer) State() (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, nil
}

func (p *fakePlayer) setTime(t float64) {
	p.mu.Lock()
	p.time = t
	p.mu.Unlock()
}

func TestControlsAreNoOpsBeforeReady(t *testing.T) {
	p := &fakePlayer{duration: 100}
	d := NewDriver(p)

	assert.ErrorIs(t, d.TogglePlay(), ErrNotReady)
	assert.ErrorIs(t, d.SeekTo(50), ErrNotReady)
	assert.ErrorIs(t, d.Skip(10), ErrNotReady)
	assert.ErrorIs(t, d.ToggleMute(), ErrNotReady)
	assert.Zero(t, p.plays)
	assert.Empty(t, p.seeks)
}

func TestMarkReadyNotifiesSubscribers(t *testing.T) {
	p := &fakePlayer{duration: 240}
	d := NewDriver(p)

	var got []PlaybackState
	d.SubscribeReady(func(s PlaybackState) { got = append(got, s) })
	d.MarkReady()

	require.Len(t, got, 1)
	assert.Equal(t, 240.0, got[0].DurationSeconds)
	assert.True(t, d.Ready())
}

func TestTogglePlayStartsAndStopsTicker(t *testing.T) {
	p := &fakePlayer{duration: 100}
	d := NewDriver(p, WithClock(clockwork.NewFakeClock()))
	d.MarkReady()

	require.NoError(t, d.TogglePlay())
	assert.True(t, d.State().IsPlaying)
	assert.True(t, d.Ticking())
	assert.Equal(t, 1, p.plays)

	require.NoError(t, d.TogglePlay())
	assert.False(t, d.State().IsPlaying)
	assert.False(t, d.Ticking())
	assert.Equal(t, 1, p.pauses)

	d.Close()
}

func TestSeekToUpdatesPositionOptimistically(t *testing.T) {
	p := &fakePlayer{duration: 200}
	d := NewDriver(p)
	d.MarkReady()

	require.NoError(t, d.SeekTo(50))
	assert.Equal(t, []float64{100}, p.seeks)
	assert.Equal(t, 100.0, d.State().CurrentTimeSeconds)
}

func TestSeekWithoutDurationIsNoOp(t *testing.T) {
	p := &fakePlayer{duration: 0}
	d := NewDriver(p)
	d.MarkReady()

	assert.ErrorIs(t, d.SeekTo(50), ErrNoDuration)
	assert.ErrorIs(t, d.Skip(10), ErrNoDuration)
	assert.Empty(t, p.seeks)
}

func TestSkipClampsToBounds(t *testing.T) {
	p := &fakePlayer{duration: 60}
	d := NewDriver(p)
	d.MarkReady()

	require.NoError(t, d.Skip(-10))
	require.NoError(t, d.SeekTo(90))
	require.NoError(t, d.Skip(10))

	assert.Equal(t, []float64{0, 54, 60}, p.seeks)
	assert.Equal(t, 60.0, d.State().CurrentTimeSeconds)
}

func TestSeekErrorLeavesPositionUntouched(t *testing.T) {
	p := &fakePlayer{duration: 60, seekErr: errors.New("socket closed")}
	d := NewDriver(p)
	d.MarkReady()

	assert.Error(t, d.SeekTo(50))
	assert.Zero(t, d.State().CurrentTimeSeconds)
}

func TestToggleMuteAndCaptions(t *testing.T) {
	p := &fakePlayer{duration: 60}
	d := NewDriver(p, WithCaptions(false))
	d.MarkReady()

	require.NoError(t, d.ToggleMute())
	assert.True(t, p.muted)
	assert.True(t, d.State().IsMuted)

	assert.True(t, d.ToggleCaptions())
	assert.True(t, d.State().CaptionsEnabled)
}

func TestTickReadsPlayerAndNotifies(t *testing.T) {
	p := &fakePlayer{duration: 100, time: 12.4}
	d := NewDriver(p)

	var ticks []Tick
	unsubscribe := d.SubscribeTick(func(tk Tick) { ticks = append(ticks, tk) })

	tick, err := d.Tick()
	require.NoError(t, err)
	assert.Equal(t, Tick{TimeSeconds: 12.4, DurationSeconds: 100}, tick)
	assert.Equal(t, 12.4, d.State().CurrentTimeSeconds)

	unsubscribe()
	_, err = d.Tick()
	require.NoError(t, err)
	assert.Len(t, ticks, 1)
}

func TestTickClampsToDuration(t *testing.T) {
	p := &fakePlayer{duration: 100, time: 100.3}
	d := NewDriver(p)

	tick, err := d.Tick()
	require.NoError(t, err)
	assert.Equal(t, 100.0, tick.TimeSeconds)
}

func TestTickerEmitsWhilePlaying(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p := &fakePlayer{duration: 100}
	d := NewDriver(p, WithClock(clock))
	defer d.Close()
	d.MarkReady()

	ticks := make(chan Tick, 10)
	d.SubscribeTick(func(tk Tick) { ticks <- tk })

	d.HandleStateChange(StatePlaying)
	p.setTime(1)
	clock.Advance(time.Second)

	select {
	case tk := <-ticks:
		assert.Equal(t, 1.0, tk.TimeSeconds)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a tick while playing")
	}

	d.HandleStateChange(StatePaused)
	assert.False(t, d.Ticking())
}

func TestRefreshAppliesPlayerState(t *testing.T) {
	p := &fakePlayer{duration: 100, state: StatePlaying}
	d := NewDriver(p, WithClock(clockwork.NewFakeClock()))
	defer d.Close()

	require.NoError(t, d.Refresh())
	assert.True(t, d.State().IsPlaying)
	assert.True(t, d.Ready(), "a loaded player counts as ready")
	assert.Equal(t, 100.0, d.State().DurationSeconds)

	p.mu.Lock()
	p.state = StateEnded
	p.mu.Unlock()
	require.NoError(t, d.Refresh())
	assert.False(t, d.State().IsPlaying)
}

func TestRefreshUnstartedStaysNotReady(t *testing.T) {
	p := &fakePlayer{duration: 100, state: StateUnstarted}
	d := NewDriver(p, WithClock(clockwork.NewFakeClock()))
	defer d.Close()

	require.NoError(t, d.Refresh())
	assert.False(t, d.Ready())
	assert.ErrorIs(t, d.TogglePlay(), ErrNotReady)
}

func TestRefreshWhilePausedPicksUpLoadedFile(t *testing.T) {
	p := &fakePlayer{state: StatePaused}
	d := NewDriver(p, WithClock(clockwork.NewFakeClock()))
	defer d.Close()

	var ticks int
	d.SubscribeTick(func(Tick) { ticks++ })

	require.NoError(t, d.Refresh())
	require.True(t, d.Ready())
	assert.ErrorIs(t, d.SeekTo(50), ErrNoDuration)

	p.mu.Lock()
	p.time, p.duration = 500, 600
	p.mu.Unlock()
	require.NoError(t, d.Refresh())

	assert.Equal(t, 500.0, d.State().CurrentTimeSeconds)
	assert.Equal(t, 600.0, d.State().DurationSeconds)
	assert.Zero(t, ticks, "paused refreshes do not count as ticks")

	require.NoError(t, d.SeekTo(50))
	assert.Equal(t, []float64{300}, p.seeks)
}

func TestSkipFromResumedPosition(t *testing.T) {
	p := &fakePlayer{time: 500, duration: 600, state: StatePaused}
	d := NewDriver(p, WithClock(clockwork.NewFakeClock()))
	defer d.Close()

	require.NoError(t, d.Refresh())
	require.NoError(t, d.Skip(5))
	assert.Equal(t, []float64{505}, p.seeks)
}

func TestMarkReadyReadsPosition(t *testing.T) {
	p := &fakePlayer{time: 42, duration: 240}
	d := NewDriver(p)
	d.MarkReady()

	assert.Equal(t, 42.0, d.State().CurrentTimeSeconds)
}

func TestProgress(t *testing.T) {
	assert.Zero(t, PlaybackState{CurrentTimeSeconds: 10}.Progress())
	assert.Equal(t, 25.0, PlaybackState{CurrentTimeSeconds: 25, DurationSeconds: 100}.Progress())
}
