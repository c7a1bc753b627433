// Package player adapts an embeddable video player to a uniform control surface and
// emits a periodic time signal while the video is playing.
package player

import (
	"errors"
	"time"
)

// State is a player state-change notification value.
type State int

const (
	StateUnstarted State = iota
	StatePlaying
	StatePaused
	StateBuffering
	StateEnded
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	case StateEnded:
		return "ended"
	default:
		return "unstarted"
	}
}

// DefaultTickInterval is how often the driver samples the player while playing.
const DefaultTickInterval = time.Second

var (
	// ErrNotReady is returned by controls used before the player signalled readiness.
	ErrNotReady = errors.New("player: not ready")
	// ErrNoDuration is returned by position controls while the duration is unknown
	// (live content or not loaded yet).
	ErrNoDuration = errors.New("player: duration unknown")
)

// Player is the control surface of the underlying video player.
type Player interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetMute(muted bool) error
	CurrentTime() (float64, error)
	Duration() (float64, error)
	State() (State, error)
}

// PlaybackState is the session-scoped view of the player owned by the Driver.
type PlaybackState struct {
	CurrentTimeSeconds float64
	DurationSeconds    float64
	IsPlaying          bool
	IsMuted            bool
	CaptionsEnabled    bool
}

// Progress returns the position as a 0-100 percentage, or 0 while the duration is unknown.
func (s PlaybackState) Progress() float64 {
	if s.DurationSeconds <= 0 {
		return 0
	}
	return s.CurrentTimeSeconds / s.DurationSeconds * 100
}

// Tick is one periodic sample of the player's position.
type Tick struct {
	TimeSeconds     float64
	DurationSeconds float64
}
