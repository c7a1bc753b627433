package mpv

import (
	"errors"

	"github.com/user/deepfocus-cli/player"
)

// Player adapts a Client to the player.Player control surface.
type Player struct {
	client *Client
}

// NewPlayer wraps a connected client.
func NewPlayer(client *Client) *Player {
	return &Player{client: client}
}

func (p *Player) Play() error  { return p.client.SetPaused(false) }
func (p *Player) Pause() error { return p.client.SetPaused(true) }

func (p *Player) Seek(seconds float64) error { return p.client.SeekAbsolute(seconds) }

func (p *Player) SetMute(muted bool) error { return p.client.SetMute(muted) }

// CurrentTime reports 0 while mpv has no position yet.
func (p *Player) CurrentTime() (float64, error) {
	return orZero(p.client.GetTimePos())
}

// Duration reports 0 while the duration is unknown, e.g. for live streams.
func (p *Player) Duration() (float64, error) {
	return orZero(p.client.GetDuration())
}

// State maps mpv's idle/eof/cache/pause properties onto a player.State.
func (p *Player) State() (player.State, error) {
	idle, err := p.client.getBool("idle-active")
	if err != nil {
		return player.StateUnstarted, err
	}
	if idle {
		return player.StateUnstarted, nil
	}

	eof, err := p.client.getBool("eof-reached")
	if err != nil && !errors.Is(err, ErrPropertyUnavailable) {
		return player.StateUnstarted, err
	}
	if eof {
		return player.StateEnded, nil
	}

	buffering, err := p.client.getBool("paused-for-cache")
	if err != nil && !errors.Is(err, ErrPropertyUnavailable) {
		return player.StateUnstarted, err
	}
	if buffering {
		return player.StateBuffering, nil
	}

	paused, err := p.client.GetPaused()
	if err != nil {
		return player.StateUnstarted, err
	}
	if paused {
		return player.StatePaused, nil
	}
	return player.StatePlaying, nil
}

func orZero(v float64, err error) (float64, error) {
	if errors.Is(err, ErrPropertyUnavailable) {
		return 0, nil
	}
	return v, err
}
