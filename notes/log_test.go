package notes

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureIntro(t *testing.T) {
	l := NewLog(clockwork.NewFakeClock())

	n, err := l.Capture("intro", 12.4)
	require.NoError(t, err)

	require.Equal(t, 1, l.Len())
	got := l.Notes()[0]
	assert.Equal(t, n, got)
	assert.Equal(t, 12.4, got.TimestampSeconds)
	assert.Equal(t, "00:12", got.DisplayTimestamp)
	assert.Equal(t, "intro", got.Text)
	assert.NotEmpty(t, got.ID)
}

func TestCaptureRejectsBlankText(t *testing.T) {
	l := NewLog(clockwork.NewFakeClock())

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := l.Capture(text, 5)
		assert.ErrorIs(t, err, ErrEmptyNote)
	}
	assert.Zero(t, l.Len())
}

func TestCaptureKeepsInsertionOrder(t *testing.T) {
	l := NewLog(clockwork.NewFakeClock())
	times := []float64{30, 0, 12.5, 7, 3600.9}

	ids := map[string]bool{}
	for i, ts := range times {
		n, err := l.Capture(string(rune('a'+i)), ts)
		require.NoError(t, err)
		ids[n.ID] = true
	}

	got := l.Notes()
	require.Len(t, got, len(times))
	for i, n := range got {
		assert.Equal(t, times[i], n.TimestampSeconds)
		assert.Equal(t, string(rune('a'+i)), n.Text)
	}
	assert.Len(t, ids, len(times), "ids must be unique")
	assert.Equal(t, "1:00:00", got[4].DisplayTimestamp)
}

func TestCaptureTrimsText(t *testing.T) {
	l := NewLog(clockwork.NewFakeClock())
	n, err := l.Capture("  key point  ", 0)
	require.NoError(t, err)
	assert.Equal(t, "key point", n.Text)
	assert.Equal(t, "00:00", n.DisplayTimestamp)
}

func TestActivateHighlightsThenClears(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLog(clock)
	defer l.Close()

	n, err := l.Capture("intro", 12.4)
	require.NoError(t, err)

	_, err = l.Activate(n.ID)
	require.NoError(t, err)
	got, err := l.Get(n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsHighlighted)

	clock.Advance(HighlightDuration)
	assert.Eventually(t, func() bool {
		got, _ := l.Get(n.ID)
		return !got.IsHighlighted
	}, time.Second, 5*time.Millisecond)
}

func TestActivateUnknownNote(t *testing.T) {
	l := NewLog(clockwork.NewFakeClock())
	_, err := l.Activate("nope")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestNotesReturnsSnapshot(t *testing.T) {
	l := NewLog(clockwork.NewFakeClock())
	_, err := l.Capture("one", 1)
	require.NoError(t, err)

	snap := l.Notes()
	snap[0].Text = "changed"
	assert.Equal(t, "one", l.Notes()[0].Text)
}
