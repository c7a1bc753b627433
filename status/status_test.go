package status

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestSuccessResetsToIdle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tr := NewTracker(clock, 2*time.Second)

	assert.True(t, tr.Begin())
	assert.Equal(t, Pending, tr.State())
	assert.False(t, tr.Begin(), "second begin while pending")

	tr.Succeed()
	assert.Equal(t, Success, tr.State())

	clock.Advance(time.Second)
	assert.Equal(t, Success, tr.State())

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return tr.State() == Idle }, time.Second, 5*time.Millisecond)
}

func TestErrorIsStickyUntilBegin(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tr := NewTracker(clock, 3*time.Second)

	boom := errors.New("boom")
	tr.Begin()
	tr.Fail(boom)

	clock.Advance(time.Minute)
	assert.Equal(t, Error, tr.State())
	assert.ErrorIs(t, tr.Err(), boom)

	assert.True(t, tr.Begin())
	assert.Equal(t, Pending, tr.State())
	assert.NoError(t, tr.Err())
}

func TestBeginCancelsScheduledReset(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tr := NewTracker(clock, time.Second)

	tr.Begin()
	tr.Succeed()
	tr.Begin()

	clock.Advance(2 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, Pending, tr.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "error", Error.String())
}
