// Package notes keeps the ordered, append-only list of timestamped notes taken during a
// watch session.
package notes

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/user/deepfocus-cli/pkg/timeutil"
)

// HighlightDuration is how long a note stays highlighted after its timestamp is activated.
const HighlightDuration = 300 * time.Millisecond

var (
	ErrEmptyNote    = errors.New("notes: note text is empty")
	ErrNoteNotFound = errors.New("notes: note not found")
)

// Note is a single timestamped annotation. Only IsHighlighted changes after creation.
type Note struct {
	ID               string
	TimestampSeconds float64
	DisplayTimestamp string
	Text             string
	IsHighlighted    bool
}

// Log is the note list for one session. Entries keep insertion order and are never
// re-sorted by timestamp.
type Log struct {
	clock clockwork.Clock

	mu     sync.Mutex
	notes  []Note
	timers map[string]clockwork.Timer
	gen    map[string]int
}

// NewLog creates an empty log. A nil clock uses the real clock.
func NewLog(clock clockwork.Clock) *Log {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Log{clock: clock, timers: make(map[string]clockwork.Timer), gen: make(map[string]int)}
}

// Capture appends a note at timestampSeconds. Text is trimmed; empty text adds nothing.
func (l *Log) Capture(text string, timestampSeconds float64) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, ErrEmptyNote
	}
	if timestampSeconds < 0 {
		timestampSeconds = 0
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Note{}, err
	}
	n := Note{
		ID:               id.String(),
		TimestampSeconds: timestampSeconds,
		DisplayTimestamp: timeutil.FormatTimestamp(timestampSeconds),
		Text:             text,
	}

	l.mu.Lock()
	l.notes = append(l.notes, n)
	l.mu.Unlock()
	return n, nil
}

// Activate highlights the note for HighlightDuration. Activating an already highlighted
// note restarts the countdown. The caller is responsible for seeking the player.
func (l *Log) Activate(id string) (Note, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return Note{}, ErrNoteNotFound
	}
	l.notes[i].IsHighlighted = true

	if t, ok := l.timers[id]; ok {
		t.Stop()
	}
	l.gen[id]++
	gen := l.gen[id]
	l.timers[id] = l.clock.AfterFunc(HighlightDuration, func() { l.clearHighlight(id, gen) })
	return l.notes[i], nil
}

// Get returns the note with the given id.
func (l *Log) Get(id string) (Note, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexLocked(id)
	if i < 0 {
		return Note{}, ErrNoteNotFound
	}
	return l.notes[i], nil
}

// Notes returns a snapshot of the log in capture order.
func (l *Log) Notes() []Note {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Note, len(l.notes))
	copy(out, l.notes)
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.notes)
}

// Close stops pending highlight timers.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, t := range l.timers {
		t.Stop()
		delete(l.timers, id)
	}
}

func (l *Log) clearHighlight(id string, gen int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen[id] != gen {
		return
	}
	if i := l.indexLocked(id); i >= 0 {
		l.notes[i].IsHighlighted = false
	}
	delete(l.timers, id)
}

func (l *Log) indexLocked(id string) int {
	for i := range l.notes {
		if l.notes[i].ID == id {
			return i
		}
	}
	return -1
}
