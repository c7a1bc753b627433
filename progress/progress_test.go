package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/deepfocus-cli/player"
)

type fakeAuth struct {
	userID string
}

func (a fakeAuth) Authenticated() bool { return a.userID != "" }
func (a fakeAuth) UserID() string      { return a.userID }

type recordingStore struct {
	*MemoryStore
	mu      sync.Mutex
	updates []Update
	err     error
	ctxErrs []error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: NewMemoryStore()}
}

func (s *recordingStore) Upsert(ctx context.Context, userID string, u Update) (Record, error) {
	s.mu.Lock()
	s.updates = append(s.updates, u)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return Record{}, err
	}
	return s.MemoryStore.Upsert(ctx, userID, u)
}

func (s *recordingStore) progressValues() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.updates))
	for _, u := range s.updates {
		out = append(out, u.ProgressSeconds)
	}
	sort.Ints(out)
	return out
}

func TestIsCompleted(t *testing.T) {
	assert.True(t, IsCompleted(95, 100))
	assert.False(t, IsCompleted(89, 100))
	assert.True(t, IsCompleted(90, 100))
	assert.False(t, IsCompleted(50, 0))
	assert.False(t, IsCompleted(0, 0))

	for d := 1; d <= 300; d += 7 {
		for p := 0; p <= d; p++ {
			want := float64(p)/float64(d) >= 0.9
			assert.Equal(t, want, IsCompleted(float64(p), float64(d)), "p=%d d=%d", p, d)
		}
	}
}

func TestOnTickSavesEveryTenSeconds(t *testing.T) {
	store := newRecordingStore()
	p := NewPersister(store, fakeAuth{userID: "u1"}, Video{ID: "vid"}, zerolog.Nop())

	var fired []float64
	for _, ts := range []float64{0, 5, 11, 21} {
		if p.OnTick(player.Tick{TimeSeconds: ts, DurationSeconds: 100}) {
			fired = append(fired, ts)
		}
	}
	require.NoError(t, p.Close(context.Background()))

	assert.Equal(t, []float64{11, 21}, fired)
	// the final save on Close repeats the last position
	assert.Equal(t, []int{11, 21, 21}, store.progressValues())
}

func TestOnTickThrottleProperty(t *testing.T) {
	p := NewPersister(NewMemoryStore(), fakeAuth{userID: "u1"}, Video{ID: "vid"}, zerolog.Nop())

	last := 0.0
	for ts := 0.0; ts < 500; ts += 1.3 {
		if p.OnTick(player.Tick{TimeSeconds: ts, DurationSeconds: 600}) {
			assert.GreaterOrEqual(t, ts-last, SaveInterval)
			last = ts
		} else {
			assert.Less(t, ts-last, SaveInterval)
		}
	}
	require.NoError(t, p.Close(context.Background()))
}

func TestOnTickFloorsSecondsAndCarriesMetadata(t *testing.T) {
	store := newRecordingStore()
	video := Video{ID: "vid", Title: "Lecture", Thumbnail: "thumb.jpg", ChannelName: "MIT"}
	p := NewPersister(store, fakeAuth{userID: "u1"}, video, zerolog.Nop())

	p.OnTick(player.Tick{TimeSeconds: 12.9, DurationSeconds: 99.7})
	require.NoError(t, p.Close(context.Background()))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotEmpty(t, store.updates)
	assert.Equal(t, Update{
		VideoID:         "vid",
		VideoTitle:      "Lecture",
		Thumbnail:       "thumb.jpg",
		ChannelName:     "MIT",
		ProgressSeconds: 12,
		DurationSeconds: 99,
	}, store.updates[0])
}

func TestUnauthenticatedSkipsPersistence(t *testing.T) {
	store := newRecordingStore()
	p := NewPersister(store, fakeAuth{}, Video{ID: "vid"}, zerolog.Nop())

	assert.False(t, p.OnTick(player.Tick{TimeSeconds: 30, DurationSeconds: 100}))
	rec, err := p.Save(context.Background(), 30, 100)
	require.NoError(t, err)
	assert.Zero(t, rec)
	require.NoError(t, p.Close(context.Background()))

	assert.Empty(t, store.progressValues())
}

func TestSaveFailureIsNotRetried(t *testing.T) {
	store := newRecordingStore()
	store.err = errors.New("network down")
	p := NewPersister(store, fakeAuth{userID: "u1"}, Video{ID: "vid"}, zerolog.Nop())

	assert.True(t, p.OnTick(player.Tick{TimeSeconds: 10, DurationSeconds: 100}))
	assert.False(t, p.OnTick(player.Tick{TimeSeconds: 15, DurationSeconds: 100}))
	assert.Equal(t, 10.0, p.LastSaved())

	err := p.Close(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []int{10, 15}, store.progressValues())
}

func TestCloseIgnoresCallerCancellation(t *testing.T) {
	store := newRecordingStore()
	p := NewPersister(store, fakeAuth{userID: "u1"}, Video{ID: "vid"}, zerolog.Nop())
	p.OnTick(player.Tick{TimeSeconds: 4, DurationSeconds: 100})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Close(ctx))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.updates, 1)
	assert.NoError(t, store.ctxErrs[0])

	assert.False(t, p.OnTick(player.Tick{TimeSeconds: 40, DurationSeconds: 100}), "ticks after close")
}

func TestMergeKeepsMetadataWhenOmitted(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	first := Merge(Record{}, "u1", Update{VideoID: "v", VideoTitle: "Title", ProgressSeconds: 10, DurationSeconds: 100}, now)
	second := Merge(first, "u1", Update{VideoID: "v", ProgressSeconds: 95, DurationSeconds: 100}, now.Add(time.Minute))

	assert.Equal(t, "Title", second.VideoTitle)
	assert.True(t, second.Completed)
	assert.Equal(t, now.Add(time.Minute), second.LastWatchedAt)
}

func TestMemoryStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time { n++; return base.Add(time.Duration(n) * time.Minute) }

	_, err := s.Upsert(ctx, "u1", Update{VideoID: "a", ProgressSeconds: 10, DurationSeconds: 100})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "u1", Update{VideoID: "b", ProgressSeconds: 99, DurationSeconds: 100})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "u1", Update{VideoID: "c", ProgressSeconds: 1, DurationSeconds: 100})
	require.NoError(t, err)

	recs, err := s.List(ctx, "u1", ListOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].VideoID)
	assert.Equal(t, "a", recs[1].VideoID)

	recs, err = s.List(ctx, "u1", ListOptions{IncludeCompleted: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec, err := s.Get(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, 10, rec.ProgressSeconds)
	_, err = s.Get(ctx, "u2", "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "u1", "a"))
	assert.ErrorIs(t, s.Delete(ctx, "u1", "a"), ErrNotFound)

	_, err = s.Upsert(ctx, "u1", Update{})
	assert.ErrorIs(t, err, ErrMissingVideoID)
}

func TestHTTPStore(t *testing.T) {
	var gotAuth string
	var gotBody Update
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_ = json.NewEncoder(w).Encode(Record{VideoID: gotBody.VideoID, ProgressSeconds: gotBody.ProgressSeconds, Completed: true})
		case http.MethodGet:
			switch r.URL.Path {
			case "/api/watch-history/v":
				_, _ = w.Write([]byte(`{"videoId":"v","progress":42}`))
				return
			case "/api/watch-history/gone":
				w.WriteHeader(http.StatusNotFound)
				return
			}
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			assert.Equal(t, "true", r.URL.Query().Get("includeCompleted"))
			_, _ = w.Write([]byte(`[{"videoId":"a","progress":3}]`))
		case http.MethodDelete:
			if r.URL.Query().Get("videoId") == "missing" {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"not found"}`))
				return
			}
			_, _ = w.Write([]byte(`{"success":true}`))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	s := NewHTTPStore(srv.URL+"/", "tok")

	rec, err := s.Upsert(ctx, "ignored", Update{VideoID: "v", ProgressSeconds: 95, DurationSeconds: 100})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, 95, gotBody.ProgressSeconds)
	assert.True(t, rec.Completed)

	recs, err := s.List(ctx, "ignored", ListOptions{Limit: 5, IncludeCompleted: true})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 3, recs[0].ProgressSeconds)

	got, err := s.Get(ctx, "ignored", "v")
	require.NoError(t, err)
	assert.Equal(t, 42, got.ProgressSeconds)
	_, err = s.Get(ctx, "ignored", "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "ignored", "v"))
	assert.ErrorIs(t, s.Delete(ctx, "ignored", "missing"), ErrNotFound)
}
