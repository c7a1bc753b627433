package progress

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It is used when no persistent store is configured
// and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	records map[string]map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, records: make(map[string]map[string]Record)}
}

func (s *MemoryStore) Upsert(_ context.Context, userID string, u Update) (Record, error) {
	if err := u.Validate(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byVideo, ok := s.records[userID]
	if !ok {
		byVideo = make(map[string]Record)
		s.records[userID] = byVideo
	}
	rec := Merge(byVideo[u.VideoID], userID, u, s.now())
	byVideo[u.VideoID] = rec
	return rec, nil
}

func (s *MemoryStore) List(_ context.Context, userID string, opts ListOptions) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.records[userID]))
	for _, r := range s.records[userID] {
		if !opts.IncludeCompleted && r.Completed {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastWatchedAt.After(out[j].LastWatchedAt) })
	if limit := opts.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, userID, videoID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID][videoID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[userID][videoID]; !ok {
		return ErrNotFound
	}
	delete(s.records[userID], videoID)
	return nil
}

// Merge applies u to the existing record the way every Store does: progress, duration,
// completion and timestamp always change, metadata only when provided.
func Merge(existing Record, userID string, u Update, now time.Time) Record {
	rec := existing
	rec.UserID = userID
	rec.VideoID = u.VideoID
	if u.VideoTitle != "" {
		rec.VideoTitle = u.VideoTitle
	}
	if u.Thumbnail != "" {
		rec.Thumbnail = u.Thumbnail
	}
	if u.ChannelName != "" {
		rec.ChannelName = u.ChannelName
	}
	rec.ProgressSeconds = u.ProgressSeconds
	rec.DurationSeconds = u.DurationSeconds
	rec.Completed = u.Completed()
	rec.LastWatchedAt = now
	return rec
}
