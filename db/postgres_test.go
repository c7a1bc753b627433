package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/deepfocus-cli/progress"
)

var historyColumns = []string{
	"user_id", "video_id", "video_title", "thumbnail", "channel_name",
	"progress", "duration", "completed", "last_watched_at",
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface, time.Time) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s := NewPostgresStore(mock)
	s.now = func() time.Time { return now }
	return s, mock, now
}

func TestPostgresUpsert(t *testing.T) {
	s, mock, now := newMockStore(t)

	mock.ExpectQuery("INSERT INTO watch_history").
		WithArgs("u1", "vid", "Raft", "", "", 95, 100, true, now).
		WillReturnRows(pgxmock.NewRows(historyColumns).
			AddRow("u1", "vid", "Raft", "", "MIT", 95, 100, true, now))

	rec, err := s.Upsert(context.Background(), "u1", progress.Update{
		VideoID: "vid", VideoTitle: "Raft", ProgressSeconds: 95, DurationSeconds: 100,
	})
	require.NoError(t, err)
	assert.True(t, rec.Completed)
	assert.Equal(t, "MIT", rec.ChannelName)
	assert.Equal(t, now, rec.LastWatchedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertError(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectQuery("INSERT INTO watch_history").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(errors.New("connection reset"))

	_, err := s.Upsert(context.Background(), "u1", progress.Update{VideoID: "vid"})
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList(t *testing.T) {
	s, mock, now := newMockStore(t)

	mock.ExpectQuery("FROM watch_history").
		WithArgs("u1", false, progress.DefaultListLimit).
		WillReturnRows(pgxmock.NewRows(historyColumns).
			AddRow("u1", "b", "", "", "", 10, 100, false, now).
			AddRow("u1", "a", "", "", "", 20, 100, false, now.Add(-time.Hour)))

	recs, err := s.List(context.Background(), "u1", progress.ListOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[0].VideoID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet(t *testing.T) {
	s, mock, now := newMockStore(t)

	mock.ExpectQuery("FROM watch_history").
		WithArgs("u1", "old").
		WillReturnRows(pgxmock.NewRows(historyColumns).
			AddRow("u1", "old", "Raft", "", "", 321, 600, false, now))
	mock.ExpectQuery("FROM watch_history").
		WithArgs("u1", "missing").
		WillReturnRows(pgxmock.NewRows(historyColumns))

	rec, err := s.Get(context.Background(), "u1", "old")
	require.NoError(t, err)
	assert.Equal(t, 321, rec.ProgressSeconds)

	_, err = s.Get(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, progress.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDelete(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectExec("DELETE FROM watch_history").
		WithArgs("u1", "a").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM watch_history").
		WithArgs("u1", "missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, s.Delete(context.Background(), "u1", "a"))
	assert.ErrorIs(t, s.Delete(context.Background(), "u1", "missing"), progress.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
