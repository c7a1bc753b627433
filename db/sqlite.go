package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/user/deepfocus-cli/progress"
)

// SQLiteStore is the local watch-history store.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore wraps a database opened with Open.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Upsert inserts or updates the (userID, VideoID) row. Metadata columns keep their
// stored value when the update leaves them empty.
func (s *SQLiteStore) Upsert(ctx context.Context, userID string, u progress.Update) (progress.Record, error) {
	if err := u.Validate(); err != nil {
		return progress.Record{}, err
	}

	_, err := s.db.ExecContext(ctx, UpsertWatchHistorySQL,
		userID, u.VideoID, u.VideoTitle, u.Thumbnail, u.ChannelName,
		u.ProgressSeconds, u.DurationSeconds, u.Completed(), s.now().UnixMilli())
	if err != nil {
		return progress.Record{}, fmt.Errorf("upsert watch history: %w", err)
	}

	rec, err := scanSQLiteRecord(s.db.QueryRowContext(ctx, SelectWatchHistoryByVideoSQL, userID, u.VideoID))
	if err != nil {
		return progress.Record{}, fmt.Errorf("select watch history: %w", err)
	}
	return rec, nil
}

// List returns the user's history, most recently watched first.
func (s *SQLiteStore) List(ctx context.Context, userID string, opts progress.ListOptions) ([]progress.Record, error) {
	rows, err := s.db.QueryContext(ctx, SelectWatchHistorySQL, userID, opts.IncludeCompleted, opts.EffectiveLimit())
	if err != nil {
		return nil, fmt.Errorf("select watch history: %w", err)
	}
	defer rows.Close()

	records := []progress.Record{}
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watch history: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns a single record.
func (s *SQLiteStore) Get(ctx context.Context, userID, videoID string) (progress.Record, error) {
	rec, err := scanSQLiteRecord(s.db.QueryRowContext(ctx, SelectWatchHistoryByVideoSQL, userID, videoID))
	if errors.Is(err, sql.ErrNoRows) {
		return progress.Record{}, progress.ErrNotFound
	}
	if err != nil {
		return progress.Record{}, fmt.Errorf("select watch history: %w", err)
	}
	return rec, nil
}

// Delete removes the row; a missing row is progress.ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, userID, videoID string) error {
	result, err := s.db.ExecContext(ctx, DeleteWatchHistorySQL, userID, videoID)
	if err != nil {
		return fmt.Errorf("delete watch history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete watch history: %w", err)
	}
	if n == 0 {
		return progress.ErrNotFound
	}
	return nil
}
