package db

import (
	"time"

	"github.com/user/deepfocus-cli/progress"
)

// scanner is satisfied by *sql.Row, *sql.Rows, pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanSQLiteRecord reads a watch_history row whose last_watched_at is unix milliseconds.
func scanSQLiteRecord(s scanner) (progress.Record, error) {
	var r progress.Record
	var lastWatched int64
	if err := s.Scan(&r.UserID, &r.VideoID, &r.VideoTitle, &r.Thumbnail, &r.ChannelName,
		&r.ProgressSeconds, &r.DurationSeconds, &r.Completed, &lastWatched); err != nil {
		return progress.Record{}, err
	}
	r.LastWatchedAt = time.UnixMilli(lastWatched).UTC()
	return r, nil
}

// scanPostgresRecord reads a watch_history row whose last_watched_at is a timestamptz.
func scanPostgresRecord(s scanner) (progress.Record, error) {
	var r progress.Record
	if err := s.Scan(&r.UserID, &r.VideoID, &r.VideoTitle, &r.Thumbnail, &r.ChannelName,
		&r.ProgressSeconds, &r.DurationSeconds, &r.Completed, &r.LastWatchedAt); err != nil {
		return progress.Record{}, err
	}
	return r, nil
}
