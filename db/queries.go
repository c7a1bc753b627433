package db

import (
	_ "embed"
)

// Schema

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Watch history queries

//go:embed sql/upsert_watch_history.sql
var UpsertWatchHistorySQL string

//go:embed sql/select_watch_history_by_video.sql
var SelectWatchHistoryByVideoSQL string

//go:embed sql/select_watch_history.sql
var SelectWatchHistorySQL string

//go:embed sql/delete_watch_history.sql
var DeleteWatchHistorySQL string

// Postgres variants used by PostgresStore. The schema is owned by the server's
// deployment, not created here.

const pgUpsertWatchHistorySQL = `INSERT INTO watch_history (
    user_id, video_id, video_title, thumbnail, channel_name,
    progress, duration, completed, last_watched_at
)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)
ON CONFLICT (user_id, video_id) DO UPDATE SET
    video_title = COALESCE(EXCLUDED.video_title, watch_history.video_title),
    thumbnail = COALESCE(EXCLUDED.thumbnail, watch_history.thumbnail),
    channel_name = COALESCE(EXCLUDED.channel_name, watch_history.channel_name),
    progress = EXCLUDED.progress,
    duration = EXCLUDED.duration,
    completed = EXCLUDED.completed,
    last_watched_at = EXCLUDED.last_watched_at
RETURNING user_id, video_id, COALESCE(video_title, ''), COALESCE(thumbnail, ''), COALESCE(channel_name, ''),
    progress, duration, completed, last_watched_at`

const pgSelectWatchHistorySQL = `SELECT user_id, video_id, COALESCE(video_title, ''), COALESCE(thumbnail, ''), COALESCE(channel_name, ''),
    progress, duration, completed, last_watched_at
FROM watch_history
WHERE user_id = $1 AND ($2 OR completed = false)
ORDER BY last_watched_at DESC
LIMIT $3`

const pgSelectWatchHistoryByVideoSQL = `SELECT user_id, video_id, COALESCE(video_title, ''), COALESCE(thumbnail, ''), COALESCE(channel_name, ''),
    progress, duration, completed, last_watched_at
FROM watch_history
WHERE user_id = $1 AND video_id = $2`

const pgDeleteWatchHistorySQL = `DELETE FROM watch_history WHERE user_id = $1 AND video_id = $2`
