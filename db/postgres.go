package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/deepfocus-cli/progress"
)

// DBTX is the part of a pgx pool or transaction used by PostgresStore.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the watch-history store behind `deepfocus serve`.
type PostgresStore struct {
	db  DBTX
	now func() time.Time
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// ConnectPostgres opens a pool and verifies the connection.
func ConnectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, userID string, u progress.Update) (progress.Record, error) {
	if err := u.Validate(); err != nil {
		return progress.Record{}, err
	}
	row := s.db.QueryRow(ctx, pgUpsertWatchHistorySQL,
		userID, u.VideoID, u.VideoTitle, u.Thumbnail, u.ChannelName,
		u.ProgressSeconds, u.DurationSeconds, u.Completed(), s.now().UTC())
	rec, err := scanPostgresRecord(row)
	if err != nil {
		return progress.Record{}, fmt.Errorf("upsert watch history: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, userID string, opts progress.ListOptions) ([]progress.Record, error) {
	rows, err := s.db.Query(ctx, pgSelectWatchHistorySQL, userID, opts.IncludeCompleted, opts.EffectiveLimit())
	if err != nil {
		return nil, fmt.Errorf("select watch history: %w", err)
	}
	defer rows.Close()

	records := []progress.Record{}
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watch history: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, userID, videoID string) (progress.Record, error) {
	rec, err := scanPostgresRecord(s.db.QueryRow(ctx, pgSelectWatchHistoryByVideoSQL, userID, videoID))
	if errors.Is(err, pgx.ErrNoRows) {
		return progress.Record{}, progress.ErrNotFound
	}
	if err != nil {
		return progress.Record{}, fmt.Errorf("select watch history: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, videoID string) error {
	tag, err := s.db.Exec(ctx, pgDeleteWatchHistorySQL, userID, videoID)
	if err != nil {
		return fmt.Errorf("delete watch history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return progress.ErrNotFound
	}
	return nil
}
