package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/user/deepfocus-cli/library"
)

// LibraryStore keeps playlists, tags and the watch-later list in the local SQLite
// database. Every method is scoped to userID.
type LibraryStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewLibraryStore wraps a database opened with Open.
func NewLibraryStore(db *sql.DB) *LibraryStore {
	return &LibraryStore{db: db, now: time.Now}
}

const playlistColumns = `p.id, p.user_id, p.name, p.description, p.thumbnail, p.is_public, p.created_at, p.updated_at,
    (SELECT COUNT(*) FROM playlist_videos v WHERE v.playlist_id = p.id)`

const (
	insertPlaylistSQL = `INSERT INTO playlists (id, user_id, name, description, thumbnail, is_public, created_at, updated_at)
VALUES (?, ?, ?, ?, '', ?, ?, ?)`
	selectPlaylistsSQL = `SELECT ` + playlistColumns + `
FROM playlists p WHERE p.user_id = ?
ORDER BY p.updated_at DESC, p.created_at DESC`
	selectPlaylistSQL = `SELECT ` + playlistColumns + `
FROM playlists p WHERE p.id = ? AND p.user_id = ?`
	updatePlaylistSQL = `UPDATE playlists SET name = ?, description = ?, is_public = ?, updated_at = ?
WHERE id = ? AND user_id = ?`
	touchPlaylistSQL       = `UPDATE playlists SET updated_at = ? WHERE id = ?`
	setPlaylistThumbSQL    = `UPDATE playlists SET thumbnail = ?, updated_at = ? WHERE id = ?`
	deletePlaylistSQL      = `DELETE FROM playlists WHERE id = ? AND user_id = ?`
	deletePlaylistItemsSQL = `DELETE FROM playlist_videos WHERE playlist_id = ?`

	// LIMIT -1 is unbounded in SQLite.
	selectPlaylistVideosSQL = `SELECT video_id, title, thumbnail, channel_title, duration, position, added_at
FROM playlist_videos WHERE playlist_id = ?
ORDER BY position, added_at
LIMIT ?`
	countPlaylistVideosSQL    = `SELECT COUNT(*) FROM playlist_videos WHERE playlist_id = ?`
	selectPlaylistVideoPosSQL = `SELECT position FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`
	insertPlaylistVideoSQL    = `INSERT INTO playlist_videos (playlist_id, video_id, title, thumbnail, channel_title, duration, position, added_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	deletePlaylistVideoSQL = `DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`
	shiftPlaylistVideosSQL = `UPDATE playlist_videos SET position = position - 1 WHERE playlist_id = ? AND position > ?`

	tagColumns = `t.id, t.user_id, t.name, t.color, t.created_at,
    (SELECT COUNT(*) FROM tagged_items i WHERE i.tag_id = t.id)`
	insertTagSQL         = `INSERT INTO tags (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)`
	selectTagsSQL        = `SELECT ` + tagColumns + ` FROM tags t WHERE t.user_id = ? ORDER BY t.created_at DESC`
	selectTagSQL         = `SELECT ` + tagColumns + ` FROM tags t WHERE t.id = ? AND t.user_id = ?`
	selectTagByNameSQL   = `SELECT ` + tagColumns + ` FROM tags t WHERE t.name = ? AND t.user_id = ?`
	updateTagSQL         = `UPDATE tags SET name = ?, color = ? WHERE id = ? AND user_id = ?`
	deleteTagSQL         = `DELETE FROM tags WHERE id = ? AND user_id = ?`
	deleteTagItemsSQL    = `DELETE FROM tagged_items WHERE tag_id = ?`
	selectTagsForItemSQL = `SELECT ` + tagColumns + `
FROM tags t JOIN tagged_items i ON i.tag_id = t.id
WHERE t.user_id = ? AND i.item_id = ? AND i.item_type = ?
ORDER BY t.name`

	selectTaggedItemsSQL = `SELECT tag_id, item_id, item_type, title, thumbnail, created_at
FROM tagged_items WHERE tag_id = ?
ORDER BY created_at DESC
LIMIT ?`
	taggedItemExistsSQL = `SELECT 1 FROM tagged_items WHERE tag_id = ? AND item_id = ? AND item_type = ?`
	insertTaggedItemSQL = `INSERT INTO tagged_items (tag_id, item_id, item_type, title, thumbnail, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	deleteTaggedItemSQL = `DELETE FROM tagged_items WHERE tag_id = ? AND item_id = ? AND item_type = ?`
	untagPlaylistSQL    = `DELETE FROM tagged_items
WHERE item_type = 'playlist' AND item_id = ? AND tag_id IN (SELECT id FROM tags WHERE user_id = ?)`

	watchLaterExistsSQL = `SELECT 1 FROM watch_later WHERE user_id = ? AND video_id = ?`
	insertWatchLaterSQL = `INSERT INTO watch_later (user_id, video_id, title, thumbnail, channel_title, duration, added_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectWatchLaterSQL = `SELECT video_id, title, thumbnail, channel_title, duration, added_at
FROM watch_later WHERE user_id = ?
ORDER BY added_at DESC`
	deleteWatchLaterSQL = `DELETE FROM watch_later WHERE user_id = ? AND video_id = ?`
)

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// Playlists

func (s *LibraryStore) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (library.Playlist, error) {
	name, err := library.Name(name)
	if err != nil {
		return library.Playlist{}, err
	}
	id, err := library.NewID()
	if err != nil {
		return library.Playlist{}, err
	}
	now := s.now()
	if _, err := s.db.ExecContext(ctx, insertPlaylistSQL, id, userID, name, description, public, millis(now), millis(now)); err != nil {
		return library.Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}
	return library.Playlist{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Description: description,
		IsPublic:    public,
		Videos:      []library.PlaylistVideo{},
		CreatedAt:   fromMillis(millis(now)),
		UpdatedAt:   fromMillis(millis(now)),
	}, nil
}

// ListPlaylists returns the user's playlists, most recently changed first, each with
// its video count and the first PlaylistPreviewSize videos.
func (s *LibraryStore) ListPlaylists(ctx context.Context, userID string) ([]library.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, selectPlaylistsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select playlists: %w", err)
	}
	playlists := []library.Playlist{}
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// The connection is released above; videos are read one playlist at a time.
	for i := range playlists {
		videos, err := s.playlistVideos(ctx, s.db, playlists[i].ID, library.PlaylistPreviewSize)
		if err != nil {
			return nil, err
		}
		playlists[i].Videos = videos
	}
	return playlists, nil
}

// GetPlaylist returns the playlist with all of its videos in order.
func (s *LibraryStore) GetPlaylist(ctx context.Context, userID, id string) (library.Playlist, error) {
	p, err := scanPlaylist(s.db.QueryRowContext(ctx, selectPlaylistSQL, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return library.Playlist{}, library.ErrNotFound
	}
	if err != nil {
		return library.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}
	if p.Videos, err = s.playlistVideos(ctx, s.db, id, -1); err != nil {
		return library.Playlist{}, err
	}
	return p, nil
}

func (s *LibraryStore) UpdatePlaylist(ctx context.Context, userID, id string, u library.PlaylistUpdate) (library.Playlist, error) {
	p, err := s.GetPlaylist(ctx, userID, id)
	if err != nil {
		return library.Playlist{}, err
	}
	if u.Name != nil {
		if p.Name, err = library.Name(*u.Name); err != nil {
			return library.Playlist{}, err
		}
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.IsPublic != nil {
		p.IsPublic = *u.IsPublic
	}
	now := s.now()
	if _, err := s.db.ExecContext(ctx, updatePlaylistSQL, p.Name, p.Description, p.IsPublic, millis(now), id, userID); err != nil {
		return library.Playlist{}, fmt.Errorf("update playlist: %w", err)
	}
	p.UpdatedAt = fromMillis(millis(now))
	return p, nil
}

// DeletePlaylist removes the playlist, its videos and any tags attached to it.
func (s *LibraryStore) DeletePlaylist(ctx context.Context, userID, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, deletePlaylistSQL, id, userID)
		if err != nil {
			return fmt.Errorf("delete playlist: %w", err)
		}
		if err := expectRow(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deletePlaylistItemsSQL, id); err != nil {
			return fmt.Errorf("delete playlist videos: %w", err)
		}
		if _, err := tx.ExecContext(ctx, untagPlaylistSQL, id, userID); err != nil {
			return fmt.Errorf("untag playlist: %w", err)
		}
		return nil
	})
}

// AddPlaylistVideo appends v. The first video with a thumbnail becomes the playlist's
// thumbnail.
func (s *LibraryStore) AddPlaylistVideo(ctx context.Context, userID, playlistID string, v library.PlaylistVideo) (library.PlaylistVideo, error) {
	if v.VideoID == "" || v.Title == "" {
		return library.PlaylistVideo{}, fmt.Errorf("%w: video id and title are required", library.ErrInvalid)
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ownsPlaylist(ctx, tx, userID, playlistID); err != nil {
			return err
		}
		var pos int
		err := tx.QueryRowContext(ctx, selectPlaylistVideoPosSQL, playlistID, v.VideoID).Scan(&pos)
		if err == nil {
			return library.ErrExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("select playlist video: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx, countPlaylistVideosSQL, playlistID).Scan(&count); err != nil {
			return fmt.Errorf("count playlist videos: %w", err)
		}
		now := s.now()
		v.Position = count
		v.AddedAt = fromMillis(millis(now))
		if _, err := tx.ExecContext(ctx, insertPlaylistVideoSQL, playlistID, v.VideoID, v.Title, v.Thumbnail,
			v.ChannelTitle, v.DurationSeconds, v.Position, millis(now)); err != nil {
			return fmt.Errorf("insert playlist video: %w", err)
		}

		if count == 0 && v.Thumbnail != "" {
			_, err = tx.ExecContext(ctx, setPlaylistThumbSQL, v.Thumbnail, millis(now), playlistID)
		} else {
			_, err = tx.ExecContext(ctx, touchPlaylistSQL, millis(now), playlistID)
		}
		if err != nil {
			return fmt.Errorf("update playlist: %w", err)
		}
		return nil
	})
	if err != nil {
		return library.PlaylistVideo{}, err
	}
	return v, nil
}

// RemovePlaylistVideo deletes the video and closes the gap in positions.
func (s *LibraryStore) RemovePlaylistVideo(ctx context.Context, userID, playlistID, videoID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ownsPlaylist(ctx, tx, userID, playlistID); err != nil {
			return err
		}
		var pos int
		err := tx.QueryRowContext(ctx, selectPlaylistVideoPosSQL, playlistID, videoID).Scan(&pos)
		if errors.Is(err, sql.ErrNoRows) {
			return library.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("select playlist video: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deletePlaylistVideoSQL, playlistID, videoID); err != nil {
			return fmt.Errorf("delete playlist video: %w", err)
		}
		if _, err := tx.ExecContext(ctx, shiftPlaylistVideosSQL, playlistID, pos); err != nil {
			return fmt.Errorf("reorder playlist videos: %w", err)
		}
		if _, err := tx.ExecContext(ctx, touchPlaylistSQL, millis(s.now()), playlistID); err != nil {
			return fmt.Errorf("update playlist: %w", err)
		}
		return nil
	})
}

func ownsPlaylist(ctx context.Context, q querier, userID, playlistID string) error {
	_, err := scanPlaylist(q.QueryRowContext(ctx, selectPlaylistSQL, playlistID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return library.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select playlist: %w", err)
	}
	return nil
}

func (s *LibraryStore) playlistVideos(ctx context.Context, q querier, playlistID string, limit int) ([]library.PlaylistVideo, error) {
	rows, err := q.QueryContext(ctx, selectPlaylistVideosSQL, playlistID, limit)
	if err != nil {
		return nil, fmt.Errorf("select playlist videos: %w", err)
	}
	defer rows.Close()

	videos := []library.PlaylistVideo{}
	for rows.Next() {
		var v library.PlaylistVideo
		var added int64
		if err := rows.Scan(&v.VideoID, &v.Title, &v.Thumbnail, &v.ChannelTitle, &v.DurationSeconds, &v.Position, &added); err != nil {
			return nil, fmt.Errorf("scan playlist video: %w", err)
		}
		v.AddedAt = fromMillis(added)
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func scanPlaylist(s scanner) (library.Playlist, error) {
	var p library.Playlist
	var created, updated int64
	if err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Thumbnail, &p.IsPublic,
		&created, &updated, &p.VideoCount); err != nil {
		return library.Playlist{}, err
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

// Tags

func (s *LibraryStore) CreateTag(ctx context.Context, userID, name, color string) (library.Tag, error) {
	name, err := library.Name(name)
	if err != nil {
		return library.Tag{}, err
	}
	if color, err = library.Color(color); err != nil {
		return library.Tag{}, err
	}
	if _, err := s.TagByName(ctx, userID, name); err == nil {
		return library.Tag{}, library.ErrExists
	} else if !errors.Is(err, library.ErrNotFound) {
		return library.Tag{}, err
	}

	id, err := library.NewID()
	if err != nil {
		return library.Tag{}, err
	}
	now := s.now()
	if _, err := s.db.ExecContext(ctx, insertTagSQL, id, userID, name, color, millis(now)); err != nil {
		return library.Tag{}, fmt.Errorf("insert tag: %w", err)
	}
	return library.Tag{ID: id, UserID: userID, Name: name, Color: color, Items: []library.TaggedItem{}, CreatedAt: fromMillis(millis(now))}, nil
}

// ListTags returns the user's tags, newest first, each with its item count and the
// TagPreviewSize most recently tagged items.
func (s *LibraryStore) ListTags(ctx context.Context, userID string) ([]library.Tag, error) {
	tags, err := s.queryTags(ctx, selectTagsSQL, userID)
	if err != nil {
		return nil, err
	}
	for i := range tags {
		if tags[i].Items, err = s.taggedItems(ctx, tags[i].ID, library.TagPreviewSize); err != nil {
			return nil, err
		}
	}
	return tags, nil
}

func (s *LibraryStore) GetTag(ctx context.Context, userID, id string) (library.Tag, error) {
	return s.tagRow(ctx, selectTagSQL, id, userID)
}

// TagByName looks a tag up by its exact name.
func (s *LibraryStore) TagByName(ctx context.Context, userID, name string) (library.Tag, error) {
	return s.tagRow(ctx, selectTagByNameSQL, name, userID)
}

func (s *LibraryStore) UpdateTag(ctx context.Context, userID, id string, u library.TagUpdate) (library.Tag, error) {
	t, err := s.GetTag(ctx, userID, id)
	if err != nil {
		return library.Tag{}, err
	}
	if u.Name != nil {
		name, err := library.Name(*u.Name)
		if err != nil {
			return library.Tag{}, err
		}
		if other, err := s.TagByName(ctx, userID, name); err == nil && other.ID != id {
			return library.Tag{}, library.ErrExists
		}
		t.Name = name
	}
	if u.Color != nil {
		if t.Color, err = library.Color(*u.Color); err != nil {
			return library.Tag{}, err
		}
	}
	if _, err := s.db.ExecContext(ctx, updateTagSQL, t.Name, t.Color, id, userID); err != nil {
		return library.Tag{}, fmt.Errorf("update tag: %w", err)
	}
	return t, nil
}

// DeleteTag removes the tag and detaches it from every item.
func (s *LibraryStore) DeleteTag(ctx context.Context, userID, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, deleteTagSQL, id, userID)
		if err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		if err := expectRow(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteTagItemsSQL, id); err != nil {
			return fmt.Errorf("delete tagged items: %w", err)
		}
		return nil
	})
}

// TagItem attaches item.TagID to the item.
func (s *LibraryStore) TagItem(ctx context.Context, userID string, item library.TaggedItem) (library.TaggedItem, error) {
	if item.ItemID == "" {
		return library.TaggedItem{}, fmt.Errorf("%w: item id is required", library.ErrInvalid)
	}
	itemType, err := library.ParseItemType(string(item.ItemType))
	if err != nil {
		return library.TaggedItem{}, err
	}
	item.ItemType = itemType

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ownsTag(ctx, tx, userID, item.TagID); err != nil {
			return err
		}
		var one int
		err := tx.QueryRowContext(ctx, taggedItemExistsSQL, item.TagID, item.ItemID, string(item.ItemType)).Scan(&one)
		if err == nil {
			return library.ErrExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("select tagged item: %w", err)
		}
		now := s.now()
		item.CreatedAt = fromMillis(millis(now))
		if _, err := tx.ExecContext(ctx, insertTaggedItemSQL, item.TagID, item.ItemID, string(item.ItemType),
			item.Title, item.Thumbnail, millis(now)); err != nil {
			return fmt.Errorf("insert tagged item: %w", err)
		}
		return nil
	})
	if err != nil {
		return library.TaggedItem{}, err
	}
	return item, nil
}

func (s *LibraryStore) UntagItem(ctx context.Context, userID, tagID, itemID string, itemType library.ItemType) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ownsTag(ctx, tx, userID, tagID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, deleteTaggedItemSQL, tagID, itemID, string(itemType))
		if err != nil {
			return fmt.Errorf("delete tagged item: %w", err)
		}
		return expectRow(res)
	})
}

// TagsForItem returns the user's tags attached to the item, by name.
func (s *LibraryStore) TagsForItem(ctx context.Context, userID, itemID string, itemType library.ItemType) ([]library.Tag, error) {
	return s.queryTags(ctx, selectTagsForItemSQL, userID, itemID, string(itemType))
}

func ownsTag(ctx context.Context, q querier, userID, tagID string) error {
	_, err := scanTag(q.QueryRowContext(ctx, selectTagSQL, tagID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return library.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select tag: %w", err)
	}
	return nil
}

func (s *LibraryStore) tagRow(ctx context.Context, query string, args ...any) (library.Tag, error) {
	t, err := scanTag(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return library.Tag{}, library.ErrNotFound
	}
	if err != nil {
		return library.Tag{}, fmt.Errorf("select tag: %w", err)
	}
	return t, nil
}

func (s *LibraryStore) queryTags(ctx context.Context, query string, args ...any) ([]library.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select tags: %w", err)
	}
	defer rows.Close()

	tags := []library.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *LibraryStore) taggedItems(ctx context.Context, tagID string, limit int) ([]library.TaggedItem, error) {
	rows, err := s.db.QueryContext(ctx, selectTaggedItemsSQL, tagID, limit)
	if err != nil {
		return nil, fmt.Errorf("select tagged items: %w", err)
	}
	defer rows.Close()

	items := []library.TaggedItem{}
	for rows.Next() {
		var it library.TaggedItem
		var itemType string
		var created int64
		if err := rows.Scan(&it.TagID, &it.ItemID, &itemType, &it.Title, &it.Thumbnail, &created); err != nil {
			return nil, fmt.Errorf("scan tagged item: %w", err)
		}
		it.ItemType = library.ItemType(itemType)
		it.CreatedAt = fromMillis(created)
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanTag(s scanner) (library.Tag, error) {
	var t library.Tag
	var created int64
	if err := s.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &created, &t.ItemCount); err != nil {
		return library.Tag{}, err
	}
	t.CreatedAt = fromMillis(created)
	return t, nil
}

// Watch later

func (s *LibraryStore) AddWatchLater(ctx context.Context, userID string, item library.WatchLaterItem) (library.WatchLaterItem, error) {
	if item.VideoID == "" {
		return library.WatchLaterItem{}, fmt.Errorf("%w: video id is required", library.ErrInvalid)
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, watchLaterExistsSQL, userID, item.VideoID).Scan(&one)
		if err == nil {
			return library.ErrExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("select watch later: %w", err)
		}
		now := s.now()
		item.AddedAt = fromMillis(millis(now))
		if _, err := tx.ExecContext(ctx, insertWatchLaterSQL, userID, item.VideoID, item.Title, item.Thumbnail,
			item.ChannelTitle, item.DurationSeconds, millis(now)); err != nil {
			return fmt.Errorf("insert watch later: %w", err)
		}
		return nil
	})
	if err != nil {
		return library.WatchLaterItem{}, err
	}
	return item, nil
}

// ListWatchLater returns saved videos, most recently added first.
func (s *LibraryStore) ListWatchLater(ctx context.Context, userID string) ([]library.WatchLaterItem, error) {
	rows, err := s.db.QueryContext(ctx, selectWatchLaterSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select watch later: %w", err)
	}
	defer rows.Close()

	items := []library.WatchLaterItem{}
	for rows.Next() {
		var it library.WatchLaterItem
		var added int64
		if err := rows.Scan(&it.VideoID, &it.Title, &it.Thumbnail, &it.ChannelTitle, &it.DurationSeconds, &added); err != nil {
			return nil, fmt.Errorf("scan watch later: %w", err)
		}
		it.AddedAt = fromMillis(added)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *LibraryStore) RemoveWatchLater(ctx context.Context, userID, videoID string) error {
	res, err := s.db.ExecContext(ctx, deleteWatchLaterSQL, userID, videoID)
	if err != nil {
		return fmt.Errorf("delete watch later: %w", err)
	}
	return expectRow(res)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn in a transaction. Inside fn every statement must go through tx: the
// pool holds a single connection.
func (s *LibraryStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return library.ErrNotFound
	}
	return nil
}
