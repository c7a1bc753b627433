package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/deepfocus-cli/library"
)

func newLibraryStore(t *testing.T) *LibraryStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "deepfocus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewLibraryStore(db)
	base := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
	return s
}

func TestPlaylistLifecycle(t *testing.T) {
	s := newLibraryStore(t)
	ctx := context.Background()

	_, err := s.CreatePlaylist(ctx, "u1", "   ", "", false)
	assert.ErrorIs(t, err, library.ErrInvalid)

	p, err := s.CreatePlaylist(ctx, "u1", "  Distributed systems ", "MIT 6.824", true)
	require.NoError(t, err)
	assert.Equal(t, "Distributed systems", p.Name)
	assert.NotEmpty(t, p.ID)

	_, err = s.AddPlaylistVideo(ctx, "u1", p.ID, library.PlaylistVideo{VideoID: "aaaaaaaaaaa", Title: "Raft", Thumbnail: "https://img/raft.jpg"})
	require.NoError(t, err)
	second, err := s.AddPlaylistVideo(ctx, "u1", p.ID, library.PlaylistVideo{VideoID: "bbbbbbbbbbb", Title: "Paxos", Thumbnail: "https://img/paxos.jpg"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)
	_, err = s.AddPlaylistVideo(ctx, "u1", p.ID, library.PlaylistVideo{VideoID: "ccccccccccc", Title: "Zab"})
	require.NoError(t, err)

	_, err = s.AddPlaylistVideo(ctx, "u1", p.ID, library.PlaylistVideo{VideoID: "aaaaaaaaaaa", Title: "Raft"})
	assert.ErrorIs(t, err, library.ErrExists)
	_, err = s.AddPlaylistVideo(ctx, "u1", p.ID, library.PlaylistVideo{VideoID: "ddddddddddd"})
	assert.ErrorIs(t, err, library.ErrInvalid)
	_, err = s.AddPlaylistVideo(ctx, "u2", p.ID, library.PlaylistVideo{VideoID: "ddddddddddd", Title: "x"})
	assert.ErrorIs(t, err, library.ErrNotFound)

	got, err := s.GetPlaylist(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.VideoCount)
	assert.Equal(t, "https://img/raft.jpg", got.Thumbnail, "the first video sets the thumbnail")
	require.Len(t, got.Videos, 3)
	assert.Equal(t, []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc"}, videoIDs(got.Videos))

	require.NoError(t, s.RemovePlaylistVideo(ctx, "u1", p.ID, "aaaaaaaaaaa"))
	assert.ErrorIs(t, s.RemovePlaylistVideo(ctx, "u1", p.ID, "aaaaaaaaaaa"), library.ErrNotFound)

	got, err = s.GetPlaylist(ctx, "u1", p.ID)
	require.NoError(t, err)
	require.Len(t, got.Videos, 2)
	assert.Equal(t, 0, got.Videos[0].Position)
	assert.Equal(t, 1, got.Videos[1].Position)

	// A new video goes after the existing ones.
	added, err := s.AddPlaylistVideo(ctx, "u1", p.ID, library.PlaylistVideo{VideoID: "eeeeeeeeeee", Title: "Chain replication"})
	require.NoError(t, err)
	assert.Equal(t, 2, added.Position)

	name, public := "Consensus", false
	updated, err := s.UpdatePlaylist(ctx, "u1", p.ID, library.PlaylistUpdate{Name: &name, IsPublic: &public})
	require.NoError(t, err)
	assert.Equal(t, "Consensus", updated.Name)
	assert.Equal(t, "MIT 6.824", updated.Description)
	assert.False(t, updated.IsPublic)

	_, err = s.GetPlaylist(ctx, "u2", p.ID)
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestListPlaylistsPreviewsAndOrders(t *testing.T) {
	s := newLibraryStore(t)
	ctx := context.Background()

	older, err := s.CreatePlaylist(ctx, "u1", "Older", "", false)
	require.NoError(t, err)
	newer, err := s.CreatePlaylist(ctx, "u1", "Newer", "", false)
	require.NoError(t, err)
	_, err = s.CreatePlaylist(ctx, "u2", "Someone else's", "", false)
	require.NoError(t, err)

	for _, id := range []string{"v0000000001", "v0000000002", "v0000000003", "v0000000004", "v0000000005", "v0000000006"} {
		_, err := s.AddPlaylistVideo(ctx, "u1", older.ID, library.PlaylistVideo{VideoID: id, Title: id})
		require.NoError(t, err)
	}

	playlists, err := s.ListPlaylists(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, playlists, 2)
	assert.Equal(t, older.ID, playlists[0].ID, "adding videos bumps the playlist")
	assert.Equal(t, 6, playlists[0].VideoCount)
	assert.Len(t, playlists[0].Videos, library.PlaylistPreviewSize)
	assert.Equal(t, newer.ID, playlists[1].ID)
	assert.Empty(t, playlists[1].Videos)
}

func TestDeletePlaylistRemovesVideosAndTags(t *testing.T) {
	s := newLibraryStore(t)
	ctx := context.Background()

	p, err := s.CreatePlaylist(ctx, "u1", "Queue", "", false)
	require.NoError(t, err)
	_, err = s.AddPlaylistVideo(ctx, "u1", p.ID, library.PlaylistVideo{VideoID: "aaaaaaaaaaa", Title: "Raft"})
	require.NoError(t, err)
	tag, err := s.CreateTag(ctx, "u1", "exam", "")
	require.NoError(t, err)
	_, err = s.TagItem(ctx, "u1", library.TaggedItem{TagID: tag.ID, ItemID: p.ID, ItemType: library.ItemPlaylist})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeletePlaylist(ctx, "u2", p.ID), library.ErrNotFound)
	require.NoError(t, s.DeletePlaylist(ctx, "u1", p.ID))
	assert.ErrorIs(t, s.DeletePlaylist(ctx, "u1", p.ID), library.ErrNotFound)

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM playlist_videos").Scan(&n))
	assert.Zero(t, n)

	tags, err := s.TagsForItem(ctx, "u1", p.ID, library.ItemPlaylist)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTags(t *testing.T) {
	s := newLibraryStore(t)
	ctx := context.Background()

	exam, err := s.CreateTag(ctx, "u1", " exam ", "")
	require.NoError(t, err)
	assert.Equal(t, "exam", exam.Name)
	assert.Equal(t, library.DefaultTagColor, exam.Color)

	_, err = s.CreateTag(ctx, "u1", "exam", "#fff")
	assert.ErrorIs(t, err, library.ErrExists)
	_, err = s.CreateTag(ctx, "u2", "exam", "#fff")
	require.NoError(t, err, "names are unique per user")
	_, err = s.CreateTag(ctx, "u1", "bad", "blue")
	assert.ErrorIs(t, err, library.ErrInvalid)

	later, err := s.CreateTag(ctx, "u1", "later", "#22C55E")
	require.NoError(t, err)
	assert.Equal(t, "#22c55e", later.Color)

	for i, id := range []string{"v0000000001", "v0000000002", "v0000000003", "v0000000004", "v0000000005", "v0000000006"} {
		_, err := s.TagItem(ctx, "u1", library.TaggedItem{TagID: exam.ID, ItemID: id, Title: id})
		require.NoError(t, err, i)
	}
	_, err = s.TagItem(ctx, "u1", library.TaggedItem{TagID: exam.ID, ItemID: "v0000000001"})
	assert.ErrorIs(t, err, library.ErrExists)
	_, err = s.TagItem(ctx, "u1", library.TaggedItem{TagID: exam.ID, ItemID: "v0000000001", ItemType: library.ItemChannel})
	require.NoError(t, err, "the same id with another type is a different item")
	_, err = s.TagItem(ctx, "u2", library.TaggedItem{TagID: exam.ID, ItemID: "v0000000009"})
	assert.ErrorIs(t, err, library.ErrNotFound)
	_, err = s.TagItem(ctx, "u1", library.TaggedItem{TagID: exam.ID, ItemID: "x", ItemType: "comment"})
	assert.ErrorIs(t, err, library.ErrInvalid)

	tags, err := s.ListTags(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "later", tags[0].Name, "newest first")
	assert.Equal(t, 7, tags[1].ItemCount)
	require.Len(t, tags[1].Items, library.TagPreviewSize)
	assert.Equal(t, library.ItemChannel, tags[1].Items[0].ItemType, "most recently tagged first")

	_, err = s.TagItem(ctx, "u1", library.TaggedItem{TagID: later.ID, ItemID: "v0000000001"})
	require.NoError(t, err)
	forItem, err := s.TagsForItem(ctx, "u1", "v0000000001", library.ItemVideo)
	require.NoError(t, err)
	require.Len(t, forItem, 2)
	assert.Equal(t, "exam", forItem[0].Name)

	require.NoError(t, s.UntagItem(ctx, "u1", later.ID, "v0000000001", library.ItemVideo))
	assert.ErrorIs(t, s.UntagItem(ctx, "u1", later.ID, "v0000000001", library.ItemVideo), library.ErrNotFound)

	clash := "exam"
	_, err = s.UpdateTag(ctx, "u1", later.ID, library.TagUpdate{Name: &clash})
	assert.ErrorIs(t, err, library.ErrExists)
	name, color := "revisit", "#000"
	renamed, err := s.UpdateTag(ctx, "u1", later.ID, library.TagUpdate{Name: &name, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "revisit", renamed.Name)
	assert.Equal(t, "#000", renamed.Color)

	byName, err := s.TagByName(ctx, "u1", "revisit")
	require.NoError(t, err)
	assert.Equal(t, later.ID, byName.ID)

	require.NoError(t, s.DeleteTag(ctx, "u1", exam.ID))
	assert.ErrorIs(t, s.DeleteTag(ctx, "u1", exam.ID), library.ErrNotFound)
	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM tagged_items WHERE tag_id = ?", exam.ID).Scan(&n))
	assert.Zero(t, n)
}

func TestWatchLater(t *testing.T) {
	s := newLibraryStore(t)
	ctx := context.Background()

	_, err := s.AddWatchLater(ctx, "u1", library.WatchLaterItem{VideoID: "aaaaaaaaaaa", Title: "Raft", DurationSeconds: 600})
	require.NoError(t, err)
	_, err = s.AddWatchLater(ctx, "u1", library.WatchLaterItem{VideoID: "bbbbbbbbbbb", Title: "Paxos"})
	require.NoError(t, err)
	_, err = s.AddWatchLater(ctx, "u1", library.WatchLaterItem{VideoID: "aaaaaaaaaaa"})
	assert.ErrorIs(t, err, library.ErrExists)
	_, err = s.AddWatchLater(ctx, "u1", library.WatchLaterItem{})
	assert.ErrorIs(t, err, library.ErrInvalid)

	items, err := s.ListWatchLater(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "bbbbbbbbbbb", items[0].VideoID)
	assert.Equal(t, 600, items[1].DurationSeconds)

	empty, err := s.ListWatchLater(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.RemoveWatchLater(ctx, "u1", "aaaaaaaaaaa"))
	assert.ErrorIs(t, s.RemoveWatchLater(ctx, "u1", "aaaaaaaaaaa"), library.ErrNotFound)
}

func videoIDs(videos []library.PlaylistVideo) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.VideoID)
	}
	return out
}
