// Package library holds what a user collects outside a watch session: playlists of
// videos, coloured tags on videos, playlists and channels, and a watch-later list.
package library

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("library: not found")
	ErrExists   = errors.New("library: already exists")
	ErrInvalid  = errors.New("library: invalid input")
)

// DefaultTagColor is used when a tag is created without a colour.
const DefaultTagColor = "#6366f1"

const (
	// PlaylistPreviewSize is how many videos ListPlaylists returns per playlist.
	PlaylistPreviewSize = 4
	// TagPreviewSize is how many recently tagged items ListTags returns per tag.
	TagPreviewSize = 5
)

// ItemType is what a tag is attached to.
type ItemType string

const (
	ItemVideo    ItemType = "video"
	ItemPlaylist ItemType = "playlist"
	ItemChannel  ItemType = "channel"
)

func ParseItemType(s string) (ItemType, error) {
	switch t := ItemType(strings.ToLower(strings.TrimSpace(s))); t {
	case ItemVideo, ItemPlaylist, ItemChannel:
		return t, nil
	case "":
		return ItemVideo, nil
	default:
		return "", fmt.Errorf("%w: item type must be video, playlist or channel, got %q", ErrInvalid, s)
	}
}

type Playlist struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Thumbnail   string
	IsPublic    bool
	VideoCount  int
	// Videos is a preview from ListPlaylists and the full list from GetPlaylist.
	Videos    []PlaylistVideo
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PlaylistVideo struct {
	VideoID         string
	Title           string
	Thumbnail       string
	ChannelTitle    string
	DurationSeconds int
	Position        int
	AddedAt         time.Time
}

// PlaylistUpdate changes the non-nil fields.
type PlaylistUpdate struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

type Tag struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	ItemCount int
	// Items holds the most recently tagged items in ListTags.
	Items     []TaggedItem
	CreatedAt time.Time
}

// TagUpdate changes the non-nil fields.
type TagUpdate struct {
	Name  *string
	Color *string
}

type TaggedItem struct {
	TagID     string
	ItemID    string
	ItemType  ItemType
	Title     string
	Thumbnail string
	CreatedAt time.Time
}

type WatchLaterItem struct {
	VideoID         string
	Title           string
	Thumbnail       string
	ChannelTitle    string
	DurationSeconds int
	AddedAt         time.Time
}

// NewID returns a time-ordered identifier for playlists and tags.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Name trims s and rejects an empty result.
func Name(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalid)
	}
	return s, nil
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Color validates a #rgb or #rrggbb colour. Empty means DefaultTagColor.
func Color(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTagColor, nil
	}
	if !colorPattern.MatchString(s) {
		return "", fmt.Errorf("%w: colour must look like #6366f1, got %q", ErrInvalid, s)
	}
	return strings.ToLower(s), nil
}
