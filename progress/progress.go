// Package progress records how far a user got through a video and persists it to a
// watch-history store keyed by (user, video).
package progress

import (
	"context"
	"errors"
	"math"
	"time"
)

// CompletionThreshold is the watched fraction at which a video counts as completed.
const CompletionThreshold = 0.9

// DefaultListLimit is used when ListOptions.Limit is not positive.
const DefaultListLimit = 20

var (
	ErrNotFound       = errors.New("progress: record not found")
	ErrMissingVideoID = errors.New("progress: video id is required")
)

// Record is one watch-history row.
type Record struct {
	UserID          string    `json:"userId"`
	VideoID         string    `json:"videoId"`
	VideoTitle      string    `json:"videoTitle,omitempty"`
	Thumbnail       string    `json:"thumbnail,omitempty"`
	ChannelName     string    `json:"channelName,omitempty"`
	ProgressSeconds int       `json:"progress"`
	DurationSeconds int       `json:"duration"`
	Completed       bool      `json:"completed"`
	LastWatchedAt   time.Time `json:"lastWatched"`
}

// Update is an upsert request. Empty metadata fields leave stored values untouched.
type Update struct {
	VideoID         string `json:"videoId"`
	VideoTitle      string `json:"videoTitle,omitempty"`
	Thumbnail       string `json:"thumbnail,omitempty"`
	ChannelName     string `json:"channelName,omitempty"`
	ProgressSeconds int    `json:"progress"`
	DurationSeconds int    `json:"duration"`
}

// Validate checks the request before it is sent or stored.
func (u Update) Validate() error {
	if u.VideoID == "" {
		return ErrMissingVideoID
	}
	return nil
}

// Completed reports the completion flag for this update.
func (u Update) Completed() bool {
	return IsCompleted(float64(u.ProgressSeconds), float64(u.DurationSeconds))
}

// ListOptions filters List.
type ListOptions struct {
	Limit            int
	IncludeCompleted bool
}

// EffectiveLimit returns Limit or DefaultListLimit.
func (o ListOptions) EffectiveLimit() int {
	if o.Limit <= 0 {
		return DefaultListLimit
	}
	return o.Limit
}

// Store is the external watch-history store. Upsert must be idempotent per
// (userID, VideoID); concurrent upserts resolve as last write wins.
type Store interface {
	Upsert(ctx context.Context, userID string, u Update) (Record, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]Record, error)
	// Get returns one video's record or ErrNotFound.
	Get(ctx context.Context, userID, videoID string) (Record, error)
	Delete(ctx context.Context, userID, videoID string) error
}

// IsCompleted reports whether progress/duration reached CompletionThreshold. An unknown
// duration is never completed.
func IsCompleted(progress, duration float64) bool {
	if duration <= 0 {
		return false
	}
	return progress/duration >= CompletionThreshold
}

// floorSeconds converts a sampled position to whole seconds.
func floorSeconds(v float64) int {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v))
}
