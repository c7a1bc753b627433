// Package drive saves a session's notes as a markdown file in the user's Google Drive,
// creating the file on first export and updating it afterwards.
package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/deepfocus-cli/notes"
	"github.com/user/deepfocus-cli/pkg/export"
)

const (
	// FolderName is the Drive folder all exports go to.
	FolderName = "DeepFocus Notes"
	// VideoIDProperty is the app property tagging a file with its video.
	VideoIDProperty = "deepfocusVideoId"

	folderMimeType   = "application/vnd.google-apps.folder"
	markdownMimeType = "text/markdown"
)

var (
	ErrUnauthenticated = errors.New("drive: not signed in")
	ErrMissingVideoID  = errors.New("drive: video id is required")
)

// File describes a markdown file to create.
type File struct {
	Name     string
	FolderID string
	VideoID  string
	Content  string
}

// FileService is the subset of Google Drive used by the exporter.
type FileService interface {
	// FindFolder returns the id of a non-trashed folder with the given name, or "".
	FindFolder(ctx context.Context, name string) (string, error)
	CreateFolder(ctx context.Context, name string) (string, error)
	// FindVideoFile returns the id of a non-trashed file in folderID whose name contains
	// videoID or whose VideoIDProperty equals videoID, or "".
	FindVideoFile(ctx context.Context, folderID, videoID string) (string, error)
	CreateFile(ctx context.Context, f File) (string, error)
	UpdateFile(ctx context.Context, fileID string, f File) error
}

// Request is one export of the current note log.
type Request struct {
	VideoID    string
	VideoTitle string
	Notes      []notes.Note
}

// Result reports the stored file.
type Result struct {
	Success bool   `json:"success"`
	FileID  string `json:"fileId"`
	Created bool   `json:"created"`
}

// Exporter performs create-or-update exports. A nil FileService means no user is signed
// in and every export fails with ErrUnauthenticated before anything is sent.
type Exporter struct {
	files  FileService
	now    func() time.Time
	logger zerolog.Logger
}

// NewExporter creates an exporter over files.
func NewExporter(files FileService, logger zerolog.Logger) *Exporter {
	return &Exporter{files: files, now: time.Now, logger: logger}
}

// Export finds or creates FolderName, then updates the video's existing file or creates
// "<title> - <YYYY-MM-DD>.md". A file matches when its name contains the video id
// anywhere, so later exports of the same video overwrite the first file regardless of
// date.
func (e *Exporter) Export(ctx context.Context, req Request) (Result, error) {
	if e.files == nil {
		return Result{}, ErrUnauthenticated
	}
	if req.VideoID == "" {
		return Result{}, ErrMissingVideoID
	}
	if len(req.Notes) == 0 {
		return Result{}, export.ErrNoNotes
	}

	folderID, err := e.files.FindFolder(ctx, FolderName)
	if err != nil {
		return Result{}, fmt.Errorf("find folder: %w", err)
	}
	if folderID == "" {
		if folderID, err = e.files.CreateFolder(ctx, FolderName); err != nil {
			return Result{}, fmt.Errorf("create folder: %w", err)
		}
		e.logger.Info().Str("folder_id", folderID).Msg("created drive folder")
	}

	date := e.now().UTC().Format("2006-01-02")
	title := req.VideoTitle
	if title == "" {
		title = "Video " + req.VideoID
	}
	f := File{
		Name:     fmt.Sprintf("%s - %s.md", title, date),
		FolderID: folderID,
		VideoID:  req.VideoID,
		Content:  BuildMarkdown(req.VideoID, title, date, req.Notes),
	}

	existing, err := e.files.FindVideoFile(ctx, folderID, req.VideoID)
	if err != nil {
		return Result{}, fmt.Errorf("find existing file: %w", err)
	}
	if existing != "" {
		if err := e.files.UpdateFile(ctx, existing, f); err != nil {
			return Result{}, fmt.Errorf("update file: %w", err)
		}
		e.logger.Info().Str("file_id", existing).Str("video_id", req.VideoID).Msg("updated drive notes")
		return Result{Success: true, FileID: existing}, nil
	}

	id, err := e.files.CreateFile(ctx, f)
	if err != nil {
		return Result{}, fmt.Errorf("create file: %w", err)
	}
	e.logger.Info().Str("file_id", id).Str("video_id", req.VideoID).Msg("created drive notes")
	return Result{Success: true, FileID: id, Created: true}, nil
}

// BuildMarkdown renders the Drive document.
func BuildMarkdown(videoID, title, date string, ns []notes.Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Video ID:** %s\n", videoID)
	fmt.Fprintf(&b, "**Date:** %s\n", date)
	fmt.Fprintf(&b, "**YouTube Link:** https://www.youtube.com/watch?v=%s\n\n", videoID)
	b.WriteString("---\n\n## Notes\n\n")
	b.WriteString(export.BulletList(ns))
	b.WriteString("\n\n---\n*Notes captured with DeepFocus*\n")
	return b.String()
}
