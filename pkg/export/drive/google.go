package drive

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleFiles implements FileService with the Drive v3 API.
type GoogleFiles struct {
	svc *gdrive.Service
}

// NewGoogleFiles creates a Drive client authorized by ts.
func NewGoogleFiles(ctx context.Context, ts oauth2.TokenSource) (*GoogleFiles, error) {
	svc, err := gdrive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &GoogleFiles{svc: svc}, nil
}

func (g *GoogleFiles) FindFolder(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escapeQuery(name), folderMimeType)
	return g.first(ctx, q)
}

func (g *GoogleFiles) CreateFolder(ctx context.Context, name string) (string, error) {
	f, err := g.svc.Files.Create(&gdrive.File{Name: name, MimeType: folderMimeType}).
		Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

func (g *GoogleFiles) FindVideoFile(ctx context.Context, folderID, videoID string) (string, error) {
	v := escapeQuery(videoID)
	q := fmt.Sprintf(
		"(name contains '%s' or appProperties has { key='%s' and value='%s' }) and '%s' in parents and trashed=false",
		v, VideoIDProperty, v, escapeQuery(folderID),
	)
	return g.first(ctx, q)
}

func (g *GoogleFiles) CreateFile(ctx context.Context, f File) (string, error) {
	meta := &gdrive.File{
		Name:          f.Name,
		Parents:       []string{f.FolderID},
		MimeType:      markdownMimeType,
		AppProperties: map[string]string{VideoIDProperty: f.VideoID},
	}
	created, err := g.svc.Files.Create(meta).
		Media(strings.NewReader(f.Content), googleapi.ContentType(markdownMimeType)).
		Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// UpdateFile replaces the content. The name is left alone so the file keeps the date of
// its first export.
func (g *GoogleFiles) UpdateFile(ctx context.Context, fileID string, f File) error {
	meta := &gdrive.File{AppProperties: map[string]string{VideoIDProperty: f.VideoID}}
	_, err := g.svc.Files.Update(fileID, meta).
		Media(strings.NewReader(f.Content), googleapi.ContentType(markdownMimeType)).
		Fields("id").Context(ctx).Do()
	return err
}

func (g *GoogleFiles) first(ctx context.Context, q string) (string, error) {
	list, err := g.svc.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// escapeQuery escapes a value for a single-quoted Drive query string.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
