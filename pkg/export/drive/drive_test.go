package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/deepfocus-cli/notes"
	"github.com/user/deepfocus-cli/pkg/export"
)

type storedFile struct {
	File
	id     string
	folder bool
}

// memFiles mimics the Drive queries the exporter issues.
type memFiles struct {
	mu     sync.Mutex
	files  []storedFile
	calls  []string
	failOn string
	nextID int
}

func (m *memFiles) record(call string) error {
	m.calls = append(m.calls, call)
	if m.failOn == call {
		return errors.New("drive unavailable")
	}
	return nil
}

func (m *memFiles) newID() string {
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID)
}

func (m *memFiles) FindFolder(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindFolder"); err != nil {
		return "", err
	}
	for _, f := range m.files {
		if f.folder && f.Name == name {
			return f.id, nil
		}
	}
	return "", nil
}

func (m *memFiles) CreateFolder(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateFolder"); err != nil {
		return "", err
	}
	id := m.newID()
	m.files = append(m.files, storedFile{File: File{Name: name}, id: id, folder: true})
	return id, nil
}

func (m *memFiles) FindVideoFile(_ context.Context, folderID, videoID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindVideoFile"); err != nil {
		return "", err
	}
	for _, f := range m.files {
		if f.folder || f.FolderID != folderID {
			continue
		}
		if strings.Contains(f.Name, videoID) || f.VideoID == videoID {
			return f.id, nil
		}
	}
	return "", nil
}

func (m *memFiles) CreateFile(_ context.Context, f File) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateFile"); err != nil {
		return "", err
	}
	id := m.newID()
	m.files = append(m.files, storedFile{File: f, id: id})
	return id, nil
}

func (m *memFiles) UpdateFile(_ context.Context, fileID string, f File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateFile"); err != nil {
		return err
	}
	for i := range m.files {
		if m.files[i].id == fileID {
			m.files[i].Content = f.Content
			m.files[i].VideoID = f.VideoID
			return nil
		}
	}
	return errors.New("no such file")
}

func (m *memFiles) documents() []storedFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storedFile
	for _, f := range m.files {
		if !f.folder {
			out = append(out, f)
		}
	}
	return out
}

func newTestExporter(files FileService, now time.Time) *Exporter {
	e := NewExporter(files, zerolog.Nop())
	e.now = func() time.Time { return now }
	return e
}

var testNotes = []notes.Note{
	{DisplayTimestamp: "00:12", TimestampSeconds: 12.4, Text: "intro"},
	{DisplayTimestamp: "02:05", TimestampSeconds: 125, Text: "main idea"},
}

func TestExportTwiceKeepsOneFile(t *testing.T) {
	files := &memFiles{}
	e := newTestExporter(files, time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := e.Export(ctx, Request{VideoID: "dQw4w9WgXcQ", VideoTitle: "Distributed Systems", Notes: testNotes[:1]})
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.True(t, first.Created)

	second, err := e.Export(ctx, Request{VideoID: "dQw4w9WgXcQ", VideoTitle: "Distributed Systems", Notes: testNotes})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.FileID, second.FileID)

	docs := files.documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "Distributed Systems - 2026-10-16.md", docs[0].Name)
	assert.Contains(t, docs[0].Content, "- **[02:05]** main idea")
}

func TestExportOnLaterDayOverwrites(t *testing.T) {
	files := &memFiles{}
	ctx := context.Background()

	_, err := newTestExporter(files, time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)).
		Export(ctx, Request{VideoID: "vid", Notes: testNotes})
	require.NoError(t, err)

	res, err := newTestExporter(files, time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)).
		Export(ctx, Request{VideoID: "vid", Notes: testNotes})
	require.NoError(t, err)
	assert.False(t, res.Created)

	docs := files.documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "Video vid - 2026-10-16.md", docs[0].Name)
	assert.Contains(t, docs[0].Content, "**Date:** 2026-10-17")
}

func TestExportReusesFolder(t *testing.T) {
	files := &memFiles{}
	e := newTestExporter(files, time.Now())
	ctx := context.Background()

	_, err := e.Export(ctx, Request{VideoID: "a", Notes: testNotes})
	require.NoError(t, err)
	_, err = e.Export(ctx, Request{VideoID: "b", Notes: testNotes})
	require.NoError(t, err)

	folders := 0
	for _, c := range files.calls {
		if c == "CreateFolder" {
			folders++
		}
	}
	assert.Equal(t, 1, folders)
	assert.Len(t, files.documents(), 2)
}

func TestExportPreconditions(t *testing.T) {
	ctx := context.Background()

	_, err := NewExporter(nil, zerolog.Nop()).Export(ctx, Request{VideoID: "v", Notes: testNotes})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	files := &memFiles{}
	e := newTestExporter(files, time.Now())
	_, err = e.Export(ctx, Request{VideoID: "v"})
	assert.ErrorIs(t, err, export.ErrNoNotes)
	_, err = e.Export(ctx, Request{Notes: testNotes})
	assert.ErrorIs(t, err, ErrMissingVideoID)
	assert.Empty(t, files.calls)
}

func TestExportCreateFailure(t *testing.T) {
	files := &memFiles{failOn: "CreateFile"}
	res, err := newTestExporter(files, time.Now()).Export(context.Background(), Request{VideoID: "v", Notes: testNotes})
	assert.Error(t, err)
	assert.False(t, res.Success)
}

func TestBuildMarkdown(t *testing.T) {
	got := BuildMarkdown("vid", "Lecture", "2026-10-16", testNotes)
	want := `# Lecture

**Video ID:** vid
**Date:** 2026-10-16
**YouTube Link:** https://www.youtube.com/watch?v=vid

---

## Notes

- **[00:12]** intro
- **[02:05]** main idea

---
*Notes captured with DeepFocus*
`
	assert.Equal(t, want, got)
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `it\'s`, escapeQuery("it's"))
	assert.Equal(t, `a\\b`, escapeQuery(`a\b`))
}
