// Package export turns a session's note log into external artifacts. This file builds
// the Obsidian note and its obsidian:// deep link; package drive uploads to Google Drive.
package export

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/user/deepfocus-cli/notes"
)

// MaxTags caps the number of derived tags.
const MaxTags = 5

// TagVocabulary is scanned in order; a term becomes a tag when any note mentions it.
var TagVocabulary = []string{"concept", "architecture", "scaling", "system", "design", "algorithm", "data", "performance"}

// ErrNoNotes is returned when exporting an empty note log.
var ErrNoNotes = errors.New("export: no notes to export")

// titleUnsafe matches everything that is not a letter, digit or space.
var titleUnsafe = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// ObsidianNote is a rendered note ready to be opened in Obsidian.
type ObsidianNote struct {
	Title   string
	Content string
	Tags    []string
}

// BuildObsidianNote renders notes as a lecture-notes document with front matter.
// The title is "Lecture Notes - <date> - <first 40 chars of the first note>".
func BuildObsidianNote(videoID string, ns []notes.Note, now time.Time) (ObsidianNote, error) {
	if len(ns) == 0 {
		return ObsidianNote{}, ErrNoNotes
	}
	date := now.UTC().Format("2006-01-02")

	preview := ns[0].Text
	if r := []rune(preview); len(r) > 40 {
		preview = string(r[:40])
	}
	preview = titleUnsafe.ReplaceAllString(preview, "")
	title := fmt.Sprintf("Lecture Notes - %s - %s", date, preview)

	tags := DeriveTags(ns)
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = `"` + t + `"`
	}
	if videoID == "" {
		videoID = "unknown"
	}

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", title)
	fmt.Fprintf(&b, "date: %s\n", date)
	fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(quoted, ", "))
	b.WriteString("type: lecture-notes\n")
	fmt.Fprintf(&b, "videoId: %s\n", videoID)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n## Timestamps & Notes\n\n", title)
	b.WriteString(BulletList(ns))
	b.WriteString("\n")

	return ObsidianNote{Title: title, Content: b.String(), Tags: tags}, nil
}

// DeriveTags returns vocabulary terms found case-insensitively in any note text, in
// vocabulary order, at most MaxTags.
func DeriveTags(ns []notes.Note) []string {
	texts := make([]string, len(ns))
	for i, n := range ns {
		texts[i] = strings.ToLower(n.Text)
	}

	tags := []string{}
	for _, term := range TagVocabulary {
		for _, text := range texts {
			if strings.Contains(text, term) {
				tags = append(tags, term)
				break
			}
		}
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

// ObsidianURI returns obsidian://new?name=...&content=... with both values encoded like
// encodeURIComponent.
func ObsidianURI(n ObsidianNote) string {
	return "obsidian://new?name=" + encodeComponent(n.Title) + "&content=" + encodeComponent(n.Content)
}

// BulletList renders "- **[mm:ss]** text" lines joined by newlines.
func BulletList(ns []notes.Note) string {
	lines := make([]string, len(ns))
	for i, n := range ns {
		lines[i] = fmt.Sprintf("- **[%s]** %s", n.DisplayTimestamp, n.Text)
	}
	return strings.Join(lines, "\n")
}

// encodeComponent matches JavaScript's encodeURIComponent, which leaves
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped and encodes space as %20.
func encodeComponent(s string) string {
	e := url.QueryEscape(s)
	e = strings.ReplaceAll(e, "+", "%20")
	for _, c := range []string{"!", "~", "*", "'", "(", ")"} {
		e = strings.ReplaceAll(e, url.QueryEscape(c), c)
	}
	return e
}
