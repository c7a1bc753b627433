// Package youtube looks up video metadata with the YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/user/deepfocus-cli/pkg/timeutil"
)

var (
	ErrNoCredentials  = errors.New("youtube: no API key or sign-in available")
	ErrVideoNotFound  = errors.New("youtube: video not found")
	ErrInvalidVideoID = errors.New("youtube: not a video URL or id")
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Video is the metadata used by the watch page and progress records.
type Video struct {
	ID              string
	Title           string
	Description     string
	ChannelTitle    string
	ChannelID       string
	Thumbnail       string
	PublishedAt     time.Time
	DurationSeconds int
	ViewCount       uint64
	Tags            []string
}

// URL returns the watch URL handed to the player.
func (v Video) URL() string {
	return WatchURL(v.ID)
}

// Client fetches videos. It prefers an API key and falls back to the signed-in user.
type Client struct {
	svc *yt.Service
}

// NewClient creates a client from an API key or token source. Extra options are appended
// after the credentials.
func NewClient(ctx context.Context, apiKey string, ts oauth2.TokenSource, opts ...option.ClientOption) (*Client, error) {
	var auth option.ClientOption
	switch {
	case apiKey != "":
		auth = option.WithAPIKey(apiKey)
	case ts != nil:
		auth = option.WithTokenSource(ts)
	default:
		return nil, ErrNoCredentials
	}

	svc, err := yt.NewService(ctx, append([]option.ClientOption{auth}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Video fetches snippet, content details and statistics for id.
func (c *Client) Video(ctx context.Context, id string) (Video, error) {
	resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(id).Context(ctx).Do()
	if err != nil {
		return Video{}, fmt.Errorf("videos.list: %w", err)
	}
	if len(resp.Items) == 0 {
		return Video{}, ErrVideoNotFound
	}
	item := resp.Items[0]

	v := Video{ID: item.Id, Thumbnail: ThumbnailURL(item.Id)}
	if s := item.Snippet; s != nil {
		v.Title = s.Title
		v.Description = s.Description
		v.ChannelTitle = s.ChannelTitle
		v.ChannelID = s.ChannelId
		v.PublishedAt, _ = time.Parse(time.RFC3339, s.PublishedAt)
		if thumb := bestThumbnail(s.Thumbnails); thumb != "" {
			v.Thumbnail = thumb
		}
		v.Tags = s.Tags
		if len(v.Tags) > 10 {
			v.Tags = v.Tags[:10]
		}
	}
	if cd := item.ContentDetails; cd != nil {
		v.DurationSeconds = timeutil.ParseISODuration(cd.Duration)
	}
	if st := item.Statistics; st != nil {
		v.ViewCount = st.ViewCount
	}
	return v, nil
}

// EducationCategoryID restricts searches to the Education category.
const EducationCategoryID = "27"

const (
	DefaultSearchResults = 20
	maxSearchResults     = 50
)

// SearchOptions pages through results. MaxResults <= 0 means DefaultSearchResults.
type SearchOptions struct {
	MaxResults int
	PageToken  string
}

type SearchResult struct {
	Videos        []Video
	NextPageToken string
	TotalResults  int64
}

// Search finds educational videos matching query. Durations come from a second
// videos.list call; a failure there leaves them zero.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, errors.New("youtube: search query is required")
	}
	limit := opts.MaxResults
	if limit <= 0 {
		limit = DefaultSearchResults
	}
	if limit > maxSearchResults {
		limit = maxSearchResults
	}

	call := c.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		VideoCategoryId(EducationCategoryID).
		MaxResults(int64(limit)).
		RelevanceLanguage("en").
		SafeSearch("strict")
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return SearchResult{}, fmt.Errorf("search.list: %w", err)
	}

	out := SearchResult{NextPageToken: resp.NextPageToken, Videos: []Video{}}
	if resp.PageInfo != nil {
		out.TotalResults = resp.PageInfo.TotalResults
	}
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		v := Video{ID: item.Id.VideoId, Thumbnail: ThumbnailURL(item.Id.VideoId)}
		if s := item.Snippet; s != nil {
			v.Title = s.Title
			v.Description = s.Description
			v.ChannelTitle = s.ChannelTitle
			v.ChannelID = s.ChannelId
			v.PublishedAt, _ = time.Parse(time.RFC3339, s.PublishedAt)
			if thumb := searchThumbnail(s.Thumbnails); thumb != "" {
				v.Thumbnail = thumb
			}
		}
		out.Videos = append(out.Videos, v)
		ids = append(ids, v.ID)
	}
	if len(ids) == 0 {
		return out, nil
	}

	details, err := c.svc.Videos.List([]string{"contentDetails"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return out, nil
	}
	durations := make(map[string]int, len(details.Items))
	for _, item := range details.Items {
		if item.ContentDetails != nil {
			durations[item.Id] = timeutil.ParseISODuration(item.ContentDetails.Duration)
		}
	}
	for i := range out.Videos {
		out.Videos[i].DurationSeconds = durations[out.Videos[i].ID]
	}
	return out, nil
}

func searchThumbnail(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*yt.Thumbnail{t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

func bestThumbnail(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*yt.Thumbnail{t.Maxres, t.High, t.Medium} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

// ThumbnailURL is the public medium-quality thumbnail, used when the API gives none.
func ThumbnailURL(id string) string {
	return "https://img.youtube.com/vi/" + id + "/mqdefault.jpg"
}

func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// ParseVideoID accepts a bare 11-character id or a youtube.com / youtu.be URL
// (watch, embed, shorts, live).
func ParseVideoID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if videoIDPattern.MatchString(s) {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", ErrInvalidVideoID
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && (parts[0] == "embed" || parts[0] == "shorts" || parts[0] == "live") {
			id = parts[1]
		}
	}
	if !videoIDPattern.MatchString(id) {
		return "", ErrInvalidVideoID
	}
	return id, nil
}
