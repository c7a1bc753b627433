package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPStore talks to the watch-history API served by `deepfocus serve`. The bearer token
// identifies the user; the userID arguments are ignored.
type HTTPStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPStore creates a client for baseURL (e.g. http://localhost:8787).
func NewHTTPStore(baseURL, token string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPStore) Upsert(ctx context.Context, _ string, u Update) (Record, error) {
	if err := u.Validate(); err != nil {
		return Record{}, err
	}
	body, err := json.Marshal(u)
	if err != nil {
		return Record{}, fmt.Errorf("marshal update: %w", err)
	}

	var rec Record
	if err := s.do(ctx, http.MethodPost, "/api/watch-history", bytes.NewReader(body), &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *HTTPStore) List(ctx context.Context, _ string, opts ListOptions) ([]Record, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(opts.EffectiveLimit()))
	q.Set("includeCompleted", strconv.FormatBool(opts.IncludeCompleted))

	var records []Record
	if err := s.do(ctx, http.MethodGet, "/api/watch-history?"+q.Encode(), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *HTTPStore) Get(ctx context.Context, _ string, videoID string) (Record, error) {
	var rec Record
	if err := s.do(ctx, http.MethodGet, "/api/watch-history/"+url.PathEscape(videoID), nil, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *HTTPStore) Delete(ctx context.Context, _ string, videoID string) error {
	q := url.Values{}
	q.Set("videoId", videoID)
	return s.do(ctx, http.MethodDelete, "/api/watch-history?"+q.Encode(), nil, nil)
}

func (s *HTTPStore) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, apiErr.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
