package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/deepfocus-cli/progress"
)

type saveHistoryRequest struct {
	VideoID     string  `json:"videoId"`
	VideoTitle  string  `json:"videoTitle"`
	Thumbnail   string  `json:"thumbnail"`
	ChannelName string  `json:"channelName"`
	Progress    float64 `json:"progress"`
	Duration    float64 `json:"duration"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": Version})
}

// listHistory serves GET /api/watch-history?limit=20&includeCompleted=false.
func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := progress.ListOptions{IncludeCompleted: q.Get("includeCompleted") == "true"}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = limit
	}

	records, err := s.store.List(r.Context(), UserIDFromContext(r.Context()), opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("list watch history")
		writeError(w, http.StatusInternalServerError, "Failed to fetch watch history")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// getHistory serves GET /api/watch-history/{videoId}.
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")
	rec, err := s.store.Get(r.Context(), UserIDFromContext(r.Context()), videoID)
	switch {
	case errors.Is(err, progress.ErrNotFound):
		writeError(w, http.StatusNotFound, "watch history entry not found")
	case err != nil:
		s.logger.Error().Err(err).Str("video_id", videoID).Msg("get watch history")
		writeError(w, http.StatusInternalServerError, "Failed to fetch watch history")
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

// saveHistory serves POST /api/watch-history. Positions are floored to whole seconds.
func (s *Server) saveHistory(w http.ResponseWriter, r *http.Request) {
	var req saveHistoryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VideoID == "" {
		writeError(w, http.StatusBadRequest, "videoId is required")
		return
	}

	rec, err := s.store.Upsert(r.Context(), UserIDFromContext(r.Context()), progress.Update{
		VideoID:         req.VideoID,
		VideoTitle:      req.VideoTitle,
		Thumbnail:       req.Thumbnail,
		ChannelName:     req.ChannelName,
		ProgressSeconds: floor(req.Progress),
		DurationSeconds: floor(req.Duration),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("video_id", req.VideoID).Msg("update watch history")
		writeError(w, http.StatusInternalServerError, "Failed to update watch history")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// deleteHistory serves DELETE /api/watch-history?videoId=...
func (s *Server) deleteHistory(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("videoId")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "videoId is required")
		return
	}

	err := s.store.Delete(r.Context(), UserIDFromContext(r.Context()), videoID)
	switch {
	case errors.Is(err, progress.ErrNotFound):
		writeError(w, http.StatusNotFound, "watch history entry not found")
	case err != nil:
		s.logger.Error().Err(err).Str("video_id", videoID).Msg("delete watch history")
		writeError(w, http.StatusInternalServerError, "Failed to delete watch history")
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func floor(v float64) int {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v))
}
