package web

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/moodlens/go-tag-mood-predictor/internal/dataset"
	"github.com/moodlens/go-tag-mood-predictor/internal/engine"
	"github.com/moodlens/go-tag-mood-predictor/internal/mood"
)

// Handlers contains the API's HTTP handlers.
type Handlers struct {
	engine *engine.Engine
	log    zerolog.Logger
}

// NewHandlers creates a Handlers instance over a loaded engine.
func NewHandlers(eng *engine.Engine, log zerolog.Logger) *Handlers {
	return &Handlers{engine: eng, log: log}
}

// trackPayload is one track in a request body. Tags is the raw
// comma-separated tag string; normalization happens inside the engine.
type trackPayload struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Tags   string `json:"tags"`
}

func (p trackPayload) row() dataset.Row {
	return dataset.Row{
		ID:     p.ID,
		Name:   p.Name,
		Artist: p.Artist,
		Album:  p.Album,
		Tags:   p.Tags,
	}
}

type playlistPayload struct {
	Name   string         `json:"name"`
	Tracks []trackPayload `json:"tracks"`
}

func (p playlistPayload) table() *dataset.Table {
	rows := make([]dataset.Row, len(p.Tracks))
	for i, t := range p.Tracks {
		rows[i] = t.row()
	}
	return dataset.FromRows(rows)
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health reports liveness and the loaded model's attributes
// (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"attributes": h.engine.Attributes(),
	})
}

// Predict returns predicted attribute values (POST /api/predict).
// The body carries either a single tag string or a track list; with a
// track list the response holds one prediction set per track, in
// request order.
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tags   string         `json:"tags,omitempty"`
		Tracks []trackPayload `json:"tracks,omitempty"`
	}
	if !h.readJSON(w, r, &req) {
		return
	}

	if len(req.Tracks) == 0 {
		if req.Tags == "" {
			h.writeError(w, http.StatusBadRequest, "either tags or tracks is required")
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]any{
			"predictions": h.engine.Predict(req.Tags),
		})
		return
	}

	type trackResult struct {
		ID          string             `json:"id,omitempty"`
		Name        string             `json:"name,omitempty"`
		Predictions map[string]float64 `json:"predictions"`
	}

	results := make([]trackResult, len(req.Tracks))
	for i, t := range req.Tracks {
		results[i] = trackResult{
			ID:          t.ID,
			Name:        t.Name,
			Predictions: h.engine.Predict(t.Tags),
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"tracks": results})
}

// Analyze summarizes a playlist's predicted mood profile
// (POST /api/analyze).
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req playlistPayload
	if !h.readJSON(w, r, &req) {
		return
	}
	if len(req.Tracks) == 0 {
		h.writeError(w, http.StatusBadRequest, "tracks is required")
		return
	}

	summary, err := h.engine.Analyze(req.table(), mood.SourcePredicted)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// Compare contrasts the predicted mood profiles of two playlists
// (POST /api/compare).
func (h *Handlers) Compare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		A playlistPayload `json:"playlist1"`
		B playlistPayload `json:"playlist2"`
	}
	if !h.readJSON(w, r, &req) {
		return
	}
	if len(req.A.Tracks) == 0 || len(req.B.Tracks) == 0 {
		h.writeError(w, http.StatusBadRequest, "both playlists need tracks")
		return
	}

	nameA, nameB := req.A.Name, req.B.Name
	if nameA == "" {
		nameA = "Playlist 1"
	}
	if nameB == "" {
		nameB = "Playlist 2"
	}

	comparison, err := h.engine.Compare(req.A.table(), req.B.table(), nameA, nameB, mood.SourcePredicted)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, comparison)
}

func (h *Handlers) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("encoding response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}
