// Package pipeline orchestrates playlist import and batch prediction:
// Spotify supplies the tracks, Last.fm the tags, the engine the
// predictions, and PostgreSQL keeps all three.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moodlens/go-tag-mood-predictor/internal/dataset"
	"github.com/moodlens/go-tag-mood-predictor/internal/db"
	"github.com/moodlens/go-tag-mood-predictor/internal/engine"
	"github.com/moodlens/go-tag-mood-predictor/internal/lastfm"
	"github.com/moodlens/go-tag-mood-predictor/internal/spotify"
	"github.com/moodlens/go-tag-mood-predictor/internal/tags"
)

// Service wires the import and prediction flow together.
type Service struct {
	db         *db.DB
	spotify    *spotify.Client
	lastfm     *lastfm.Client
	engine     *engine.Engine
	bundlePath string
}

// Option configures a Service.
type Option func(*Service)

// WithBundlePath records which bundle produced each prediction batch.
func WithBundlePath(path string) Option {
	return func(s *Service) {
		s.bundlePath = path
	}
}

// New creates a pipeline service.
func New(database *db.DB, sp *spotify.Client, lf *lastfm.Client, eng *engine.Engine, opts ...Option) *Service {
	s := &Service{
		db:      database,
		spotify: sp,
		lastfm:  lf,
		engine:  eng,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportResult summarizes one playlist import.
type ImportResult struct {
	Name        string
	Table       *dataset.Table
	TrackCount  int
	MissingTags int
}

// ImportPlaylist fetches a playlist's tracks, resolves their tags, and
// persists both. Tracks whose tags cannot be resolved stay in the table
// with an empty tag string; they predict as the zero-vector fallback
// downstream rather than being dropped.
func (s *Service) ImportPlaylist(ctx context.Context, playlistID string) (*ImportResult, error) {
	name, err := s.spotify.PlaylistName(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	table, err := s.spotify.FetchPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Name:       name,
		Table:      table,
		TrackCount: len(table.Rows),
	}

	queries := make([]lastfm.TrackQuery, len(table.Rows))
	for i, row := range table.Rows {
		queries[i] = lastfm.TrackQuery{ID: row.ID, Artist: row.Artist, Name: row.Name}
	}
	fetched := s.lastfm.GetTagsBatch(ctx, queries, lastfm.DefaultConcurrency)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var trackTags []db.TrackTag
	now := time.Now()

	for i := range table.Rows {
		row := &table.Rows[i]
		found := fetched[i]
		if found.Err != nil || len(found.Tags) == 0 {
			result.MissingTags++
			continue
		}

		n := min(lastfm.DefaultMaxTags, len(found.Tags))
		names := make([]string, n)
		for j := 0; j < n; j++ {
			names[j] = found.Tags[j].Name
			trackTags = append(trackTags, db.TrackTag{
				TrackID:   row.ID,
				TagName:   found.Tags[j].Name,
				TagCount:  found.Tags[j].Count,
				Source:    "lastfm",
				FetchedAt: now,
			})
		}
		row.Tags = joinTags(names)
	}

	if err := s.db.Tracks().UpsertTable(ctx, table); err != nil {
		return nil, fmt.Errorf("storing tracks: %w", err)
	}
	if err := s.db.Tags().UpsertBatch(ctx, trackTags); err != nil {
		return nil, fmt.Errorf("storing tags: %w", err)
	}

	return result, nil
}

// PredictAndStore predicts every row of a table and persists the values
// as a new prediction batch, returning the batch ID.
func (s *Service) PredictAndStore(ctx context.Context, table *dataset.Table) (uuid.UUID, error) {
	s.engine.PredictTable(table)

	attrs := s.engine.Attributes()
	batchID, err := s.db.Predictions().CreateBatch(ctx, s.bundlePath, attrs)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.db.Predictions().StoreTable(ctx, batchID, table, attrs); err != nil {
		return uuid.Nil, err
	}
	return batchID, nil
}

// LoadBatch rehydrates a stored prediction batch into a table: tracks
// from the track store, predicted values from the batch, tag strings
// from the tag store.
func (s *Service) LoadBatch(ctx context.Context, batchID uuid.UUID) (*dataset.Table, error) {
	values, err := s.db.Predictions().Values(ctx, batchID)
	if err != nil {
		return nil, err
	}

	trackIDs := make([]string, 0, len(values))
	for id := range values {
		trackIDs = append(trackIDs, id)
	}
	tagStrings, err := s.db.Tags().TagStrings(ctx, trackIDs)
	if err != nil {
		return nil, err
	}

	var rows []dataset.Row
	for _, id := range trackIDs {
		track, err := s.db.Tracks().Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading track %s: %w", id, err)
		}
		row := dataset.Row{
			ID:        track.ID,
			Name:      track.Name,
			Artist:    track.Artist,
			Tags:      tagStrings[id],
			Predicted: values[id],
		}
		if track.Album != nil {
			row.Album = *track.Album
		}
		rows = append(rows, row)
	}
	return dataset.FromRows(rows), nil
}

func joinTags(names []string) string {
	return strings.Join(names, tags.Separator+" ")
}
