package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/moodlens/go-tag-mood-predictor/internal/dataset"
)

// featureColumns are the audio features copied into table rows as ground
// truth, matching the attribute names the prediction engine uses.
var featureColumns = []string{
	"acousticness", "danceability", "energy", "instrumentalness",
	"liveness", "loudness", "speechiness", "tempo", "valence",
}

// FetchAudioFeatures fills Row.Features with Spotify's audio features
// for every row of the table, batching requests to the API's 100-track
// limit. Rows whose track has no available features keep an empty map.
// The feature columns are registered on the table so downstream presence
// checks see them.
func (c *Client) FetchAudioFeatures(ctx context.Context, t *dataset.Table) error {
	if len(t.Rows) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(t.Rows))
	indexByID := make(map[string]int, len(t.Rows))
	for i := range t.Rows {
		ids[i] = spotify.ID(t.Rows[i].ID)
		indexByID[t.Rows[i].ID] = i
	}

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		batch := ids[i:end]

		features, err := c.api.GetAudioFeatures(ctx, batch...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue
			}
			idx, ok := indexByID[f.ID.String()]
			if !ok {
				continue
			}
			t.Rows[idx].Features = featureMap(f)
		}
	}

	registerFeatureColumns(t)
	return nil
}

// featureMap converts a Spotify feature record to the engine's
// attribute-keyed float64 form.
func featureMap(f *spotify.AudioFeatures) map[string]float64 {
	return map[string]float64{
		"acousticness":     float64(f.Acousticness),
		"danceability":     float64(f.Danceability),
		"energy":           float64(f.Energy),
		"instrumentalness": float64(f.Instrumentalness),
		"liveness":         float64(f.Liveness),
		"loudness":         float64(f.Loudness),
		"speechiness":      float64(f.Speechiness),
		"tempo":            float64(f.Tempo),
		"valence":          float64(f.Valence),
	}
}

func registerFeatureColumns(t *dataset.Table) {
	for _, col := range featureColumns {
		if !t.HasColumn(col) {
			t.Columns = append(t.Columns, col)
		}
	}
}
