package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/moodlens/go-tag-mood-predictor/internal/dataset"
)

const maxTracksPerRequest = 100

// PlaylistName returns the display name of a playlist.
func (c *Client) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	playlist, err := c.api.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return "", fmt.Errorf("fetching playlist: %w", err)
	}
	return playlist.Name, nil
}

// FetchPlaylistTracks retrieves every track of a playlist as a dataset
// table. Rows carry identity and metadata only; tags and features come
// from other sources afterward. Podcast episodes and unavailable tracks
// are skipped.
func (c *Client) FetchPlaylistTracks(ctx context.Context, playlistID string) (*dataset.Table, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(maxTracksPerRequest))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist items: %w", err)
	}

	var rows []dataset.Row
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			rows = append(rows, convertTrack(item.Track.Track))
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	return dataset.FromRows(rows), nil
}

// convertTrack maps a Spotify track to a dataset row, joining artist
// names with ", ".
func convertTrack(track *spotify.FullTrack) dataset.Row {
	artists := make([]string, len(track.Artists))
	for i, a := range track.Artists {
		artists[i] = a.Name
	}

	return dataset.Row{
		ID:     track.ID.String(),
		Name:   track.Name,
		Artist: strings.Join(artists, ", "),
		Album:  track.Album.Name,
	}
}
