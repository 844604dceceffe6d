// Package spotify imports playlists from the Spotify Web API as dataset
// tables, with optional ground-truth audio features per track.
package spotify

import (
	"errors"
	"os"
)

// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is
// not set.
var ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")

// Config holds the client-credentials pair for server-to-server access.
// Playlist reads need no user consent, so the full authorization-code
// dance is unnecessary here.
type Config struct {
	ClientID     string
	ClientSecret string
}

// LoadConfig reads Spotify credentials from SPOTIFY_ID and
// SPOTIFY_SECRET.
func LoadConfig() (*Config, error) {
	id := os.Getenv("SPOTIFY_ID")
	secret := os.Getenv("SPOTIFY_SECRET")
	if id == "" || secret == "" {
		return nil, ErrMissingCredentials
	}
	return &Config{ClientID: id, ClientSecret: secret}, nil
}
