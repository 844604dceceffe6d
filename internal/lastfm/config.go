// Package lastfm fetches track tags from the Last.fm API as raw
// comma-separated tag strings for the prediction engine.
package lastfm

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// DefaultMaxTags bounds how many top tags go into a tag string.
const DefaultMaxTags = 10

// ErrMissingAPIKey is returned when LASTFM_API_KEY is not set.
var ErrMissingAPIKey = errors.New("missing LASTFM_API_KEY environment variable")

// Config holds Last.fm API configuration.
type Config struct {
	APIKey  string
	MaxTags int
}

// LoadConfig reads Last.fm configuration from environment variables:
// LASTFM_API_KEY (required) and LASTFM_MAX_TAGS (optional, defaults to
// DefaultMaxTags).
func LoadConfig() (*Config, error) {
	apiKey := os.Getenv("LASTFM_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	maxTags := DefaultMaxTags
	if raw := os.Getenv("LASTFM_MAX_TAGS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid LASTFM_MAX_TAGS value %q", raw)
		}
		maxTags = n
	}

	return &Config{APIKey: apiKey, MaxTags: maxTags}, nil
}
