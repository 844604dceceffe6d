package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// Client wraps the Spotify API client with playlist import methods.
type Client struct {
	api *spotify.Client
}

// NewClient authenticates with the client-credentials flow and returns a
// ready client.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	auth := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := auth.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating with Spotify: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	return &Client{api: spotify.New(httpClient)}, nil
}

// New wraps an already authenticated API client.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}
