package lastfm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/moodlens/go-tag-mood-predictor/internal/dataset"
	"github.com/moodlens/go-tag-mood-predictor/internal/tags"
)

const (
	baseURL   = "http://ws.audioscrobbler.com/2.0/"
	userAgent = "tag-mood-predictor/1.0"
)

// Last.fm API error codes.
const (
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

// Sentinel errors.
var (
	// ErrRateLimited is returned when the API rate limit persists through
	// all retries.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API key is rejected.
	ErrInvalidAPIKey = errors.New("invalid API key")
)

// Client is a Last.fm API client with in-memory caching and rate-limit
// retry. Safe for concurrent use.
type Client struct {
	apiKey     string
	maxTags    int
	httpClient *http.Client
	baseURL    string

	// Cache key is "track:{artist}:{track}" or "artist:{artist}".
	cache   map[string][]Tag
	cacheMu sync.RWMutex
}

// NewClient creates a Last.fm API client from the provided configuration.
func NewClient(cfg *Config) *Client {
	maxTags := cfg.MaxTags
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	return &Client{
		apiKey:  cfg.APIKey,
		maxTags: maxTags,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		cache:   make(map[string][]Tag),
	}
}

// GetTags fetches top tags for a track, falling back to artist tags when
// the track has none. Results are cached. Returns an empty slice, not
// nil, when neither lookup yields tags.
func (c *Client) GetTags(ctx context.Context, artist, track string) ([]Tag, error) {
	found, err := c.topTags(ctx, "track:"+artist+":"+track, url.Values{
		"method": {"track.getTopTags"},
		"artist": {artist},
		"track":  {track},
	})
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		return found, nil
	}

	return c.topTags(ctx, "artist:"+artist, url.Values{
		"method": {"artist.getTopTags"},
		"artist": {artist},
	})
}

// TagString fetches tags for a track and joins the top names into the
// raw comma-separated form the prediction engine consumes. The string is
// not normalized here; normalization is the engine's job so every input
// path goes through the same transform.
func (c *Client) TagString(ctx context.Context, artist, track string) (string, error) {
	found, err := c.GetTags(ctx, artist, track)
	if err != nil {
		return "", err
	}

	n := min(c.maxTags, len(found))
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = found[i].Name
	}
	return strings.Join(names, tags.Separator + " "), nil
}

// Annotate fills in Row.Tags for every table row that has none, looked
// up by artist and track name. Rows that fail to resolve keep their
// empty tag string and are counted in missing; one bad row never aborts
// the pass. Context cancellation does abort it.
func (c *Client) Annotate(ctx context.Context, t *dataset.Table) (missing int, err error) {
	for i := range t.Rows {
		row := &t.Rows[i]
		if row.Tags != "" || row.Artist == "" || row.Name == "" {
			if row.Tags == "" {
				missing++
			}
			continue
		}

		ts, err := c.TagString(ctx, row.Artist, row.Name)
		if err != nil {
			if ctx.Err() != nil {
				return missing, ctx.Err()
			}
			missing++
			continue
		}
		if ts == "" {
			missing++
			continue
		}
		row.Tags = ts
	}
	return missing, nil
}

// topTags performs one cached top-tags lookup.
func (c *Client) topTags(ctx context.Context, cacheKey string, params url.Values) ([]Tag, error) {
	c.cacheMu.RLock()
	cached, ok := c.cache[cacheKey]
	c.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	params.Set("autocorrect", "1")
	params.Set("format", "json")
	params.Set("api_key", c.apiKey)

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", params.Get("method"), err)
	}

	var resp topTagsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", params.Get("method"), err)
	}

	found := resp.TopTags.Tag
	if found == nil {
		found = []Tag{}
	}

	c.cacheMu.Lock()
	c.cache[cacheKey] = found
	c.cacheMu.Unlock()

	return found, nil
}

// doRequest performs an HTTP GET with retry on rate limit: up to 3
// retries with exponential backoff (1s, 2s, 4s).
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	delays := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	var lastErr error

	for attempt := 0; attempt <= len(delays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delays[attempt-1]):
			}
		}

		body, err := c.doSingleRequest(ctx, reqURL)
		if err == nil {
			return body, nil
		}

		if errors.Is(err, ErrRateLimited) {
			lastErr = err
			continue
		}

		return nil, err
	}

	return nil, lastErr
}

func (c *Client) doSingleRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// The API reports errors in the body, not the status code.
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeRateLimited:
			return nil, ErrRateLimited
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}

	return body, nil
}
