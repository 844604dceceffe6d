package lastfm

import (
	"context"
	"sync"
)

// DefaultConcurrency bounds parallel tag lookups in a batch fetch.
const DefaultConcurrency = 5

// TrackQuery identifies one track to look up.
type TrackQuery struct {
	ID     string
	Artist string
	Name   string
}

// TrackTags is the outcome of one lookup within a batch. A failed
// lookup carries its error here instead of failing the whole batch.
type TrackTags struct {
	ID   string
	Tags []Tag
	Err  error
}

// GetTagsBatch fetches tags for multiple tracks concurrently, bounded by
// concurrency workers (<= 0 selects DefaultConcurrency). Results align
// with the query order. Cancelling the context marks the remaining
// lookups failed with the context's error.
func (c *Client) GetTagsBatch(ctx context.Context, queries []TrackQuery, concurrency int) []TrackTags {
	if len(queries) == 0 {
		return []TrackTags{}
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]TrackTags, len(queries))

	jobs := make(chan int, len(queries))
	for i := range queries {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				q := queries[i]

				if err := ctx.Err(); err != nil {
					results[i] = TrackTags{ID: q.ID, Tags: []Tag{}, Err: err}
					continue
				}

				found, err := c.GetTags(ctx, q.Artist, q.Name)
				if err != nil {
					results[i] = TrackTags{ID: q.ID, Tags: []Tag{}, Err: err}
					continue
				}
				results[i] = TrackTags{ID: q.ID, Tags: found}
			}
		}()
	}
	wg.Wait()

	return results
}
