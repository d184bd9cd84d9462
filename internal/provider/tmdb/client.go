package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/mhmtszr/concurrent-swiss-map"
	"github.com/sourcegraph/conc/pool"
)

const defaultSeasonWorkers = 4

// Fetcher is the raw request surface a Client needs. *Gateway implements it.
type Fetcher interface {
	Fetch(ctx context.Context, path string, params map[string]string) (json.RawMessage, error)
}

// Client decodes catalog endpoints into typed payloads.
type Client struct {
	fetcher Fetcher
	workers int
}

// NewClient wraps f.
func NewClient(f Fetcher) *Client {
	return &Client{fetcher: f, workers: defaultSeasonWorkers}
}

// WithWorkers bounds how many season requests AllEpisodes runs at once.
func (c *Client) WithWorkers(n int) *Client {
	if n > 0 {
		c.workers = n
	}
	return c
}

// MovieDetails fetches /movie/{id}.
func (c *Client) MovieDetails(ctx context.Context, id string) (*MovieDetails, error) {
	return get[MovieDetails](ctx, c.fetcher, "movie/"+id, nil)
}

// ShowDetails fetches /tv/{id} with external ids appended.
func (c *Client) ShowDetails(ctx context.Context, id string) (*ShowDetails, error) {
	return get[ShowDetails](ctx, c.fetcher, "tv/"+id, map[string]string{
		"append_to_response": "external_ids",
	})
}

// Details fetches the detail payload matching t.
func (c *Client) Details(ctx context.Context, t media.Type, id string) (Details, error) {
	switch t {
	case media.Movie:
		movie, err := c.MovieDetails(ctx, id)
		if err != nil {
			return nil, err
		}
		return movie, nil
	case media.Series:
		show, err := c.ShowDetails(ctx, id)
		if err != nil {
			return nil, err
		}
		return show, nil
	}
	return nil, fmt.Errorf("%w: %d", media.ErrUnsupportedType, int(t))
}

// SeasonDetails fetches /tv/{id}/season/{number}.
func (c *Client) SeasonDetails(ctx context.Context, showID string, number int) (*SeasonDetails, error) {
	return get[SeasonDetails](ctx, c.fetcher, fmt.Sprintf("tv/%s/season/%d", showID, number), nil)
}

// SearchMulti runs a first page multi-type search without adult results.
func (c *Client) SearchMulti(ctx context.Context, query string) (*SearchResults, error) {
	return get[SearchResults](ctx, c.fetcher, "search/multi", map[string]string{
		"query":         query,
		"page":          "1",
		"include_adult": "false",
	})
}

// FindByIMDbID looks up catalog entries by IMDb id.
func (c *Client) FindByIMDbID(ctx context.Context, imdbID string) (*FindResults, error) {
	return get[FindResults](ctx, c.fetcher, "find/"+imdbID, map[string]string{
		"external_source": "imdb_id",
	})
}

// AllEpisodes fetches every season of show concurrently and flattens the
// episodes. The result is in arrival order; callers sort it.
func (c *Client) AllEpisodes(ctx context.Context, show *ShowDetails) ([]Episode, error) {
	showID := strconv.Itoa(show.ID)
	collected := csmap.Create[int, []Episode]()

	p := pool.New().WithContext(ctx).WithMaxGoroutines(c.workers).WithCancelOnError()
	for _, season := range show.Seasons {
		number := season.SeasonNumber
		p.Go(func(ctx context.Context) error {
			details, err := c.SeasonDetails(ctx, showID, number)
			if err != nil {
				return fmt.Errorf("season %d: %w", number, err)
			}
			collected.Store(number, details.Episodes)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	var episodes []Episode
	collected.Range(func(number int, eps []Episode) bool {
		for _, ep := range eps {
			if ep.SeasonNumber == 0 {
				ep.SeasonNumber = number
			}
			episodes = append(episodes, ep)
		}
		return false
	})
	return episodes, nil
}

func get[T any](ctx context.Context, f Fetcher, path string, params map[string]string) (*T, error) {
	body, err := f.Fetch(ctx, path, params)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &out, nil
}
