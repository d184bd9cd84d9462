// Package metadata turns catalog payloads into media records.
package metadata

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/Digital-Shane/media-resolver/internal/provider/proxy"
	"github.com/Digital-Shane/media-resolver/internal/provider/tmdb"
)

const (
	posterBase   = "https://image.tmdb.org/t/p/w342"
	backdropBase = "https://image.tmdb.org/t/p/w1280"
)

// Assembler normalizes movie and show payloads into media.Record. It never
// modifies the payloads it is given.
type Assembler struct {
	rotator *proxy.Rotator
}

// NewAssembler creates an Assembler that rewrites image URLs through r. A nil
// rotator leaves image URLs untouched.
func NewAssembler(r *proxy.Rotator) *Assembler {
	return &Assembler{rotator: r}
}

// Assemble builds a record from details. season is optional and only used
// for shows. The payload kind must agree with t.
func (a *Assembler) Assemble(details tmdb.Details, t media.Type, season *tmdb.SeasonDetails) (*media.Record, error) {
	if details == nil {
		return nil, fmt.Errorf("%w: no payload", media.ErrUnsupportedType)
	}
	if details.MediaType() != t {
		return nil, fmt.Errorf("%w: %s payload for %s", media.ErrUnsupportedType, details.MediaType(), t)
	}

	switch d := details.(type) {
	case *tmdb.MovieDetails:
		return a.movie(d), nil
	case *tmdb.ShowDetails:
		return a.show(d, season), nil
	}
	return nil, fmt.Errorf("%w: %T", media.ErrUnsupportedType, details)
}

// AssembleResult assembles a search row. Rows that are not movies or shows
// report false.
func (a *Assembler) AssembleResult(row tmdb.SearchResult) (*media.Record, bool) {
	details, ok := row.Details()
	if !ok {
		return nil, false
	}
	rec, err := a.Assemble(details, details.MediaType(), nil)
	if err != nil {
		return nil, false
	}
	return rec, true
}

func (a *Assembler) movie(d *tmdb.MovieDetails) *media.Record {
	return &media.Record{
		Title:    d.Title,
		ID:       strconv.Itoa(d.ID),
		Type:     media.Movie,
		Year:     tmdb.ReleaseYear(d.ReleaseDate),
		Poster:   a.image(posterBase, d.PosterPath),
		Backdrop: a.image(backdropBase, d.BackdropPath),
		Overview: d.Overview,
		IMDbID:   d.IMDbID,
	}
}

func (a *Assembler) show(d *tmdb.ShowDetails, season *tmdb.SeasonDetails) *media.Record {
	rec := &media.Record{
		Title:    d.Name,
		ID:       strconv.Itoa(d.ID),
		Type:     media.Series,
		Year:     tmdb.ReleaseYear(d.FirstAirDate),
		Poster:   a.image(posterBase, d.PosterPath),
		Backdrop: a.image(backdropBase, d.BackdropPath),
		Overview: d.Overview,
	}
	if d.ExternalIDs != nil {
		rec.IMDbID = d.ExternalIDs.IMDbID
	}

	if len(d.Seasons) > 0 {
		rec.Seasons = make([]media.Season, 0, len(d.Seasons))
		for _, s := range d.Seasons {
			rec.Seasons = append(rec.Seasons, media.Season{
				ID:     strconv.Itoa(s.ID),
				Number: s.SeasonNumber,
				Title:  s.Name,
			})
		}
		slices.SortStableFunc(rec.Seasons, func(x, y media.Season) int {
			return cmp.Compare(x.Number, y.Number)
		})
	}

	if season != nil {
		rec.SeasonData = &media.SeasonData{
			ID:       strconv.Itoa(season.ID),
			Number:   season.SeasonNumber,
			Title:    season.Name,
			Episodes: Episodes(season.Episodes, season.SeasonNumber),
		}
	}
	return rec
}

func (a *Assembler) image(base, path string) string {
	if path == "" {
		return ""
	}
	u := base + path
	if a.rotator == nil {
		return u
	}
	return a.rotator.Rewrite(u)
}

// Episodes projects catalog episodes and sorts them by season then episode
// number. Episodes without a season number inherit season.
func Episodes(eps []tmdb.Episode, season int) []media.Episode {
	out := make([]media.Episode, 0, len(eps))
	for _, ep := range eps {
		n := ep.SeasonNumber
		if n == 0 {
			n = season
		}
		out = append(out, media.Episode{
			ID:        strconv.Itoa(ep.ID),
			Season:    n,
			Number:    ep.EpisodeNumber,
			Title:     ep.Name,
			AirDate:   ep.AirDate,
			StillPath: ep.StillPath,
			Overview:  ep.Overview,
		})
	}
	SortEpisodes(out)
	return out
}

// SortEpisodes orders eps by season then episode number. Completion order of
// concurrent fetches never leaks into the result.
func SortEpisodes(eps []media.Episode) {
	slices.SortStableFunc(eps, func(x, y media.Episode) int {
		if c := cmp.Compare(x.Season, y.Season); c != 0 {
			return c
		}
		return cmp.Compare(x.Number, y.Number)
	})
}
